// Package perr defines the error kinds the compiler core raises, per the
// propagation policy: plan-construction and rewrite errors abort
// compilation with a single diagnostic, while materialization, profiling
// and cache errors degrade gracefully.
package perr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	InvalidPlan Kind = iota
	SchemaError
	CacheMiss
	CacheCorrupt
	ProfilingError
	BackendError
)

func (k Kind) String() string {
	switch k {
	case InvalidPlan:
		return "invalid-plan"
	case SchemaError:
		return "schema-error"
	case CacheMiss:
		return "cache-miss"
	case CacheCorrupt:
		return "cache-corrupt"
	case ProfilingError:
		return "profiling-error"
	case BackendError:
		return "backend-error"
	default:
		return "unknown"
	}
}

// Error carries the stage that raised it (for the debug log) and a Kind
// (for errors.As dispatch by callers that need to distinguish, e.g., a
// CacheMiss they can recover from versus an InvalidPlan they cannot).
type Error struct {
	Stage string
	Kind  Kind
	Msg   string
}

func (self *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %s", self.Stage, self.Kind, self.Msg)
}

func New(stage string, kind Kind, f string, args ...interface{}) error {
	return &Error{
		Stage: stage,
		Kind:  kind,
		Msg:   fmt.Sprintf(f, args...),
	}
}

// Is reports whether err was produced with the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Fatal reports whether an error of this kind must abort compilation
// (spec.md §7): InvalidPlan and SchemaError are fatal, everything else
// degrades gracefully.
func (k Kind) Fatal() bool {
	return k == InvalidPlan || k == SchemaError
}
