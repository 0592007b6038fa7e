package op

import (
	"github.com/dianpeng/piglet/schema"
)

// Store and Dump are sinks: OutPipeName is always "" (spec.md §6's
// initialOutPipeName == "" convention for terminal operators).
type Store struct {
	Base
	File string
	Store string // storage function name, e.g. "PigStorage"
}

func NewStore(inPipe, file, store string) *Store {
	return &Store{Base: NewBase([]string{inPipe}, ""), File: file, Store: store}
}

func (*Store) Tag() Tag { return TagStore }

func (s *Store) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if err := validateSingleInput(TagStore, inputs); err != nil {
		return nil, err
	}
	return inputs[0], nil
}

func (*Store) CheckSchemaConformance(inputs []*schema.BagType) error {
	return validateSingleInput(TagStore, inputs)
}

func (*Store) LineageTag() string { return "STORE" }
func (s *Store) LineageParams() string { return s.File + ":" + s.Store }

var _ Operator = (*Store)(nil)

type Dump struct {
	Base
}

func NewDump(inPipe string) *Dump {
	return &Dump{Base: NewBase([]string{inPipe}, "")}
}

func (*Dump) Tag() Tag { return TagDump }

func (d *Dump) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if err := validateSingleInput(TagDump, inputs); err != nil {
		return nil, err
	}
	return inputs[0], nil
}

func (*Dump) CheckSchemaConformance(inputs []*schema.BagType) error {
	return validateSingleInput(TagDump, inputs)
}

func (*Dump) LineageTag() string    { return "DUMP" }
func (*Dump) LineageParams() string { return "" }

var _ Operator = (*Dump)(nil)
