// Package op implements the tagged Operator sum type and Pipe model of
// spec.md §3: every variant carries ordered input pipe names, an output
// pipe name (empty denotes a sink, per spec.md §6's initialOutPipeName),
// an optional schema, and the pieces needed to derive a lineage string.
//
// The pattern is carried over from the teacher's sql.Expr /
// sql.ExprVisitor: a Tag() method plus an exhaustive switch, rather than
// Go-idiomatic type assertions scattered everywhere.
package op

import "github.com/dianpeng/piglet/schema"

type Tag int

const (
	TagLoad Tag = iota
	TagFilter
	TagForeach
	TagGrouping
	TagJoin
	TagDistinct
	TagLimit
	TagUnion
	TagOrderBy
	TagStore
	TagDump
	TagMaterializeHint
	TagCache
	TagGenerate
	TagConstructBag
	TagTimingOp
	TagRegister
	TagMatcher
	TagWindow
)

func (t Tag) String() string {
	switch t {
	case TagLoad:
		return "LOAD"
	case TagFilter:
		return "FILTER"
	case TagForeach:
		return "FOREACH"
	case TagGrouping:
		return "GROUP"
	case TagJoin:
		return "JOIN"
	case TagDistinct:
		return "DISTINCT"
	case TagLimit:
		return "LIMIT"
	case TagUnion:
		return "UNION"
	case TagOrderBy:
		return "ORDER"
	case TagStore:
		return "STORE"
	case TagDump:
		return "DUMP"
	case TagMaterializeHint:
		return "MATERIALIZE"
	case TagCache:
		return "CACHE"
	case TagGenerate:
		return "GENERATE"
	case TagConstructBag:
		return "CONSTRUCT_BAG"
	case TagTimingOp:
		return "TIMING"
	case TagRegister:
		return "REGISTER"
	case TagMatcher:
		return "MATCHER"
	case TagWindow:
		return "WINDOW"
	default:
		return "UNKNOWN"
	}
}

// NodeID indexes an operator inside a DataflowPlan's arena (spec.md §9's
// "arena-allocated vector owned by the plan", used instead of raw
// pointers to avoid modeling producer/consumer edges as Go pointer
// cycles).
type NodeID int

const NoNode NodeID = -1

// Operator is the sum type every operator variant implements.
type Operator interface {
	Tag() Tag

	// ID is the operator's index in its owning plan's arena. It is unset
	// (NoNode) until the operator is added to a plan.
	ID() NodeID
	SetID(NodeID)

	// InPipeNames are the operator's input pipe names in declaration
	// order, as produced (unresolved) by the parser and mutated in place
	// by the plan's structural edits.
	InPipeNames() []string
	SetInPipeNames([]string)

	// OutPipeName is this operator's single output pipe name; "" denotes
	// a sink (spec.md §6, initialOutPipeName == "").
	OutPipeName() string
	SetOutPipeName(string)

	// Alias is the name this operator is addressable by for
	// findOperatorForAlias; it defaults to OutPipeName.
	Alias() string

	Schema() *schema.BagType
	SetSchema(*schema.BagType)

	// ConstructSchema computes this operator's output schema from its
	// resolved input schemas (nil entries mean "unknown"; some variants
	// tolerate that, most don't).
	ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error)

	// CheckSchemaConformance validates named field references against
	// inputs (nil input means unknown schema: only positional refs legal).
	CheckSchemaConformance(inputs []*schema.BagType) error

	// LineageTag returns the OP_TAG token used in the lineage string.
	LineageTag() string

	// LineageParams renders this operator's literal parameters
	// (file paths, predicates, constants) for the lineage string; two
	// operators with different literal parameters must render
	// differently (spec.md §3 invariant ii).
	LineageParams() string
}

// Base is embedded by every variant to provide the plumbing common to
// spec.md §3's "every variant carries" clause, so each variant file only
// implements the parts that differ.
type Base struct {
	id       NodeID
	inNames  []string
	outName  string
	schema   *schema.BagType
	aliasOverride string
}

func NewBase(inNames []string, outName string) Base {
	return Base{id: NoNode, inNames: inNames, outName: outName}
}

func (b *Base) ID() NodeID           { return b.id }
func (b *Base) SetID(id NodeID)      { b.id = id }
func (b *Base) InPipeNames() []string { return b.inNames }
func (b *Base) SetInPipeNames(n []string) { b.inNames = n }
func (b *Base) OutPipeName() string  { return b.outName }
func (b *Base) SetOutPipeName(n string) { b.outName = n }
func (b *Base) Schema() *schema.BagType { return b.schema }
func (b *Base) SetSchema(s *schema.BagType) { b.schema = s }

func (b *Base) Alias() string {
	if b.aliasOverride != "" {
		return b.aliasOverride
	}
	return b.outName
}

func (b *Base) SetAlias(a string) { b.aliasOverride = a }
