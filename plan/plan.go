// Package plan implements the dataflow operator graph: DataflowPlan owns
// an arena of op.Operator values plus the Pipe table wiring them
// together, and provides the structural edits and queries the rewrite
// and materialization engines need (spec.md §3, §4.4).
//
// The shape is carried over from the teacher's plan.Plan: a struct with
// public bookkeeping fields plus private lookup maps, built up in
// discrete stages by a planner rather than incrementally by a parser.
package plan

import (
	"crypto/md5"
	"encoding/hex"
	"sort"

	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/perr"
)

// DataflowPlan is an arena of operators addressed by op.NodeID, plus the
// pipe table connecting them. Operators never hold pointers to one
// another (spec.md §9's "Cyclic references" design note); every edge is
// resolved through pipe names and NodeIDs instead.
type DataflowPlan struct {
	Ops   []op.Operator
	Pipes map[string]*op.Pipe

	// RegisterArgs accumulates every Register statement's Path, in
	// declaration order, once constructPlan has stripped them out of Ops
	// (spec.md §3).
	RegisterArgs []string

	aliasIndex map[string]op.NodeID
}

// New builds a DataflowPlan from a flat, unresolved operator list (the
// order an external planner or parser would emit them in): Register
// statements are extracted first, then every remaining operator is
// added to the arena and the pipe table is built from InPipeNames /
// OutPipeName, then schemas are constructed in dependency order.
func New(ops []op.Operator) (*DataflowPlan, error) {
	p := &DataflowPlan{
		Pipes:      map[string]*op.Pipe{},
		aliasIndex: map[string]op.NodeID{},
	}

	for _, o := range ops {
		if r, ok := o.(*op.Register); ok {
			p.RegisterArgs = append(p.RegisterArgs, r.Path)
			continue
		}
		p.add(o)
	}

	if err := p.buildPipes(); err != nil {
		return nil, err
	}
	if err := p.checkConsistency(); err != nil {
		return nil, err
	}
	if err := p.constructSchemas(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *DataflowPlan) add(o op.Operator) op.NodeID {
	id := op.NodeID(len(p.Ops))
	o.SetID(id)
	p.Ops = append(p.Ops, o)
	if a := o.Alias(); a != "" {
		p.aliasIndex[a] = id
	}
	return id
}

func (p *DataflowPlan) buildPipes() error {
	p.Pipes = map[string]*op.Pipe{}
	for _, o := range p.Ops {
		if out := o.OutPipeName(); out != "" {
			pp := p.Pipes[out]
			if pp == nil {
				pp = &op.Pipe{Name: out, Producer: op.NoNode}
				p.Pipes[out] = pp
			}
			if pp.Producer != op.NoNode {
				return perr.New("plan", perr.InvalidPlan, "pipe %q has more than one producer", out)
			}
			pp.Producer = o.ID()
		}
	}
	for _, o := range p.Ops {
		for _, in := range o.InPipeNames() {
			pp := p.Pipes[in]
			if pp == nil {
				pp = &op.Pipe{Name: in, Producer: op.NoNode}
				p.Pipes[in] = pp
			}
			pp.Consumers = append(pp.Consumers, o.ID())
		}
	}
	return nil
}

// Get returns the operator at id, or nil if id is out of range.
func (p *DataflowPlan) Get(id op.NodeID) op.Operator {
	if id < 0 || int(id) >= len(p.Ops) {
		return nil
	}
	return p.Ops[id]
}

// FindOperatorForAlias resolves an alias (a load/foreach/... output
// name, or an explicit AS alias) to its producing operator.
func (p *DataflowPlan) FindOperatorForAlias(alias string) (op.Operator, bool) {
	id, ok := p.aliasIndex[alias]
	if !ok {
		return nil, false
	}
	return p.Get(id), true
}

// SinkNodes returns every operator with no output pipe (Store, Dump).
func (p *DataflowPlan) SinkNodes() []op.NodeID {
	var out []op.NodeID
	for _, o := range p.Ops {
		if o == nil {
			continue
		}
		if o.OutPipeName() == "" {
			out = append(out, o.ID())
		}
	}
	return out
}

// SourceNodes returns every operator with no inputs (Load).
func (p *DataflowPlan) SourceNodes() []op.NodeID {
	var out []op.NodeID
	for _, o := range p.Ops {
		if o == nil {
			continue
		}
		if len(o.InPipeNames()) == 0 {
			out = append(out, o.ID())
		}
	}
	return out
}

// producers returns the NodeIDs feeding o, in declared order, resolving
// each of o's InPipeNames through the pipe table.
func (p *DataflowPlan) producers(o op.Operator) ([]op.NodeID, error) {
	ids := make([]op.NodeID, 0, len(o.InPipeNames()))
	for _, name := range o.InPipeNames() {
		pp, ok := p.Pipes[name]
		if !ok || pp.Producer == op.NoNode {
			return nil, perr.New("plan", perr.InvalidPlan, "pipe %q referenced by %s has no producer", name, o.Tag())
		}
		ids = append(ids, pp.Producer)
	}
	return ids, nil
}

// LineageSignature computes the MD5-hashed lineage signature for the
// operator at id: its own canonical token concatenated with the
// lineage signatures of every input's producer, joined by "%"
// (spec.md §3, invariant i/ii). Load operators without profiling
// enabled use LastModified == -1 so their signature is stable across
// runs; this function only reflects whatever the operator already
// encodes in LineageParams.
func (p *DataflowPlan) LineageSignature(id op.NodeID) (string, error) {
	sig, err := p.lineageString(id, map[op.NodeID]bool{})
	if err != nil {
		return "", err
	}
	sum := md5.Sum([]byte(sig))
	return hex.EncodeToString(sum[:]), nil
}

func (p *DataflowPlan) lineageString(id op.NodeID, visiting map[op.NodeID]bool) (string, error) {
	o := p.Get(id)
	if o == nil {
		return "", perr.New("plan", perr.InvalidPlan, "lineage requested for unknown node %d", id)
	}
	if visiting[id] {
		return "", perr.New("plan", perr.InvalidPlan, "cyclic lineage detected at %s", o.Tag())
	}
	visiting[id] = true
	defer delete(visiting, id)

	s := op.LineageString(o)
	prods, err := p.producers(o)
	if err != nil {
		return "", err
	}
	for _, pid := range prods {
		ps, err := p.lineageString(pid, visiting)
		if err != nil {
			return "", err
		}
		s += "%" + ps
	}
	return s, nil
}

// stableSortByLineage sorts ids by their lineage signature, keeping the
// input order among equal signatures. Nothing in the module calls it.
func (p *DataflowPlan) stableSortByLineage(ids []op.NodeID) []op.NodeID {
	sigs := make(map[op.NodeID]string, len(ids))
	for _, id := range ids {
		sig, err := p.LineageSignature(id)
		if err != nil {
			sig = ""
		}
		sigs[id] = sig
	}
	sorted := append([]op.NodeID(nil), ids...)
	sort.SliceStable(sorted, func(i, j int) bool { return sigs[sorted[i]] < sigs[sorted[j]] })
	return sorted
}
