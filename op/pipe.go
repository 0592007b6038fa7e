package op

// Pipe is the named edge between two operators in a DataflowPlan
// (spec.md §3): Producer is the operator whose OutPipeName equals Name,
// Consumers are every operator that lists Name in InPipeNames. The plan
// package builds and maintains the pipe table; op only defines the
// shape so both packages agree on it without an import cycle.
type Pipe struct {
	Name      string
	Producer  NodeID
	Consumers []NodeID
}
