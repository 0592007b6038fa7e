package op

// LineageString renders an operator's own canonical "OP_TAG%parameters%"
// token (spec.md §3, invariant ii). The plan package combines this with
// each input pipe's producer lineage signature and MD5-hashes the result
// to get the full lineage signature; op only owns the per-operator token
// since it has no visibility into the surrounding graph.
func LineageString(o Operator) string {
	return o.LineageTag() + "%" + o.LineageParams() + "%"
}
