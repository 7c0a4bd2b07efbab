package gossip

/*
*
NodeID:

	Assigned by the harness in the init message and never changes during the
	process lifetime. Unique within the simulated cluster.
	Examples: "n1", "n2" for replicas, "c1", "c7" for clients.

	Replicas and clients share one namespace on the wire; the counter engine
	tells them apart by prefix (see GCounter).
*/
type NodeID string

// NodeIDs converts wire strings to NodeIDs, preserving order.
func NodeIDs(ids []string) []NodeID {
	out := make([]NodeID, len(ids))
	for i, id := range ids {
		out[i] = NodeID(id)
	}
	return out
}

// Strings converts NodeIDs back to wire strings, preserving order.
func Strings(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
