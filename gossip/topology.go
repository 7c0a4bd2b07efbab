package gossip

// Topology is the neighbour graph the harness installs with a topology
// message. It is not necessarily symmetric or connected.
type Topology struct {
	neighbors map[NodeID][]NodeID
}

// NewTopology returns an empty topology in which every node has no neighbours.
func NewTopology() *Topology {
	return &Topology{neighbors: make(map[NodeID][]NodeID)}
}

// Set replaces the whole topology. The mapping is copied.
func (t *Topology) Set(mapping map[string][]string) {
	next := make(map[NodeID][]NodeID, len(mapping))
	for id, neighbors := range mapping {
		next[NodeID(id)] = NodeIDs(neighbors)
	}
	t.neighbors = next
}

// NeighborsOf returns id's neighbours in installed order, or an empty slice.
func (t *Topology) NeighborsOf(id NodeID) []NodeID {
	neighbors := t.neighbors[id]
	out := make([]NodeID, len(neighbors))
	copy(out, neighbors)
	return out
}

// Len returns the number of nodes that have an entry.
func (t *Topology) Len() int {
	return len(t.neighbors)
}
