package gossip

import "slices"

// Broadcaster owns the seen-set for flooded values and decides where a newly
// seen value goes next.
//
// Flooding terminates because every node forwards a value at most once, on
// first sight. Re-deliveries from other neighbours stop at the seen-set.
type Broadcaster struct {
	topology *Topology
	seen     map[uint64]struct{}
}

// NewBroadcaster returns a Broadcaster that routes over topology.
func NewBroadcaster(topology *Topology) *Broadcaster {
	return &Broadcaster{
		topology: topology,
		seen:     make(map[uint64]struct{}),
	}
}

// Accept records value and reports whether it had not been seen before.
func (b *Broadcaster) Accept(value uint64) bool {
	if _, ok := b.seen[value]; ok {
		return false
	}
	b.seen[value] = struct{}{}
	return true
}

// Seen reports whether value is in the seen-set.
func (b *Broadcaster) Seen(value uint64) bool {
	_, ok := b.seen[value]
	return ok
}

// Targets returns the neighbours of self that a value received from `from`
// should be forwarded to: every neighbour in topology order except `from`.
func (b *Broadcaster) Targets(self, from NodeID) []NodeID {
	neighbors := b.topology.NeighborsOf(self)
	targets := neighbors[:0]
	for _, id := range neighbors {
		if id != from {
			targets = append(targets, id)
		}
	}
	return targets
}

// Values returns the seen-set in ascending order.
func (b *Broadcaster) Values() []uint64 {
	out := make([]uint64, 0, len(b.seen))
	for v := range b.seen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Len returns the size of the seen-set.
func (b *Broadcaster) Len() int {
	return len(b.seen)
}

