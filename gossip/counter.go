package gossip

import "strings"

// DefaultClientPrefix marks client identities ("c1", "c42"). Anything else is
// treated as a replica.
const DefaultClientPrefix = "c"

// GCounter is a grow-only counter replicated by delta fan-out. The replica
// that first receives a delta from a client applies it and sends it once to
// every other replica. Replicas never forward deltas they got from a peer.
//
// Deltas commute, so every replica converges to the same total as long as
// each one receives each delta exactly once. A duplicated peer delivery is
// counted twice.
type GCounter struct {
	value        uint64
	clientPrefix string
}

// NewGCounter returns a zeroed counter. An empty clientPrefix means
// DefaultClientPrefix.
func NewGCounter(clientPrefix string) *GCounter {
	if clientPrefix == "" {
		clientPrefix = DefaultClientPrefix
	}
	return &GCounter{clientPrefix: clientPrefix}
}

// Add applies delta and returns the new total.
func (c *GCounter) Add(delta uint64) uint64 {
	c.value += delta
	return c.value
}

// Value returns the current total.
func (c *GCounter) Value() uint64 {
	return c.value
}

// FromClient reports whether src is a client rather than a replica.
func (c *GCounter) FromClient(src NodeID) bool {
	return strings.HasPrefix(string(src), c.clientPrefix)
}

// ReplicationTargets returns the replicas a delta from src must be sent to:
// every roster member except self when src is a client, and none otherwise.
func (c *GCounter) ReplicationTargets(self, src NodeID, roster []NodeID) []NodeID {
	if !c.FromClient(src) {
		return nil
	}
	targets := make([]NodeID, 0, len(roster))
	for _, id := range roster {
		if id != self {
			targets = append(targets, id)
		}
	}
	return targets
}
