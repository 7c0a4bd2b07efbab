package gossip

/**
Replicated state for the broadcast and counter node roles.

Nothing in this package does I/O. The node runtime feeds it the decoded
payloads and turns its answers into outbound envelopes.

Overview:
	Topology:
		NodeID -> ordered neighbour list, installed wholesale by the harness.
		Used for:
			Bounding the fan-out of flooded broadcast values
	Broadcaster:
		Fields:
			seen (Set[uint64]) - every value this node has observed
		On broadcast(v) from src:
			If v is already seen -> acknowledge only
			Else -> record v, acknowledge, forward v to Targets(self, src)
		Used for:
			Eventually delivering every value to every node of a connected topology
			Tolerating duplicated and re-ordered delivery without retries
	GCounter:
		Fields:
			value (uint64) - monotonically non-decreasing
		On add(d) from src:
			value += d
			If src is a client -> send add(d) to every other replica in the roster
			If src is a replica -> nothing more (replication happens once, at the origin)
		Used for:
			Converging every replica to the sum of all client deltas

Ownership:
	Each node owns exactly one of each. The node's message loop is
	single-threaded, so none of these types lock. Callers that share them
	across goroutines (the in-process cluster Manager) serialise access.

File Organization:
	gossip.go - this overview
	types.go - NodeID
	topology.go - Topology store
	broadcaster.go - seen-set and flood targets
	counter.go - grow-only counter and replication targets
	shapes.go - topology builders for the in-process simulator
*/
