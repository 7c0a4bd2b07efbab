package node

import "strings"

// Capabilities is the set of behaviours a node runs with. Each capability
// registers handlers for its payload types on the node's Router.
type Capabilities uint8

const (
	// CapEcho answers echo.
	CapEcho Capabilities = 1 << iota
	// CapGenerate answers generate with "<node>-<seq>" ids.
	CapGenerate
	// CapBroadcast stores broadcast values, answers read and acks topology.
	CapBroadcast
	// CapGossip floods newly seen broadcast values to topology neighbours.
	CapGossip
	// CapCounter runs the grow-only counter. read answers the counter total.
	CapCounter
)

var capabilityNames = []struct {
	cap  Capabilities
	name string
}{
	{CapEcho, "echo"},
	{CapGenerate, "generate"},
	{CapBroadcast, "broadcast"},
	{CapGossip, "gossip"},
	{CapCounter, "counter"},
}

// Has reports whether every capability in other is present.
func (c Capabilities) Has(other Capabilities) bool {
	return c&other == other
}

func (c Capabilities) String() string {
	var names []string
	for _, cn := range capabilityNames {
		if c.Has(cn.cap) {
			names = append(names, cn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
