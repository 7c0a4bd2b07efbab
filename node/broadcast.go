package node

import (
	"github.com/adamgarcia4/goLearning/glomers/gossip"
	"github.com/adamgarcia4/goLearning/glomers/protocol"
)

// handleBroadcast acknowledges first, then floods a newly seen value to the
// topology neighbours except the one it came from.
func (n *Node) handleBroadcast(msg protocol.Envelope) error {
	b, err := payloadAs[protocol.Broadcast](msg)
	if err != nil {
		return err
	}

	n.reply(msg, protocol.BroadcastOk{})

	if !n.broadcaster.Accept(b.Message) {
		n.metrics.BroadcastDuplicates.Inc()
		return nil
	}
	n.metrics.SeenValues.Set(float64(n.broadcaster.Len()))

	if !n.caps.Has(CapGossip) {
		return nil
	}
	targets := n.broadcaster.Targets(n.id, gossip.NodeID(msg.Src))
	for _, peer := range targets {
		n.send(peer, protocol.Broadcast{Message: b.Message})
	}
	n.metrics.BroadcastForwarded.Add(float64(len(targets)))
	n.log.Debugw("flooded", "value", b.Message, "from", msg.Src, "targets", len(targets))
	return nil
}

func (n *Node) handleBroadcastRead(msg protocol.Envelope) error {
	if _, err := payloadAs[protocol.Read](msg); err != nil {
		return err
	}
	n.reply(msg, protocol.ReadOk{Messages: n.broadcaster.Values()})
	return nil
}

func (n *Node) handleTopology(msg protocol.Envelope) error {
	t, err := payloadAs[protocol.Topology](msg)
	if err != nil {
		return err
	}
	n.topology.Set(t.Topology)
	n.log.Infow("topology installed", "neighbors", gossip.Strings(n.topology.NeighborsOf(n.id)))
	n.reply(msg, protocol.TopologyOk{})
	return nil
}
