package node

import (
	"github.com/adamgarcia4/goLearning/glomers/gossip"
	"github.com/adamgarcia4/goLearning/glomers/protocol"
)

// handleAdd applies the delta, acknowledges, and fans a client's delta out
// to every other replica in the init roster. Deltas from replicas stop here.
func (n *Node) handleAdd(msg protocol.Envelope) error {
	add, err := payloadAs[protocol.Add](msg)
	if err != nil {
		return err
	}

	total := n.counter.Add(add.Delta)
	n.metrics.CounterValue.Set(float64(total))
	n.reply(msg, protocol.AddOk{})

	targets := n.counter.ReplicationTargets(n.id, gossip.NodeID(msg.Src), n.roster)
	for _, peer := range targets {
		n.send(peer, protocol.Add{Delta: add.Delta})
	}
	n.metrics.CounterReplicated.Add(float64(len(targets)))
	return nil
}

func (n *Node) handleCounterRead(msg protocol.Envelope) error {
	if _, err := payloadAs[protocol.Read](msg); err != nil {
		return err
	}
	value := n.counter.Value()
	n.reply(msg, protocol.ReadOk{Value: &value})
	return nil
}
