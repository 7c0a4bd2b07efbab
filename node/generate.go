package node

import (
	"fmt"

	"github.com/adamgarcia4/goLearning/glomers/protocol"
)

// handleGenerate issues "<node id>-<seq>". Node ids are unique in the
// cluster and seq never repeats within a node, so ids are globally unique.
func (n *Node) handleGenerate(msg protocol.Envelope) error {
	if _, err := payloadAs[protocol.Generate](msg); err != nil {
		return err
	}
	n.sequence++
	n.reply(msg, protocol.GenerateOk{ID: fmt.Sprintf("%s-%d", n.id, n.sequence)})
	return nil
}
