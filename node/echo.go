package node

import "github.com/adamgarcia4/goLearning/glomers/protocol"

func (n *Node) handleEcho(msg protocol.Envelope) error {
	echo, err := payloadAs[protocol.Echo](msg)
	if err != nil {
		return err
	}
	n.reply(msg, protocol.EchoOk{Echo: echo.Echo})
	return nil
}
