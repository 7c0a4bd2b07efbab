package protocol

/*
Payloads

Every message body carries exactly one payload. The payload's discriminant is
the body's "type" field and its own fields sit next to it in the same JSON
object:

	{"type":"broadcast","msg_id":3,"message":42}

The set of payloads is closed. Requests and their replies come in pairs
(echo/echo_ok, broadcast/broadcast_ok, ...). Replies are what a node receives
back from peers it gossiped to; nodes never act on them.
*/

// Payload is implemented by every member of the closed payload union.
type Payload interface {
	// Type returns the wire discriminant, e.g. "broadcast_ok".
	Type() string
	// IsReply reports whether this is an acknowledgment of a request.
	IsReply() bool
}

// Discriminant values.
const (
	TypeInit        = "init"
	TypeInitOk      = "init_ok"
	TypeEcho        = "echo"
	TypeEchoOk      = "echo_ok"
	TypeGenerate    = "generate"
	TypeGenerateOk  = "generate_ok"
	TypeBroadcast   = "broadcast"
	TypeBroadcastOk = "broadcast_ok"
	TypeRead        = "read"
	TypeReadOk      = "read_ok"
	TypeTopology    = "topology"
	TypeTopologyOk  = "topology_ok"
	TypeAdd         = "add"
	TypeAddOk       = "add_ok"
)

type request struct{}

func (request) IsReply() bool { return false }

type reply struct{}

func (reply) IsReply() bool { return true }

// Init is the mandatory first message. NodeIDs is the full roster, self included.
type Init struct {
	request
	NodeID  string   `json:"node_id"`
	NodeIDs []string `json:"node_ids"`
}

func (Init) Type() string { return TypeInit }

type InitOk struct{ reply }

func (InitOk) Type() string { return TypeInitOk }

type Echo struct {
	request
	Echo string `json:"echo"`
}

func (Echo) Type() string { return TypeEcho }

type EchoOk struct {
	reply
	Echo string `json:"echo"`
}

func (EchoOk) Type() string { return TypeEchoOk }

type Generate struct{ request }

func (Generate) Type() string { return TypeGenerate }

type GenerateOk struct {
	reply
	ID string `json:"id"`
}

func (GenerateOk) Type() string { return TypeGenerateOk }

// Broadcast carries one value to be flooded through the topology.
type Broadcast struct {
	request
	Message uint64 `json:"message"`
}

func (Broadcast) Type() string { return TypeBroadcast }

type BroadcastOk struct{ reply }

func (BroadcastOk) Type() string { return TypeBroadcastOk }

type Read struct{ request }

func (Read) Type() string { return TypeRead }

// ReadOk answers a read. Broadcast roles fill Messages; the g-counter role
// sets Value. Exactly one of the two shapes is written to the wire.
type ReadOk struct {
	reply
	Messages []uint64 `json:"messages,omitempty"`
	Value    *uint64  `json:"value,omitempty"`
}

func (ReadOk) Type() string { return TypeReadOk }

// MarshalJSON writes {"value":N} when Value is set and {"messages":[...]}
// otherwise. An empty seen-set is written as [] rather than omitted.
func (p ReadOk) MarshalJSON() ([]byte, error) {
	if p.Value != nil {
		return json.Marshal(struct {
			Value uint64 `json:"value"`
		}{*p.Value})
	}
	msgs := p.Messages
	if msgs == nil {
		msgs = []uint64{}
	}
	return json.Marshal(struct {
		Messages []uint64 `json:"messages"`
	}{msgs})
}

// Topology maps each node to its direct gossip neighbours.
type Topology struct {
	request
	Topology map[string][]string `json:"topology"`
}

func (Topology) Type() string { return TypeTopology }

type TopologyOk struct{ reply }

func (TopologyOk) Type() string { return TypeTopologyOk }

// Add is a grow-only counter delta, from a client or replicated from a peer.
type Add struct {
	request
	Delta uint64 `json:"delta"`
}

func (Add) Type() string { return TypeAdd }

type AddOk struct{ reply }

func (AddOk) Type() string { return TypeAddOk }

// payloadDecoders is the closed set of payloads this codec understands.
var payloadDecoders = map[string]func([]byte) (Payload, error){
	TypeInit:        decodeAs[Init],
	TypeInitOk:      decodeAs[InitOk],
	TypeEcho:        decodeAs[Echo],
	TypeEchoOk:      decodeAs[EchoOk],
	TypeGenerate:    decodeAs[Generate],
	TypeGenerateOk:  decodeAs[GenerateOk],
	TypeBroadcast:   decodeAs[Broadcast],
	TypeBroadcastOk: decodeAs[BroadcastOk],
	TypeRead:        decodeAs[Read],
	TypeReadOk:      decodeAs[ReadOk],
	TypeTopology:    decodeAs[Topology],
	TypeTopologyOk:  decodeAs[TopologyOk],
	TypeAdd:         decodeAs[Add],
	TypeAddOk:       decodeAs[AddOk],
}

func decodeAs[P Payload](raw []byte) (Payload, error) {
	var p P
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// Known reports whether typ is part of the payload union.
func Known(typ string) bool {
	_, ok := payloadDecoders[typ]
	return ok
}
