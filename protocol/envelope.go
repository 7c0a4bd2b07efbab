// Package protocol is the wire codec for the node processes: one JSON
// envelope per line, with a closed, flattened payload union in the body.
package protocol

import (
	"bytes"
	"fmt"

	maelstrom "github.com/jepsen-io/maelstrom/demo/go"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope is a single message routed from Src to Dest.
type Envelope struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
	Body Body   `json:"body"`
}

// Body holds the request/reply correlation ids and the payload. MsgID is set
// on every message a node originates; InReplyTo echoes the MsgID of the
// request being answered and is nil on gossip sends.
type Body struct {
	MsgID     *int
	InReplyTo *int
	Payload   Payload
}

// header is the part of every body that does not belong to the payload.
type header struct {
	Type      string `json:"type"`
	MsgID     *int   `json:"msg_id,omitempty"`
	InReplyTo *int   `json:"in_reply_to,omitempty"`
}

// MarshalJSON flattens the payload's fields into the body object beside
// "type", "msg_id" and "in_reply_to".
func (b Body) MarshalJSON() ([]byte, error) {
	if b.Payload == nil {
		return nil, ErrMissingType
	}
	head, err := json.Marshal(header{
		Type:      b.Payload.Type(),
		MsgID:     b.MsgID,
		InReplyTo: b.InReplyTo,
	})
	if err != nil {
		return nil, err
	}
	fields, err := json.Marshal(b.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", b.Payload.Type(), err)
	}
	fields = bytes.TrimSpace(fields)
	if len(fields) <= 2 { // "{}"
		return head, nil
	}

	out := make([]byte, 0, len(head)+len(fields))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, fields[1:]...)
	return out, nil
}

// UnmarshalJSON reads the header and then decodes the payload variant named
// by "type".
func (b *Body) UnmarshalJSON(data []byte) error {
	var head header
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.Type == "" {
		return ErrMissingType
	}
	decode, ok := payloadDecoders[head.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}
	payload, err := decode(data)
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", head.Type, err)
	}

	b.MsgID = head.MsgID
	b.InReplyTo = head.InReplyTo
	b.Payload = payload
	return nil
}

// Decode parses one line of input. Every failure wraps ErrMalformedEnvelope.
func Decode(line []byte) (Envelope, error) {
	// The harness frame is src/dest plus an opaque body; the body is parsed
	// separately so a bad payload is reported against its type.
	var frame maelstrom.Message
	if err := json.Unmarshal(line, &frame); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	body := bytes.TrimSpace(frame.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformedEnvelope, ErrMissingBody)
	}

	env := Envelope{Src: frame.Src, Dest: frame.Dest}
	if err := env.Body.UnmarshalJSON(body); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	return env, nil
}

// Encode renders env as a single JSON object without a trailing newline.
func Encode(env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope to %s: %w", env.Dest, err)
	}
	return data, nil
}

// IntPtr returns a pointer to a copy of v, for filling Body ids.
func IntPtr(v int) *int {
	return &v
}
