package node

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/adamgarcia4/goLearning/glomers/gossip"
	"github.com/adamgarcia4/goLearning/glomers/logger"
	"github.com/adamgarcia4/goLearning/glomers/protocol"
	"github.com/adamgarcia4/goLearning/glomers/telemetry"
	"github.com/adamgarcia4/goLearning/glomers/transport"
)

type lifecycle int

const (
	uninitialized lifecycle = iota
	ready
)

// Node is one process in the simulated cluster. It is driven by a single
// goroutine (Run, or a Manager holding its lock) and does no locking itself.
type Node struct {
	config  *Config
	caps    Capabilities
	router  *Router
	metrics *telemetry.Metrics
	baseLog *zap.Logger
	log     *zap.SugaredLogger

	state  lifecycle
	id     gossip.NodeID
	roster []gossip.NodeID

	// nextMsgID is the msg_id of the next envelope this node emits.
	nextMsgID int
	outbox    []protocol.Envelope

	topology    *gossip.Topology
	broadcaster *gossip.Broadcaster
	counter     *gossip.GCounter
	sequence    uint64
}

// New creates a new node with the given configuration
func New(config *Config) (*Node, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	base := config.Logger
	if base == nil {
		base = logger.L()
	}

	topology := gossip.NewTopology()
	n := &Node{
		config:      config,
		caps:        config.Role.Capabilities(),
		router:      NewRouter(),
		metrics:     telemetry.New(config.Registerer),
		baseLog:     base,
		log:         base.Named("uninitialized").Sugar(),
		nextMsgID:   1,
		topology:    topology,
		broadcaster: gossip.NewBroadcaster(topology),
		counter:     gossip.NewGCounter(config.ClientPrefix),
	}
	n.registerHandlers()
	return n, nil
}

func (n *Node) registerHandlers() {
	if n.caps.Has(CapEcho) {
		n.router.Handle(protocol.TypeEcho, n.handleEcho)
	}
	if n.caps.Has(CapGenerate) {
		n.router.Handle(protocol.TypeGenerate, n.handleGenerate)
	}
	if n.caps.Has(CapBroadcast) {
		n.router.Handle(protocol.TypeBroadcast, n.handleBroadcast)
		n.router.Handle(protocol.TypeTopology, n.handleTopology)
		if !n.caps.Has(CapCounter) {
			n.router.Handle(protocol.TypeRead, n.handleBroadcastRead)
		}
	}
	if n.caps.Has(CapCounter) {
		n.router.Handle(protocol.TypeAdd, n.handleAdd)
		n.router.Handle(protocol.TypeRead, n.handleCounterRead)
	}
}

// Handle processes one envelope and returns what it emits, in order.
// A returned error is fatal; nothing was emitted for msg in that case.
func (n *Node) Handle(msg protocol.Envelope) ([]protocol.Envelope, error) {
	if msg.Body.Payload == nil {
		return nil, fmt.Errorf("%w: %w", protocol.ErrMalformedEnvelope, protocol.ErrMissingType)
	}
	typ := msg.Body.Payload.Type()
	n.metrics.MessagesReceived.WithLabelValues(typ).Inc()
	defer n.metrics.ObserveHandle(typ, time.Now())

	n.outbox = n.outbox[:0]

	initMsg, isInit := msg.Body.Payload.(protocol.Init)
	switch {
	case n.state == uninitialized && !isInit:
		return nil, fmt.Errorf("%w: got %s from %s", ErrNotInitialized, typ, msg.Src)
	case n.state == ready && isInit:
		return nil, fmt.Errorf("%w: from %s", ErrDuplicateInit, msg.Src)
	case isInit:
		if err := n.handleInit(msg, initMsg); err != nil {
			return nil, err
		}
		return n.takeOutbox(), nil
	}

	h, ok := n.router.Lookup(typ)
	if !ok {
		n.metrics.Ignored.WithLabelValues(typ).Inc()
		if !msg.Body.Payload.IsReply() {
			n.log.Warnw("no handler in this role, ignoring", "type", typ, "src", msg.Src)
		}
		return nil, nil
	}
	if err := h(msg); err != nil {
		n.outbox = n.outbox[:0]
		return nil, err
	}
	return n.takeOutbox(), nil
}

func (n *Node) takeOutbox() []protocol.Envelope {
	if len(n.outbox) == 0 {
		return nil
	}
	out := make([]protocol.Envelope, len(n.outbox))
	copy(out, n.outbox)
	n.outbox = n.outbox[:0]
	for _, env := range out {
		n.metrics.MessagesSent.WithLabelValues(env.Body.Payload.Type()).Inc()
	}
	return out
}

func (n *Node) handleInit(msg protocol.Envelope, initMsg protocol.Init) error {
	if initMsg.NodeID == "" {
		return fmt.Errorf("%w: from %s", ErrInvalidInit, msg.Src)
	}
	n.id = gossip.NodeID(initMsg.NodeID)
	n.roster = gossip.NodeIDs(initMsg.NodeIDs)
	n.state = ready
	n.log = n.baseLog.Named(initMsg.NodeID).Sugar()

	n.log.Infow("initialized", "role", n.config.Role, "capabilities", n.caps.String(), "peers", len(n.roster))
	n.reply(msg, protocol.InitOk{})
	return nil
}

// reply queues payload back to msg's sender, correlated by in_reply_to.
func (n *Node) reply(msg protocol.Envelope, payload protocol.Payload) {
	n.outbox = append(n.outbox, protocol.Envelope{
		Src:  string(n.id),
		Dest: msg.Src,
		Body: protocol.Body{
			MsgID:     n.takeMsgID(),
			InReplyTo: msg.Body.MsgID,
			Payload:   payload,
		},
	})
}

// send queues a new request to dest.
func (n *Node) send(dest gossip.NodeID, payload protocol.Payload) {
	n.outbox = append(n.outbox, protocol.Envelope{
		Src:  string(n.id),
		Dest: string(dest),
		Body: protocol.Body{
			MsgID:   n.takeMsgID(),
			Payload: payload,
		},
	})
}

func (n *Node) takeMsgID() *int {
	id := n.nextMsgID
	n.nextMsgID++
	return &id
}

func payloadAs[P protocol.Payload](msg protocol.Envelope) (P, error) {
	p, ok := msg.Body.Payload.(P)
	if !ok {
		return p, fmt.Errorf("%w: %T", ErrUnexpectedPayload, msg.Body.Payload)
	}
	return p, nil
}

// Run reads envelopes from r and writes everything they produce to w, one
// line each, flushing after every input. It returns nil on EOF, ctx.Err()
// once ctx is done, and a fatal error otherwise. Malformed lines are logged
// and skipped.
func (n *Node) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	lr := transport.NewLineReader(r)
	lw := transport.NewLineWriter(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		msg, err := protocol.Decode(line)
		if err != nil {
			n.metrics.DecodeErrors.Inc()
			n.log.Warnw("skipping malformed line", "error", err)
			continue
		}

		out, err := n.Handle(msg)
		if err != nil {
			n.log.Errorw("stopping", "error", err)
			return err
		}

		for _, env := range out {
			data, err := protocol.Encode(env)
			if err != nil {
				return fmt.Errorf("failed to encode %s to %s: %w", env.Body.Payload.Type(), env.Dest, err)
			}
			if err := lw.WriteLine(data); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if err := lw.Flush(); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
}

// ID returns the node id assigned by init, or "" before init.
func (n *Node) ID() gossip.NodeID {
	return n.id
}

// Status is a point-in-time snapshot of a node's state.
type Status struct {
	ID           string
	Role         Role
	Capabilities Capabilities
	Ready        bool
	Roster       []string
	Neighbors    []string
	Seen         []uint64
	Counter      uint64
	Generated    uint64
	NextMsgID    int
}

func (n *Node) Status() Status {
	return Status{
		ID:           string(n.id),
		Role:         n.config.Role,
		Capabilities: n.caps,
		Ready:        n.state == ready,
		Roster:       gossip.Strings(n.roster),
		Neighbors:    gossip.Strings(n.topology.NeighborsOf(n.id)),
		Seen:         n.broadcaster.Values(),
		Counter:      n.counter.Value(),
		Generated:    n.sequence,
		NextMsgID:    n.nextMsgID,
	}
}
