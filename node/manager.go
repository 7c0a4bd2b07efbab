package node

import (
	"fmt"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/adamgarcia4/goLearning/glomers/logger"
	"github.com/adamgarcia4/goLearning/glomers/protocol"
)

const (
	// ControlClient sends init and topology on behalf of the harness.
	ControlClient = "c0"
	// WorkloadClient sends every other request.
	WorkloadClient = "c1"
)

// Manager runs a cluster of nodes in-process. Envelopes between nodes go
// through one FIFO queue and are delivered one at a time by Step, so a run is
// fully deterministic. Envelopes addressed to anything that is not a node are
// collected as client replies.
type Manager struct {
	role     Role
	nodes    []*Node        // maintain order with slice
	nodeMap  map[string]int // map node ID to index for quick lookup
	queue    []protocol.Envelope
	replies  []protocol.Envelope
	registry *prometheus.Registry
	log      *zap.SugaredLogger

	nextClientMsgID int
	delivered       int
	mu              sync.Mutex
}

// NewManager creates size nodes named n1..nN and initializes them with the
// full roster. Each node's metrics carry a "node" label in the manager's
// registry.
func NewManager(role Role, size int) (*Manager, error) {
	if size < 1 {
		return nil, fmt.Errorf("cluster size must be at least 1, got %d", size)
	}

	m := &Manager{
		role:            role,
		nodeMap:         make(map[string]int),
		registry:        prometheus.NewRegistry(),
		log:             logger.Named("manager"),
		nextClientMsgID: 1,
	}

	ids := make([]string, size)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i+1)
	}

	for _, id := range ids {
		config := DefaultConfig(role)
		config.Registerer = prometheus.WrapRegistererWith(prometheus.Labels{"node": id}, m.registry)

		node, err := New(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create node %s: %w", id, err)
		}
		m.nodes = append(m.nodes, node)
		m.nodeMap[id] = len(m.nodes) - 1

		out, err := node.Handle(m.clientEnvelope(ControlClient, id, protocol.Init{NodeID: id, NodeIDs: ids}))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize node %s: %w", id, err)
		}
		m.route(out)
	}

	m.log.Infow("cluster started", "role", role, "nodes", size)
	return m, nil
}

func (m *Manager) clientEnvelope(src, dest string, payload protocol.Payload) protocol.Envelope {
	id := m.nextClientMsgID
	m.nextClientMsgID++
	return protocol.Envelope{
		Src:  src,
		Dest: dest,
		Body: protocol.Body{MsgID: &id, Payload: payload},
	}
}

// route queues node-bound envelopes and collects the rest as replies.
func (m *Manager) route(out []protocol.Envelope) {
	for _, env := range out {
		if _, ok := m.nodeMap[env.Dest]; ok {
			m.queue = append(m.queue, env)
		} else {
			m.replies = append(m.replies, env)
		}
	}
}

// Submit queues a request from the workload client to dest.
func (m *Manager) Submit(dest string, payload protocol.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitLocked(WorkloadClient, dest, payload)
}

func (m *Manager) submitLocked(src, dest string, payload protocol.Payload) error {
	if _, ok := m.nodeMap[dest]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, dest)
	}
	m.queue = append(m.queue, m.clientEnvelope(src, dest, payload))
	return nil
}

func (m *Manager) Broadcast(dest string, value uint64) error {
	return m.Submit(dest, protocol.Broadcast{Message: value})
}

func (m *Manager) Add(dest string, delta uint64) error {
	return m.Submit(dest, protocol.Add{Delta: delta})
}

func (m *Manager) Read(dest string) error {
	return m.Submit(dest, protocol.Read{})
}

// SetTopology sends the same topology message to every node.
func (m *Manager) SetTopology(topology map[string][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, node := range m.nodes {
		if err := m.submitLocked(ControlClient, string(node.ID()), protocol.Topology{Topology: topology}); err != nil {
			return err
		}
	}
	return nil
}

// Step delivers the oldest queued envelope. It returns false when the queue
// is empty.
func (m *Manager) Step() (protocol.Envelope, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stepLocked()
}

func (m *Manager) stepLocked() (protocol.Envelope, bool, error) {
	if len(m.queue) == 0 {
		return protocol.Envelope{}, false, nil
	}
	env := m.queue[0]
	m.queue = m.queue[1:]

	node := m.nodes[m.nodeMap[env.Dest]]
	out, err := node.Handle(env)
	if err != nil {
		return env, true, fmt.Errorf("node %s: %w", env.Dest, err)
	}
	m.delivered++
	m.route(out)
	return env, true, nil
}

// Drain steps until the queue is empty or limit envelopes were delivered.
// limit <= 0 means no limit. It returns the number delivered.
func (m *Manager) Drain(limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	steps := 0
	for limit <= 0 || steps < limit {
		_, ok, err := m.stepLocked()
		if err != nil {
			return steps, err
		}
		if !ok {
			break
		}
		steps++
	}
	return steps, nil
}

// Pending returns the number of queued envelopes.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Delivered returns the number of envelopes delivered since start.
func (m *Manager) Delivered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delivered
}

// Replies returns a copy of every envelope sent to a client so far.
func (m *Manager) Replies() []protocol.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]protocol.Envelope, len(m.replies))
	copy(out, m.replies)
	return out
}

// Nodes returns a status snapshot of every node (maintains order)
func (m *Manager) Nodes() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	statuses := make([]Status, len(m.nodes))
	for i, node := range m.nodes {
		statuses[i] = node.Status()
	}
	return statuses
}

// IDs returns the node ids in order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.nodes))
	for i, node := range m.nodes {
		ids[i] = string(node.ID())
	}
	return ids
}

func (m *Manager) Role() Role {
	return m.role
}

// Gatherer exposes every node's metrics.
func (m *Manager) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Converged reports whether every node has the same seen-set and counter.
func (m *Manager) Converged() bool {
	statuses := m.Nodes()
	for _, s := range statuses[1:] {
		if s.Counter != statuses[0].Counter || !slices.Equal(s.Seen, statuses[0].Seen) {
			return false
		}
	}
	return true
}
