package node

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamgarcia4/goLearning/glomers/gossip"
	"github.com/adamgarcia4/goLearning/glomers/protocol"
)

func newCluster(t *testing.T, role Role, size int) *Manager {
	t.Helper()
	m, err := NewManager(role, size)
	require.NoError(t, err)
	return m
}

func TestNewManager_InitializesEveryNode(t *testing.T) {
	m := newCluster(t, RoleEcho, 3)

	assert.Equal(t, []string{"n1", "n2", "n3"}, m.IDs())
	for _, s := range m.Nodes() {
		assert.True(t, s.Ready, s.ID)
		assert.Equal(t, []string{"n1", "n2", "n3"}, s.Roster)
	}

	replies := m.Replies()
	require.Len(t, replies, 3)
	for _, r := range replies {
		assert.Equal(t, ControlClient, r.Dest)
		assert.Equal(t, protocol.InitOk{}, r.Body.Payload)
	}
	assert.Zero(t, m.Pending())
}

func TestNewManager_RejectsEmptyCluster(t *testing.T) {
	_, err := NewManager(RoleEcho, 0)
	assert.Error(t, err)
}

func TestManager_FloodReachesEveryNode(t *testing.T) {
	for _, shape := range gossip.Shapes {
		if shape.Name == "none" {
			continue
		}
		t.Run(shape.Name, func(t *testing.T) {
			m := newCluster(t, RoleBroadcastTopology, 7)
			require.NoError(t, m.SetTopology(shape.Build(m.IDs())))
			_, err := m.Drain(0)
			require.NoError(t, err)

			require.NoError(t, m.Broadcast("n4", 42))
			require.NoError(t, m.Broadcast("n1", 7))
			_, err = m.Drain(0)
			require.NoError(t, err)

			for _, s := range m.Nodes() {
				assert.Equal(t, []uint64{7, 42}, s.Seen, s.ID)
			}
			assert.True(t, m.Converged())
		})
	}
}

func TestManager_NoTopologyMeansNoFlood(t *testing.T) {
	m := newCluster(t, RoleBroadcastTopology, 3)

	require.NoError(t, m.Broadcast("n1", 1))
	n, err := m.Drain(0)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, []uint64{1}, m.Nodes()[0].Seen)
	assert.Empty(t, m.Nodes()[1].Seen)
	assert.False(t, m.Converged())
}

func TestManager_FloodIsIdempotent(t *testing.T) {
	m := newCluster(t, RoleBroadcastTopology, 4)
	require.NoError(t, m.SetTopology(gossip.Full(m.IDs())))
	_, err := m.Drain(0)
	require.NoError(t, err)

	require.NoError(t, m.Broadcast("n1", 9))
	require.NoError(t, m.Broadcast("n3", 9))
	_, err = m.Drain(0)
	require.NoError(t, err)

	for _, s := range m.Nodes() {
		assert.Equal(t, []uint64{9}, s.Seen, s.ID)
	}
	assert.Zero(t, m.Pending(), "the flood terminates")
}

func TestManager_CounterConverges(t *testing.T) {
	m := newCluster(t, RoleGCounter, 5)

	deltas := map[string]uint64{"n1": 3, "n2": 0, "n3": 10, "n5": 1}
	var sum uint64
	for id, d := range deltas {
		require.NoError(t, m.Add(id, d))
		require.NoError(t, m.Add(id, d))
		sum += 2 * d
	}
	_, err := m.Drain(0)
	require.NoError(t, err)

	for _, s := range m.Nodes() {
		assert.Equal(t, sum, s.Counter, s.ID)
	}
	assert.True(t, m.Converged())

	for _, id := range m.IDs() {
		require.NoError(t, m.Read(id))
	}
	_, err = m.Drain(0)
	require.NoError(t, err)

	var reads int
	for _, r := range m.Replies() {
		readOk, ok := r.Body.Payload.(protocol.ReadOk)
		if !ok {
			continue
		}
		reads++
		require.NotNil(t, readOk.Value)
		assert.Equal(t, sum, *readOk.Value)
	}
	assert.Equal(t, 5, reads)
}

func TestManager_StepAndDrainLimit(t *testing.T) {
	m := newCluster(t, RoleBroadcastTopology, 3)
	require.NoError(t, m.SetTopology(gossip.Line(m.IDs())))
	assert.Equal(t, 3, m.Pending())

	env, ok, err := m.Step()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "n1", env.Dest)
	assert.IsType(t, protocol.Topology{}, env.Body.Payload)

	n, err := m.Drain(1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, m.Pending())

	_, err = m.Drain(0)
	require.NoError(t, err)
	_, ok, err = m.Step()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, m.Delivered())
}

func TestManager_UnknownNode(t *testing.T) {
	m := newCluster(t, RoleEcho, 1)

	assert.ErrorIs(t, m.Submit("n9", protocol.Echo{Echo: "x"}), ErrUnknownNode)
}

func TestManager_MetricsLabelledByNode(t *testing.T) {
	m := newCluster(t, RoleGCounter, 2)
	require.NoError(t, m.Add("n1", 1))
	_, err := m.Drain(0)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(m.Gatherer(), "glomers_counter_value")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
