package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamgarcia4/goLearning/glomers/protocol"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr error
	}{
		{input: "echo", want: RoleEcho},
		{input: "unique-id", want: RoleUniqueID},
		{input: "broadcast", want: RoleBroadcast},
		{input: "broadcast-with-topology", want: RoleBroadcastTopology},
		{input: "g-counter", want: RoleGCounter},
		{input: "", wantErr: ErrRoleRequired},
		{input: "kafka", wantErr: ErrUnknownRole},
		{input: "Echo", wantErr: ErrUnknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleNames(t *testing.T) {
	assert.Equal(t, []string{"echo", "unique-id", "broadcast", "broadcast-with-topology", "g-counter"}, RoleNames())
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig(RoleGCounter).Validate())
	assert.ErrorIs(t, DefaultConfig("").Validate(), ErrRoleRequired)
	assert.ErrorIs(t, DefaultConfig("txn").Validate(), ErrUnknownRole)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrConfigRequired)

	_, err = New(DefaultConfig("txn"))
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role   Role
		caps   Capabilities
		routes []string
	}{
		{
			role:   RoleEcho,
			caps:   CapEcho,
			routes: []string{protocol.TypeEcho},
		},
		{
			role:   RoleUniqueID,
			caps:   CapEcho | CapGenerate,
			routes: []string{protocol.TypeEcho, protocol.TypeGenerate},
		},
		{
			role:   RoleBroadcast,
			caps:   CapEcho | CapBroadcast,
			routes: []string{protocol.TypeBroadcast, protocol.TypeEcho, protocol.TypeRead, protocol.TypeTopology},
		},
		{
			role:   RoleBroadcastTopology,
			caps:   CapEcho | CapGenerate | CapBroadcast | CapGossip,
			routes: []string{protocol.TypeBroadcast, protocol.TypeEcho, protocol.TypeGenerate, protocol.TypeRead, protocol.TypeTopology},
		},
		{
			role:   RoleGCounter,
			caps:   CapEcho | CapGenerate | CapBroadcast | CapGossip | CapCounter,
			routes: []string{protocol.TypeAdd, protocol.TypeBroadcast, protocol.TypeEcho, protocol.TypeGenerate, protocol.TypeRead, protocol.TypeTopology},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.caps, tt.role.Capabilities())

			n, err := New(DefaultConfig(tt.role))
			require.NoError(t, err)
			assert.Equal(t, tt.routes, n.router.Types())
		})
	}
}

func TestCapabilities_String(t *testing.T) {
	assert.Equal(t, "none", Capabilities(0).String())
	assert.Equal(t, "echo|generate", (CapEcho | CapGenerate).String())
}

func TestRouter_Panics(t *testing.T) {
	r := NewRouter()
	noop := func(protocol.Envelope) error { return nil }
	r.Handle(protocol.TypeEcho, noop)

	assert.Panics(t, func() { r.Handle(protocol.TypeEcho, noop) }, "duplicate registration")
	assert.Panics(t, func() { r.Handle("cas", noop) }, "unknown payload type")
}
