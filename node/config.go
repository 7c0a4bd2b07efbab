package node

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/adamgarcia4/goLearning/glomers/gossip"
)

// Role names one of the node programs. It decides the node's Capabilities.
type Role string

const (
	RoleEcho              Role = "echo"
	RoleUniqueID          Role = "unique-id"
	RoleBroadcast         Role = "broadcast"
	RoleBroadcastTopology Role = "broadcast-with-topology"
	RoleGCounter          Role = "g-counter"
)

var roleCapabilities = []struct {
	role Role
	caps Capabilities
}{
	{RoleEcho, CapEcho},
	{RoleUniqueID, CapEcho | CapGenerate},
	{RoleBroadcast, CapEcho | CapBroadcast},
	{RoleBroadcastTopology, CapEcho | CapGenerate | CapBroadcast | CapGossip},
	{RoleGCounter, CapEcho | CapGenerate | CapBroadcast | CapGossip | CapCounter},
}

// RoleNames lists every role in declaration order.
func RoleNames() []string {
	names := make([]string, len(roleCapabilities))
	for i, rc := range roleCapabilities {
		names[i] = string(rc.role)
	}
	return names
}

// ParseRole maps a command-line role name to a Role.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", ErrRoleRequired
	}
	for _, rc := range roleCapabilities {
		if string(rc.role) == s {
			return rc.role, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Capabilities returns the role's capability set, or zero for an unknown role.
func (r Role) Capabilities() Capabilities {
	for _, rc := range roleCapabilities {
		if rc.role == r {
			return rc.caps
		}
	}
	return 0
}

// Config holds the configuration for a node
type Config struct {
	Role Role

	// ClientPrefix tells clients from replicas for counter replication.
	ClientPrefix string

	// Registerer receives the node's metrics. nil means a private registry.
	Registerer prometheus.Registerer

	// Logger is the parent of the node's logger. nil means logger.L().
	Logger *zap.Logger
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig(role Role) *Config {
	return &Config{
		Role:         role,
		ClientPrefix: gossip.DefaultClientPrefix,
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Role == "" {
		return ErrRoleRequired
	}
	if c.Role.Capabilities() == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownRole, c.Role)
	}
	return nil
}
