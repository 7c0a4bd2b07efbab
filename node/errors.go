package node

import (
	"errors"
	"fmt"
)

var (
	ErrConfigRequired = errors.New("config is required")
	ErrRoleRequired   = errors.New("role is required")
	ErrUnknownRole    = errors.New("unknown role")

	// ErrProtocolViolation is fatal: the process stops without replying.
	ErrProtocolViolation = errors.New("protocol violation")
	ErrNotInitialized    = fmt.Errorf("%w: message before init", ErrProtocolViolation)
	ErrDuplicateInit     = fmt.Errorf("%w: init after init", ErrProtocolViolation)
	ErrInvalidInit       = fmt.Errorf("%w: init without node_id", ErrProtocolViolation)

	ErrUnexpectedPayload = errors.New("handler received unexpected payload")
	ErrUnknownNode       = errors.New("unknown node")
)
