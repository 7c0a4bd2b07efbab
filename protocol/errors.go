package protocol

import "errors"

var (
	ErrMalformedEnvelope = errors.New("malformed envelope")
	ErrMissingBody       = errors.New("envelope has no body")
	ErrMissingType       = errors.New("body has no type")
	ErrUnknownType       = errors.New("unknown payload type")
)
