package simconnect

import "errors"

var (
	ErrNotConnected      = errors.New("simconnect: not connected")
	ErrConnectionRefused = errors.New("simconnect: connection refused")
	ErrInvalidSimVar     = errors.New("simconnect: invalid simvar")
	ErrBadFrame          = errors.New("simconnect: malformed frame")
	ErrShortPayload      = errors.New("simconnect: payload too short")
)
