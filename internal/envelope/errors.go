package envelope

import "errors"

// ErrInvalidSweep is returned when a Sweep cannot be sampled.
var ErrInvalidSweep = errors.New("envelope: invalid sweep")

// ErrInvalidSample is returned for a flight point with a non-finite airspeed or load factor.
var ErrInvalidSample = errors.New("envelope: invalid flight sample")
