package state

import "errors"

// ErrStale is returned when the flight load sample is missing or older than the stale threshold.
var ErrStale = errors.New("state: flight load data is stale")
