package types

import (
	"errors"
	"fmt"
)

// SimulatorError wraps a failure talking to the flight simulator.
type SimulatorError struct {
	Err         error
	Message     string
	Recoverable bool
}

func (e *SimulatorError) Error() string {
	return fmt.Sprintf("simulator: %s: %v", e.Message, e.Err)
}

func (e *SimulatorError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether err carries a SimulatorError marked recoverable.
func IsRecoverable(err error) bool {
	var se *SimulatorError
	if errors.As(err, &se) {
		return se.Recoverable
	}
	return false
}
