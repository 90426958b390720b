package envelope

import (
	"fmt"
	"math"
)

// Sweep is the airspeed range the diagram is sampled over, in knots.
type Sweep struct {
	Min     float64
	Max     float64
	Samples int
}

// MaxSamples bounds Sweep.Samples.
const MaxSamples = 100_000

// DefaultSweep samples 0 to 160 kts at 320 points.
func DefaultSweep() Sweep {
	return Sweep{Min: 0, Max: 160, Samples: 320}
}

// Validate checks that the sweep describes a non-empty increasing range.
func (s Sweep) Validate() error {
	if s.Samples < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidSweep, s.Samples)
	}
	if s.Samples > MaxSamples {
		return fmt.Errorf("%w: %d samples exceeds limit of %d", ErrInvalidSweep, s.Samples, MaxSamples)
	}
	if math.IsNaN(s.Min) || math.IsNaN(s.Max) || math.IsInf(s.Min, 0) || math.IsInf(s.Max, 0) {
		return fmt.Errorf("%w: bounds must be finite", ErrInvalidSweep)
	}
	if s.Max <= s.Min {
		return fmt.Errorf("%w: max %.2f must exceed min %.2f", ErrInvalidSweep, s.Max, s.Min)
	}
	return nil
}

// Velocities returns the sampled airspeeds.
func (s Sweep) Velocities() []float64 {
	return Linspace(s.Min, s.Max, s.Samples)
}

// Linspace returns n evenly spaced values over [start, stop], both ends included.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
