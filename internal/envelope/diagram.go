// Package envelope computes maneuver and gust load envelopes for a V-n diagram.
//
// All series in a Diagram share the sampled velocity axis. Samples outside a
// line's valid speed range hold NaN so that plotting code can skip them.
package envelope

import (
	"fmt"
	"math"

	"github.com/eytandecker/vn-diagram/pkg/types"
)

// Point is one (airspeed, load factor) pair.
type Point struct {
	V float64 `json:"v_kts"`
	N float64 `json:"n"`
}

// Segment is a straight line between two points.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// At linearly interpolates the segment at airspeed v.
func (s Segment) At(v float64) float64 {
	if s.To.V == s.From.V {
		return s.From.N
	}
	t := (v - s.From.V) / (s.To.V - s.From.V)
	return s.From.N + t*(s.To.N-s.From.N)
}

// Diagram is a fully evaluated V-n diagram.
type Diagram struct {
	Aircraft types.Aircraft
	Sweep    Sweep

	V           []float64
	ManeuverPos []float64
	ManeuverNeg []float64

	GustCruisePos []float64
	GustCruiseNeg []float64
	GustDivePos   []float64
	GustDiveNeg   []float64

	NMax float64
	NMin float64

	// Gust line slopes in load factor per knot.
	CruiseGustSlope float64
	DiveGustSlope   float64

	// Segments joining the cruise and dive gust line endpoints.
	PositiveGustLine Segment
	NegativeGustLine Segment
}

// Compute evaluates the diagram for aircraft a over sweep s.
func Compute(a types.Aircraft, s Sweep) (*Diagram, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	nMax, nMin := LimitLoadFactors(a.MaxTakeoffWeight)
	vs := s.Velocities()

	// The gust slopes are anchored on the increment at the top of the sweep.
	vRef := vs[len(vs)-1]
	d := &Diagram{
		Aircraft:        a,
		Sweep:           s,
		V:               vs,
		NMax:            nMax,
		NMin:            nMin,
		CruiseGustSlope: CruiseGustIncrement(a, vRef) / a.CruiseSpeed,
		DiveGustSlope:   DiveGustIncrement(a, vRef) / a.DiveSpeed,
		ManeuverPos:     make([]float64, len(vs)),
		ManeuverNeg:     make([]float64, len(vs)),
		GustCruisePos:   make([]float64, len(vs)),
		GustCruiseNeg:   make([]float64, len(vs)),
		GustDivePos:     make([]float64, len(vs)),
		GustDiveNeg:     make([]float64, len(vs)),
	}

	nan := math.NaN()
	for i, v := range vs {
		if v > a.DiveSpeed {
			d.ManeuverPos[i], d.ManeuverNeg[i] = nan, nan
		} else {
			d.ManeuverPos[i] = ManeuverLoadFactor(a, nMax, v)
			d.ManeuverNeg[i] = NegativeManeuverLoadFactor(a, nMax, nMin, v)
		}

		if v <= a.CruiseSpeed {
			d.GustCruisePos[i] = 1 + d.CruiseGustSlope*v
			d.GustCruiseNeg[i] = 1 - d.CruiseGustSlope*v
		} else {
			d.GustCruisePos[i], d.GustCruiseNeg[i] = nan, nan
		}

		if v <= a.DiveSpeed {
			d.GustDivePos[i] = 1 + d.DiveGustSlope*v
			d.GustDiveNeg[i] = 1 - d.DiveGustSlope*v
		} else {
			d.GustDivePos[i], d.GustDiveNeg[i] = nan, nan
		}
	}

	d.PositiveGustLine = Segment{
		From: Point{V: a.CruiseSpeed, N: d.endpoint(d.GustCruisePos, 1+d.CruiseGustSlope*a.CruiseSpeed)},
		To:   Point{V: a.DiveSpeed, N: d.endpoint(d.GustDivePos, 1+d.DiveGustSlope*a.DiveSpeed)},
	}
	d.NegativeGustLine = Segment{
		From: Point{V: a.CruiseSpeed, N: d.endpoint(d.GustCruiseNeg, 1-d.CruiseGustSlope*a.CruiseSpeed)},
		To:   Point{V: a.DiveSpeed, N: d.endpoint(d.GustDiveNeg, 1-d.DiveGustSlope*a.DiveSpeed)},
	}
	return d, nil
}

// endpoint returns the last finite sample of series, or fallback when the
// sweep never reaches the line.
func (d *Diagram) endpoint(series []float64, fallback float64) float64 {
	if n, ok := LastFinite(series); ok {
		return n
	}
	return fallback
}

// LastFinite returns the last value of series that is neither NaN nor infinite.
func LastFinite(series []float64) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if v := series[i]; !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, true
		}
	}
	return 0, false
}

// Summary is the NaN-free digest of a Diagram.
type Summary struct {
	Aircraft           types.Aircraft `json:"aircraft"`
	Samples            int            `json:"samples"`
	SweepMin           float64        `json:"sweep_min_kts"`
	SweepMax           float64        `json:"sweep_max_kts"`
	NMax               float64        `json:"n_max"`
	NMin               float64        `json:"n_min"`
	CornerSpeed        float64        `json:"corner_speed_kts"`
	CruiseGustSlope    float64        `json:"cruise_gust_slope_per_kt"`
	DiveGustSlope      float64        `json:"dive_gust_slope_per_kt"`
	CruiseGustPositive float64        `json:"gust_cruise_pos_n1"`
	CruiseGustNegative float64        `json:"gust_cruise_neg_n1"`
	DiveGustPositive   float64        `json:"gust_dive_pos_n2"`
	DiveGustNegative   float64        `json:"gust_dive_neg_n2"`
}

// Summary returns the limit loads, corner speed and gust endpoints.
func (d *Diagram) Summary() Summary {
	return Summary{
		Aircraft:           d.Aircraft,
		Samples:            d.Sweep.Samples,
		SweepMin:           d.Sweep.Min,
		SweepMax:           d.Sweep.Max,
		NMax:               d.NMax,
		NMin:               d.NMin,
		CornerSpeed:        CornerSpeed(d.Aircraft, d.NMax),
		CruiseGustSlope:    d.CruiseGustSlope,
		DiveGustSlope:      d.DiveGustSlope,
		CruiseGustPositive: d.PositiveGustLine.From.N,
		CruiseGustNegative: d.NegativeGustLine.From.N,
		DiveGustPositive:   d.PositiveGustLine.To.N,
		DiveGustNegative:   d.NegativeGustLine.To.N,
	}
}

func (d *Diagram) String() string {
	return fmt.Sprintf("V-n diagram %q: n_max=%.3f n_min=%.3f, %d samples", d.Aircraft.Name, d.NMax, d.NMin, len(d.V))
}
