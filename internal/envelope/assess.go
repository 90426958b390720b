package envelope

import "math"

// Status classifies a flight point against the combined envelope.
type Status string

const (
	StatusWithin             Status = "WITHIN_ENVELOPE"
	StatusOverspeed          Status = "OVERSPEED"
	StatusOverstressPositive Status = "OVERSTRESS_POSITIVE"
	StatusOverstressNegative Status = "OVERSTRESS_NEGATIVE"
	StatusInvalidSample      Status = "INVALID_SAMPLE"
)

// Assessment is the result of checking one (airspeed, load factor) point.
// Limits and margins are evaluated at the airspeed clamped to [0, V_d].
type Assessment struct {
	TrueSpeed      float64 `json:"true_speed_kts"`
	LoadFactor     float64 `json:"load_factor"`
	PositiveLimit  float64 `json:"positive_limit"`
	NegativeLimit  float64 `json:"negative_limit"`
	PositiveMargin float64 `json:"positive_margin"`
	NegativeMargin float64 `json:"negative_margin"`
	Status         Status  `json:"status"`
}

// Limits returns the combined positive and negative load boundaries at v,
// taking the outermost of the maneuver envelope, the gust lines and the
// connecting gust segments.
func (d *Diagram) Limits(v float64) (pos, neg float64) {
	a := d.Aircraft
	v = clip(v, 0, a.DiveSpeed)

	pos = ManeuverLoadFactor(a, d.NMax, v)
	neg = NegativeManeuverLoadFactor(a, d.NMax, d.NMin, v)

	pos = math.Max(pos, 1+d.DiveGustSlope*v)
	neg = math.Min(neg, 1-d.DiveGustSlope*v)

	if v <= a.CruiseSpeed {
		pos = math.Max(pos, 1+d.CruiseGustSlope*v)
		neg = math.Min(neg, 1-d.CruiseGustSlope*v)
	} else {
		pos = math.Max(pos, d.PositiveGustLine.At(v))
		neg = math.Min(neg, d.NegativeGustLine.At(v))
	}
	return pos, neg
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Assess checks a live (airspeed, load factor) point against the diagram.
// A point with a NaN or infinite coordinate is StatusInvalidSample with all
// numeric fields zero.
func (d *Diagram) Assess(v, n float64) Assessment {
	if !finite(v) || !finite(n) {
		return Assessment{Status: StatusInvalidSample}
	}
	pos, neg := d.Limits(v)
	res := Assessment{
		TrueSpeed:      v,
		LoadFactor:     n,
		PositiveLimit:  pos,
		NegativeLimit:  neg,
		PositiveMargin: pos - n,
		NegativeMargin: n - neg,
	}

	switch {
	case v > d.Aircraft.DiveSpeed:
		res.Status = StatusOverspeed
	case n > pos:
		res.Status = StatusOverstressPositive
	case n < neg:
		res.Status = StatusOverstressNegative
	default:
		res.Status = StatusWithin
	}
	return res
}
