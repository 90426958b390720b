package envelope

import (
	"math"

	"github.com/eytandecker/vn-diagram/pkg/types"
)

const (
	limitLoadBase         = 2.1
	limitLoadNumerator    = 24000.0
	limitLoadWeightOffset = 10000.0
	negativeLimitRatio    = -0.4

	// Airspeed divisors applied inside the gust increment terms.
	cruiseGustDivisor = 2.1 * 1.688
	diveGustDivisor   = 2.0
)

// LimitLoadFactors returns the positive and negative limit load factors for
// a maximum takeoff weight in pounds.
func LimitLoadFactors(weight float64) (nMax, nMin float64) {
	nMax = limitLoadBase + limitLoadNumerator/(weight+limitLoadWeightOffset)
	return nMax, nMax * negativeLimitRatio
}

// ManeuverLoadFactor returns the positive maneuver boundary at v: the stall
// cubic clipped to [0, nMax] below cruise speed and nMax from cruise on.
// It does not apply the dive-speed cutoff.
func ManeuverLoadFactor(a types.Aircraft, nMax, v float64) float64 {
	if v >= a.CruiseSpeed {
		return nMax
	}
	return clip(math.Pow(v/a.StallSpeed, 3), 0, nMax)
}

// NegativeManeuverLoadFactor mirrors the positive boundary, clipped to [nMin, 0].
func NegativeManeuverLoadFactor(a types.Aircraft, nMax, nMin, v float64) float64 {
	return clip(-ManeuverLoadFactor(a, nMax, v), nMin, 0)
}

// CruiseGustIncrement is the load factor increment from the cruise gust at v.
func CruiseGustIncrement(a types.Aircraft, v float64) float64 {
	return gustIncrement(a, a.CruiseGustVelocity, v/cruiseGustDivisor)
}

// DiveGustIncrement is the load factor increment from the dive gust at v.
func DiveGustIncrement(a types.Aircraft, v float64) float64 {
	return gustIncrement(a, a.DiveGustVelocity, v/diveGustDivisor)
}

func gustIncrement(a types.Aircraft, gust, speedTerm float64) float64 {
	return a.AirDensity * a.LiftCurveSlope * gust * speedTerm / wingLoadingTerm(a)
}

func wingLoadingTerm(a types.Aircraft) float64 {
	return 2 * a.MaxTakeoffWeight / a.WingArea
}

// CornerSpeed is where the stall cubic reaches nMax, capped at cruise speed.
func CornerSpeed(a types.Aircraft, nMax float64) float64 {
	return math.Min(a.StallSpeed*math.Cbrt(nMax), a.CruiseSpeed)
}

func clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
