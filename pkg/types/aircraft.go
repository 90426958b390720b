package types

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidAircraft is returned when aircraft constants cannot produce a V-n diagram.
var ErrInvalidAircraft = errors.New("types: invalid aircraft")

// Aircraft holds the aerodynamic and weight constants a V-n diagram is derived from.
// Speeds are true airspeed in knots.
type Aircraft struct {
	Name               string  `yaml:"name" json:"name"`
	StallSpeed         float64 `yaml:"stall_speed_kts" json:"stall_speed_kts"`
	CruiseSpeed        float64 `yaml:"cruise_speed_kts" json:"cruise_speed_kts"`
	DiveSpeed          float64 `yaml:"dive_speed_kts" json:"dive_speed_kts"`
	MaxTakeoffWeight   float64 `yaml:"max_takeoff_weight_lb" json:"max_takeoff_weight_lb"`
	WingArea           float64 `yaml:"wing_area_ft2" json:"wing_area_ft2"`
	LiftCurveSlope     float64 `yaml:"lift_curve_slope" json:"lift_curve_slope"`
	CruiseGustVelocity float64 `yaml:"cruise_gust_fps" json:"cruise_gust_fps"`
	DiveGustVelocity   float64 `yaml:"dive_gust_fps" json:"dive_gust_fps"`
	AirDensity         float64 `yaml:"air_density" json:"air_density"`
}

// DefaultAircraft returns the reference light aircraft.
func DefaultAircraft() Aircraft {
	return Aircraft{
		Name:               "default",
		StallSpeed:         60,
		CruiseSpeed:        104.21,
		DiveSpeed:          146.27,
		MaxTakeoffWeight:   1945,
		WingArea:           155,
		LiftCurveSlope:     0.43,
		CruiseGustVelocity: 50,
		DiveGustVelocity:   25,
		AirDensity:         0.0765,
	}
}

// Validate checks that every constant is finite and positive and that
// stall < cruise < dive.
func (a Aircraft) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"stall_speed_kts", a.StallSpeed},
		{"cruise_speed_kts", a.CruiseSpeed},
		{"dive_speed_kts", a.DiveSpeed},
		{"max_takeoff_weight_lb", a.MaxTakeoffWeight},
		{"wing_area_ft2", a.WingArea},
		{"lift_curve_slope", a.LiftCurveSlope},
		{"cruise_gust_fps", a.CruiseGustVelocity},
		{"dive_gust_fps", a.DiveGustVelocity},
		{"air_density", a.AirDensity},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return fmt.Errorf("%w: %s must be a positive number, got %v", ErrInvalidAircraft, f.name, f.v)
		}
	}
	if a.StallSpeed >= a.CruiseSpeed {
		return fmt.Errorf("%w: stall speed %.2f kts must be below cruise speed %.2f kts", ErrInvalidAircraft, a.StallSpeed, a.CruiseSpeed)
	}
	if a.CruiseSpeed >= a.DiveSpeed {
		return fmt.Errorf("%w: cruise speed %.2f kts must be below dive speed %.2f kts", ErrInvalidAircraft, a.CruiseSpeed, a.DiveSpeed)
	}
	return nil
}

// FlightLoad is one live sample of airspeed and load factor.
type FlightLoad struct {
	TrueSpeed      float64 // knots
	IndicatedSpeed float64 // knots
	LoadFactor     float64 // G
	Altitude       float64 // feet MSL
}

// Finite reports whether every field is a finite number.
func (l FlightLoad) Finite() bool {
	for _, v := range []float64{l.TrueSpeed, l.IndicatedSpeed, l.LoadFactor, l.Altitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
