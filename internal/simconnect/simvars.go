package simconnect

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// DataType represents the SimConnect data type for a SimVar value.
type DataType int

const (
	DataTypeFloat64 DataType = iota
	DataTypeInt32
)

// Size returns the encoded width in bytes.
func (dt DataType) Size() int {
	if dt == DataTypeInt32 {
		return 4
	}
	return 8
}

// SimVarDef defines a SimConnect simulation variable.
type SimVarDef struct {
	Name     string
	Unit     string
	DataType DataType
}

// SimVars read for envelope monitoring.
var (
	AirspeedTrue = SimVarDef{
		Name:     "AIRSPEED TRUE",
		Unit:     "knots",
		DataType: DataTypeFloat64,
	}
	AirspeedIndicated = SimVarDef{
		Name:     "AIRSPEED INDICATED",
		Unit:     "knots",
		DataType: DataTypeFloat64,
	}
	GForce = SimVarDef{
		Name:     "G FORCE",
		Unit:     "GForce",
		DataType: DataTypeFloat64,
	}
	PlaneAltitude = SimVarDef{
		Name:     "PLANE ALTITUDE",
		Unit:     "feet",
		DataType: DataTypeFloat64,
	}
)

// Validate checks that the definition can be encoded into an AddToDataDef frame.
func (d SimVarDef) Validate() error {
	switch {
	case d.Name == "" || d.Unit == "":
		return fmt.Errorf("%w: name and unit are required", ErrInvalidSimVar)
	case strings.IndexByte(d.Name, 0) >= 0 || strings.IndexByte(d.Unit, 0) >= 0:
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidSimVar, d.Name)
	case d.DataType != DataTypeFloat64 && d.DataType != DataTypeInt32:
		return fmt.Errorf("%w: %s has unsupported data type %d", ErrInvalidSimVar, d.Name, d.DataType)
	}
	return nil
}

// ParseSimVarValue decodes raw little-endian bytes as dt, widened to float64.
func ParseSimVarValue(data []byte, dt DataType) (float64, error) {
	switch dt {
	case DataTypeFloat64:
		if len(data) < 8 {
			return 0, fmt.Errorf("%w: float64 needs 8 bytes, got %d", ErrShortPayload, len(data))
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(data[:8])), nil
	case DataTypeInt32:
		if len(data) < 4 {
			return 0, fmt.Errorf("%w: int32 needs 4 bytes, got %d", ErrShortPayload, len(data))
		}
		return float64(int32(binary.LittleEndian.Uint32(data[:4]))), nil //nolint:gosec // signed reinterpretation
	default:
		return 0, fmt.Errorf("unsupported data type: %d", dt)
	}
}
