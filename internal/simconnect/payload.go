package simconnect

import (
	"fmt"

	"github.com/eytandecker/vn-diagram/pkg/types"
)

// flightLoadPayloadSize is the packed width of FlightLoadSimVars.
func flightLoadPayloadSize() int {
	n := 0
	for _, sv := range FlightLoadSimVars {
		n += sv.DataType.Size()
	}
	return n
}

// ParseFlightLoadPayload decodes a SimObjectData payload laid out in
// FlightLoadSimVars order.
func ParseFlightLoadPayload(data []byte) (types.FlightLoad, error) {
	if want := flightLoadPayloadSize(); len(data) < want {
		return types.FlightLoad{}, fmt.Errorf("%w: got %d bytes, need %d", ErrShortPayload, len(data), want)
	}

	vals := make([]float64, len(FlightLoadSimVars))
	offset := 0
	for i, sv := range FlightLoadSimVars {
		v, err := ParseSimVarValue(data[offset:], sv.DataType)
		if err != nil {
			return types.FlightLoad{}, fmt.Errorf("parse %s: %w", sv.Name, err)
		}
		vals[i] = v
		offset += sv.DataType.Size()
	}

	return types.FlightLoad{
		TrueSpeed:      vals[0],
		IndicatedSpeed: vals[1],
		LoadFactor:     vals[2],
		Altitude:       vals[3],
	}, nil
}
