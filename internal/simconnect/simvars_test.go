package simconnect

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Bytes(v float64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	return b
}

func TestParseSimVarValue(t *testing.T) {
	negOne := make([]byte, 4)
	binary.LittleEndian.PutUint32(negOne, 0xFFFFFFFF)

	tests := []struct {
		name    string
		data    []byte
		dt      DataType
		want    float64
		wantErr bool
	}{
		{name: "float64 airspeed", data: float64Bytes(104.21), dt: DataTypeFloat64, want: 104.21},
		{name: "float64 negative G", data: float64Bytes(-1.5), dt: DataTypeFloat64, want: -1.5},
		{name: "int32 minus one", data: negOne, dt: DataTypeInt32, want: -1},
		{name: "float64 short", data: []byte{1, 2, 3}, dt: DataTypeFloat64, wantErr: true},
		{name: "int32 short", data: []byte{1}, dt: DataTypeInt32, wantErr: true},
		{name: "unknown type", data: float64Bytes(1), dt: DataType(9), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSimVarValue(tt.data, tt.dt)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDataTypeSize(t *testing.T) {
	assert.Equal(t, 8, DataTypeFloat64.Size())
	assert.Equal(t, 4, DataTypeInt32.Size())
}

func TestSimVarDefValidate(t *testing.T) {
	for _, sv := range FlightLoadSimVars {
		require.NoError(t, sv.Validate(), sv.Name)
	}

	tests := []struct {
		name string
		def  SimVarDef
	}{
		{"empty name", SimVarDef{Unit: "knots"}},
		{"empty unit", SimVarDef{Name: "AIRSPEED TRUE"}},
		{"NUL in name", SimVarDef{Name: "G\x00FORCE", Unit: "GForce"}},
		{"unknown data type", SimVarDef{Name: "G FORCE", Unit: "GForce", DataType: DataType(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.def.Validate(), ErrInvalidSimVar)
		})
	}
}
