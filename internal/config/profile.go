package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eytandecker/vn-diagram/internal/envelope"
	"github.com/eytandecker/vn-diagram/pkg/types"
)

// LoadAircraft reads a YAML aircraft profile from path. Keys missing from the
// file keep the default aircraft's values. An empty path yields the default.
func LoadAircraft(path string) (types.Aircraft, error) {
	if path == "" {
		return types.DefaultAircraft(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Aircraft{}, fmt.Errorf("config: read profile: %w", err)
	}
	a, err := ParseAircraft(data)
	if err != nil {
		return types.Aircraft{}, fmt.Errorf("config: profile %s: %w", path, err)
	}
	return a, nil
}

// ParseAircraft decodes and validates a YAML aircraft profile.
func ParseAircraft(data []byte) (types.Aircraft, error) {
	a := types.DefaultAircraft()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil && !errors.Is(err, io.EOF) {
		return types.Aircraft{}, fmt.Errorf("decode: %w", err)
	}
	if err := a.Validate(); err != nil {
		return types.Aircraft{}, err
	}
	return a, nil
}

// Sweep returns the velocity sweep described by the diagram config.
func (c DiagramConfig) Sweep() envelope.Sweep {
	s := envelope.DefaultSweep()
	s.Max = c.SweepMax
	s.Samples = c.SweepSamples
	return s
}
