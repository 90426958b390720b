package state

import (
	"math"
	"sync"
	"time"

	"github.com/eytandecker/vn-diagram/pkg/types"
)

// Peaks are the extreme load factors seen since start or the last reset.
type Peaks struct {
	MaxLoadFactor float64
	MinLoadFactor float64
	MaxTrueSpeed  float64
	Samples       int
}

// Manager holds a concurrent-safe cache of the latest flight load sample.
type Manager struct {
	mu             sync.RWMutex
	load           types.FlightLoad
	peaks          Peaks
	lastUpdated    time.Time
	staleThreshold time.Duration
}

// NewManager creates a Manager with the given stale threshold.
// A zero threshold disables staleness checking.
func NewManager(staleThreshold time.Duration) *Manager {
	return &Manager{staleThreshold: staleThreshold}
}

// Update stores a new sample, folds it into the peaks and records the time.
func (m *Manager) Update(load types.FlightLoad) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.load = load
	m.lastUpdated = time.Now()

	if m.peaks.Samples == 0 {
		m.peaks = Peaks{
			MaxLoadFactor: load.LoadFactor,
			MinLoadFactor: load.LoadFactor,
			MaxTrueSpeed:  load.TrueSpeed,
		}
	} else {
		m.peaks.MaxLoadFactor = math.Max(m.peaks.MaxLoadFactor, load.LoadFactor)
		m.peaks.MinLoadFactor = math.Min(m.peaks.MinLoadFactor, load.LoadFactor)
		m.peaks.MaxTrueSpeed = math.Max(m.peaks.MaxTrueSpeed, load.TrueSpeed)
	}
	m.peaks.Samples++
}

// FlightLoad returns the cached sample, or ErrStale if no data has been
// received yet or the data age exceeds the stale threshold.
func (m *Manager) FlightLoad() (types.FlightLoad, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastUpdated.IsZero() {
		return types.FlightLoad{}, ErrStale
	}
	if m.staleThreshold > 0 && time.Since(m.lastUpdated) > m.staleThreshold {
		return types.FlightLoad{}, ErrStale
	}
	return m.load, nil
}

// Peaks returns the extremes recorded since start or the last TakePeaks.
func (m *Manager) Peaks() Peaks {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.peaks
}

// TakePeaks returns the recorded extremes and clears them under one lock,
// so every sample lands in exactly one window.
func (m *Manager) TakePeaks() Peaks {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.peaks
	m.peaks = Peaks{}
	return p
}

// LastUpdated returns the time of the most recent Update, or zero if never updated.
func (m *Manager) LastUpdated() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdated
}
