package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eytandecker/vn-diagram/internal/config"
	"github.com/eytandecker/vn-diagram/internal/envelope"
	"github.com/eytandecker/vn-diagram/internal/state"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(config.Load())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestComputeJSON(t *testing.T) {
	out, err := execute(t, "compute", "--json")
	require.NoError(t, err)

	var s envelope.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "default", s.Aircraft.Name)
	assert.InDelta(t, 4.109208874, s.NMax, 1e-6)
	assert.Equal(t, 320, s.Samples)
}

func TestComputeTable(t *testing.T) {
	out, err := execute(t, "compute")
	require.NoError(t, err)
	assert.Contains(t, out, "n_max")
	assert.Contains(t, out, "4.109")
	assert.Contains(t, out, "104.21 kts")
}

func TestComputeWithProfileAndSweepFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trainer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: trainer\nmax_takeoff_weight_lb: 2400\n"), 0o600))

	out, err := execute(t, "compute", "--json", "--profile", path, "--samples", "100", "--sweep-max", "180")
	require.NoError(t, err)

	var s envelope.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	nMax, _ := envelope.LimitLoadFactors(2400)
	assert.Equal(t, "trainer", s.Aircraft.Name)
	assert.InDelta(t, nMax, s.NMax, 1e-9)
	assert.Equal(t, 100, s.Samples)
	assert.Equal(t, 180.0, s.SweepMax)
}

func TestComputeRejectsBadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dive_speed_kts: 50\n"), 0o600))

	_, err := execute(t, "compute", "--profile", path)
	assert.Error(t, err)
}

func TestRenderWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vn.svg")
	out, err := execute(t, "render", "-o", path, "--width", "8", "--height", "5")
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestRenderRejectsUnknownExtension(t *testing.T) {
	_, err := execute(t, "render", "-o", filepath.Join(t.TempDir(), "vn.bmp"))
	assert.Error(t, err)
}

func TestNewLoggerLevels(t *testing.T) {
	l, err := newLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))

	l, err = newLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	l, err = newLogger("nonsense", false)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
}

func TestRunPollerLoopStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := config.Load()
	cfg.SimConnect.Host = "127.0.0.1"
	cfg.SimConnect.Port = port
	cfg.SimConnect.Timeout = 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		runPollerLoop(ctx, cfg, state.NewManager(0), zap.NewNop())
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("runPollerLoop did not return after context cancellation")
	}
}

func TestReconnectBackoff(t *testing.T) {
	b := newReconnectBackoff(time.Second, 30*time.Second)

	var got []time.Duration
	for i := 0; i < 7; i++ {
		got = append(got, b.Delay(false))
	}
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 30 * time.Second, 30 * time.Second,
	}, got)

	assert.Equal(t, time.Second, b.Delay(true))
	assert.Equal(t, 2*time.Second, b.Delay(false))
}

func TestRunPollerReportsConnected(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 4096)
		_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		for {
			if _, err := conn.Read(buf); err != nil {
				break
			}
		}
		conn.Close()
	}()

	cfg := config.Load()
	cfg.SimConnect.Host = "127.0.0.1"
	cfg.SimConnect.Port = ln.Addr().(*net.TCPAddr).Port
	cfg.SimConnect.Timeout = time.Second
	cfg.Polling.Interval = 10 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	connected, err := runPoller(ctx, cfg, state.NewManager(0), zap.NewNop())
	assert.True(t, connected)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
}
