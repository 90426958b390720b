package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Diagram    DiagramConfig
	SimConnect SimConnectConfig
	Polling    PollingConfig
	LogLevel   string
}

// DiagramConfig holds V-n diagram inputs and output settings.
type DiagramConfig struct {
	ProfilePath  string
	OutputPath   string
	SweepMax     float64
	SweepSamples int
	Width        float64
	Height       float64
}

// SimConnectConfig holds SimConnect TCP connection settings.
type SimConnectConfig struct {
	Host    string
	Port    int
	Timeout time.Duration
	AppName string
}

// PollingConfig holds live data polling settings.
type PollingConfig struct {
	Interval       time.Duration
	StaleThreshold time.Duration
}

// Load reads configuration from environment variables, falling back to defaults.
func Load() Config {
	return Config{
		Diagram: DiagramConfig{
			ProfilePath:  getEnvString("VN_PROFILE", ""),
			OutputPath:   getEnvString("VN_OUTPUT", "vn-diagram.png"),
			SweepMax:     getEnvFloat("VN_SWEEP_MAX", 160),
			SweepSamples: getEnvInt("VN_SWEEP_SAMPLES", 320),
			Width:        getEnvFloat("VN_WIDTH_IN", 10),
			Height:       getEnvFloat("VN_HEIGHT_IN", 6),
		},
		SimConnect: SimConnectConfig{
			Host:    getEnvString("SIMCONNECT_HOST", "127.0.0.1"),
			Port:    getEnvInt("SIMCONNECT_PORT", 4500),
			Timeout: getEnvDuration("SIMCONNECT_TIMEOUT", 10*time.Second),
			AppName: getEnvString("SIMCONNECT_APP_NAME", "vn-diagram"),
		},
		Polling: PollingConfig{
			Interval:       getEnvDuration("POLL_INTERVAL", 250*time.Millisecond),
			StaleThreshold: getEnvDuration("STALE_THRESHOLD", 5*time.Second),
		},
		LogLevel: getEnvString("LOG_LEVEL", "info"),
	}
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
