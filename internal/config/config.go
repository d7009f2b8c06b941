package config

import (
	"fmt"
	"os"
	"time"
)

// AppConfig holds all process-wide settings. It is loaded once at startup and
// passed by reference; nothing in the request path reads the environment.
type AppConfig struct {
	AppName string
	AppEnv  string
	Port    string

	LogLevel string

	// Upstream credentials. A missing credential is a valid runtime state:
	// the affected adapter reports "unavailable" instead of failing startup.
	EarthdataUsername string
	EarthdataPassword string
	OpenAQAPIKey      string
	AirNowAPIKey      string
	GeocoderAPIKey    string

	// Upstream base URLs, overridable for testing.
	WorldviewBase string
	GESDISCBase   string
	GPMBase       string
	OpenAQBase    string
	AirNowBase    string

	// Outbound HTTP timeout for provider calls.
	HTTPTimeout time.Duration

	// Interval between upstream availability probes.
	ProbeInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		AppName: getenvDefault("APP_NAME", "airhealth-data-api"),
		AppEnv:  getenvDefault("APP_ENV", "dev"),
		Port:    getenvDefault("PORT", "8080"),

		LogLevel: os.Getenv("LOG_LEVEL"),

		EarthdataUsername: os.Getenv("EARTHDATA_USERNAME"),
		EarthdataPassword: os.Getenv("EARTHDATA_PASSWORD"),
		OpenAQAPIKey:      os.Getenv("OPENAQ_API_KEY"),
		AirNowAPIKey:      os.Getenv("AIRNOW_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GOOGLE_GEOCODER_API_KEY"),

		WorldviewBase: getenvDefault("WORLDVIEW_BASE", "https://wvs.earthdata.nasa.gov/api/v1/snapshot"),
		GESDISCBase:   getenvDefault("GESDISC_BASE", "https://goldsmr4.gesdisc.eosdis.nasa.gov"),
		GPMBase:       getenvDefault("GPM_BASE", "https://gpm1.gesdisc.eosdis.nasa.gov"),
		OpenAQBase:    getenvDefault("OPENAQ_BASE", "https://api.openaq.org"),
		AirNowBase:    getenvDefault("AIRNOW_BASE", "https://www.airnowapi.org"),
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "40s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	probeStr := getenvDefault("PROBE_INTERVAL", "15m")
	probe, err := time.ParseDuration(probeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PROBE_INTERVAL: %w", err)
	}
	cfg.ProbeInterval = probe

	return cfg, nil
}

// HasEarthdata reports whether Earthdata basic-auth credentials are configured.
func (c *AppConfig) HasEarthdata() bool {
	return c.EarthdataUsername != "" && c.EarthdataPassword != ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
