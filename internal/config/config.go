// Package config loads the process-wide configuration from environment
// variables. The configuration is read once at startup and treated as
// read-only afterwards; nothing in the request path mutates it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultCompletionBaseURL points at a local LM Studio instance, which
	// exposes an OpenAI-compatible chat completions endpoint.
	DefaultCompletionBaseURL = "http://localhost:1234/v1"
	// DefaultCompletionModel is the placeholder model name LM Studio accepts
	// for whatever model is currently loaded.
	DefaultCompletionModel = "local-model"
	// DefaultWeatherBaseURL is the OpenWeather current-weather API root.
	DefaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5"
	// DefaultLocation is the subject used when a lookup query names no location.
	DefaultLocation = "Jakarta"
	// DefaultTimeout bounds every individual outbound call.
	DefaultTimeout = 30 * time.Second
	// DefaultListenAddr is the address the HTTP server binds to.
	DefaultListenAddr = ":8000"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	AppName    string
	AppVersion string
	Debug      bool

	// Completion service (LM Studio or any OpenAI-compatible endpoint).
	CompletionBaseURL string
	CompletionModel   string
	CompletionAPIKey  string

	// Data lookup service (OpenWeather).
	WeatherBaseURL string
	WeatherAPIKey  string

	// DefaultLocation is used when location extraction yields nothing.
	DefaultLocation string

	// Timeout applies to each outbound call individually, not to the
	// request as a whole.
	Timeout time.Duration

	ListenAddr string
}

// Load reads the configuration from the environment, applying defaults for
// everything optional. It never fails: validation of required settings is a
// separate, explicit step so callers can decide how hard to fail.
func Load() Config {
	return Config{
		AppName:           envString("APP_NAME", "AI Agent Backend"),
		AppVersion:        envString("APP_VERSION", "1.0.0"),
		Debug:             envBool("DEBUG", false),
		CompletionBaseURL: envString("LM_STUDIO_BASE_URL", DefaultCompletionBaseURL),
		CompletionModel:   envString("LM_STUDIO_MODEL", DefaultCompletionModel),
		CompletionAPIKey:  envString("LM_STUDIO_API_KEY", "lm-studio"),
		WeatherBaseURL:    envString("OPENWEATHER_BASE_URL", DefaultWeatherBaseURL),
		WeatherAPIKey:     os.Getenv("OPENWEATHER_API_KEY"),
		DefaultLocation:   envString("DEFAULT_LOCATION", DefaultLocation),
		Timeout:           envDuration("AGENT_TIMEOUT", DefaultTimeout),
		ListenAddr:        envString("LISTEN_ADDR", DefaultListenAddr),
	}
}

// Validate reports configuration problems that would otherwise only surface
// on first use. A missing weather API key is intentionally not an error here:
// the lookup tool degrades to a stable user-facing message instead, so the
// rest of the service stays usable.
func (c Config) Validate() error {
	if c.CompletionBaseURL == "" {
		return fmt.Errorf("completion base URL must not be empty")
	}
	if c.CompletionModel == "" {
		return fmt.Errorf("completion model must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return fallback
}

// envDuration accepts either a bare number of seconds ("30", matching the
// original deployment convention) or a Go duration string ("30s", "1m").
func envDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return fallback
}
