// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/abhisek/eduscript/internal/llm"
)

// Config holds everything the server needs to run.
type Config struct {
	Port     string
	DBPath   string
	AudioDir string

	// TTS settings. When TTSEnabled is false, script generation still
	// works; narration requests are rejected with a clear error.
	TTSEnabled bool
	TTSVoice   string

	// RateLimit is requests per minute per client for generation.
	RateLimit int

	LLM llm.Config
}

// Load reads configuration from EDUSCRIPT_* environment variables and
// falls back to provider auto-discovery for the model settings.
func Load() (*Config, error) {
	cfg := &Config{
		Port:       getEnv("EDUSCRIPT_PORT", "8080"),
		DBPath:     os.Getenv("EDUSCRIPT_DB"),
		AudioDir:   getEnv("EDUSCRIPT_AUDIO_DIR", "audio"),
		TTSEnabled: getEnv("EDUSCRIPT_TTS_ENABLED", "true") == "true",
		TTSVoice:   getEnv("EDUSCRIPT_TTS_VOICE", "nova"),
		RateLimit:  10,
		LLM:        loadLLMConfig(),
	}

	if n := os.Getenv("EDUSCRIPT_RATE_LIMIT"); n != "" {
		var v int
		if _, err := fmt.Sscanf(n, "%d", &v); err != nil || v <= 0 {
			return nil, fmt.Errorf("EDUSCRIPT_RATE_LIMIT must be a positive integer, got %q", n)
		}
		cfg.RateLimit = v
	}

	if err := cfg.LLM.Validate(); err != nil {
		return nil, fmt.Errorf("llm configuration: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// loadLLMConfig prefers explicit EDUSCRIPT_* model settings; without
// them it probes the standard vendor key variables.
func loadLLMConfig() llm.Config {
	if os.Getenv("EDUSCRIPT_LLM_PROVIDER") != "" {
		return llm.ConfigFromEnv()
	}
	if cfg, ok := llm.DiscoverConfig(); ok {
		return cfg
	}
	return llm.ConfigFromEnv()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
