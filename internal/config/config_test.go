package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EDUSCRIPT_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("EDUSCRIPT_LLM_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "audio", cfg.AudioDir)
	assert.True(t, cfg.TTSEnabled)
	assert.Equal(t, "nova", cfg.TTSVoice)
	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, "openai", cfg.LLM.Provider)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EDUSCRIPT_LLM_PROVIDER", "mock")
	t.Setenv("EDUSCRIPT_PORT", "9999")
	t.Setenv("EDUSCRIPT_AUDIO_DIR", "/tmp/narration")
	t.Setenv("EDUSCRIPT_TTS_ENABLED", "false")
	t.Setenv("EDUSCRIPT_TTS_VOICE", "echo")
	t.Setenv("EDUSCRIPT_RATE_LIMIT", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr())
	assert.Equal(t, "/tmp/narration", cfg.AudioDir)
	assert.False(t, cfg.TTSEnabled)
	assert.Equal(t, "echo", cfg.TTSVoice)
	assert.Equal(t, 42, cfg.RateLimit)
}

func TestLoadBadRateLimit(t *testing.T) {
	t.Setenv("EDUSCRIPT_LLM_PROVIDER", "mock")
	t.Setenv("EDUSCRIPT_RATE_LIMIT", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingKey(t *testing.T) {
	t.Setenv("EDUSCRIPT_LLM_PROVIDER", "openai")
	t.Setenv("EDUSCRIPT_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}
