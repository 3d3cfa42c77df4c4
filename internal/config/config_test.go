package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "groq")
	t.Setenv("GROQ_API_KEY", "gsk")

	cfg := Load()
	assert.Equal(t, 0.1, cfg.Ai.ClassifierTemperature)
	assert.Equal(t, 0.7, cfg.Ai.GenerationTemperature)
	assert.Equal(t, 5, cfg.Retrieval.QueryLimit)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 6, cfg.Retrieval.HistoryWindow)
	assert.Equal(t, time.Hour, cfg.Retrieval.SessionTTL)
	assert.Equal(t, "gsk", cfg.LLMAPIKey())
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_FLOAT", "")
	t.Setenv("X_BOOL", "yes please")

	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
	assert.Equal(t, 0.5, getEnvAsFloat("X_FLOAT", 0.5))
	assert.True(t, getEnvAsBool("X_BOOL", true))

	t.Setenv("X_BOOL", "false")
	assert.False(t, getEnvAsBool("X_BOOL", true))
}
