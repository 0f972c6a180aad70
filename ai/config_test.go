package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	assert.NotEmpty(t, cfg.EmbeddingModel)
	assert.NotEmpty(t, cfg.ChatModel)
	assert.Equal(t, "none", cfg.APIKey)
	require.NoError(t, cfg.Validate())
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://inference.local:9100"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithChatModel("gpt-4o-mini"),
		WithAPIKey("sk-test"),
		WithTemperature(0.2),
	)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://inference.local:9100/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://inference.local:9100/v1", cfg.ChatHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, 0.2, cfg.Temperature)
}

func TestConfigNormalize(t *testing.T) {
	cfg := NewConfig(WithEmbeddingHost("http://a/"), WithChatHost("http://b/v1"))
	cfg.Normalize()
	assert.Equal(t, "http://a/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://b/v1", cfg.ChatHost)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }},
		{"missing chat host", func(c *Config) { c.ChatHost = "" }},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }},
		{"missing chat model", func(c *Config) { c.ChatModel = "" }},
		{"temperature out of range", func(c *Config) { c.Temperature = 3.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
