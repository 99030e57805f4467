package main

import (
	"context"
	"io"
	"testing"
	"time"

	"ewintr.nl/vidqa/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// clearEnv blanks every setting, which getParam treats as unset.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"GENERATOR", "GOOGLE_API_KEY", "GEMINI_MODEL", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"LOCAL_MODEL_URL", "LOCAL_MODEL", "YOUTUBE_API_KEY", "YOUTUBE_BASE_URL", "API_PORT", "DEFAULT_LANGUAGE",
		"FETCH_TIMEOUT", "GENERATE_TIMEOUT", "GEN_TEMPERATURE", "GEN_TOP_P", "GEN_TOP_K",
		"GEN_MAX_OUTPUT_TOKENS", "GEN_RESPONSE_FORMAT", "SESSION_MAX_EXCHANGES", "SESSION_MAX",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "key")

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, BackendGemini, cfg.Backend)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
		assert.Equal(t, time.Minute, cfg.GenerateTimeout)
		assert.Equal(t, generator.DefaultOptions(), cfg.GenOptions)
		assert.Equal(t, "en", cfg.Language)
		assert.Equal(t, "https://www.youtube.com", cfg.YoutubeBaseURL)
		assert.Equal(t, 100, cfg.SessionMaxExchanges)
		assert.Equal(t, 1000, cfg.SessionMax)
	})

	t.Run("generation options", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GENERATOR", "local")
		t.Setenv("API_PORT", "9000")
		t.Setenv("GEN_TEMPERATURE", "0.5")
		t.Setenv("GEN_TOP_P", "0.9")
		t.Setenv("GEN_TOP_K", "10")
		t.Setenv("GEN_MAX_OUTPUT_TOKENS", "256")
		t.Setenv("GEN_RESPONSE_FORMAT", "application/json")

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, generator.Options{
			Temperature:     0.5,
			TopP:            0.9,
			TopK:            10,
			MaxOutputTokens: 256,
			ResponseFormat:  "application/json",
		}, cfg.GenOptions)
		assert.Equal(t, 9000, cfg.Port)
		assert.Equal(t, "http://localhost:8081/v1", cfg.LocalModelURL)
	})

	for _, tc := range []struct {
		name string
		env  map[string]string
	}{
		{name: "missing gemini key", env: map[string]string{"GENERATOR": "gemini"}},
		{name: "missing openai key", env: map[string]string{"GENERATOR": "openai"}},
		{name: "unknown generator", env: map[string]string{"GENERATOR": "bard", "GOOGLE_API_KEY": "key"}},
		{name: "bad port", env: map[string]string{"GOOGLE_API_KEY": "key", "API_PORT": "http"}},
		{name: "bad timeout", env: map[string]string{"GOOGLE_API_KEY": "key", "FETCH_TIMEOUT": "soon"}},
		{name: "bad session limit", env: map[string]string{"GOOGLE_API_KEY": "key", "SESSION_MAX": "lots"}},
		{name: "bad top k", env: map[string]string{"GOOGLE_API_KEY": "key", "GEN_TOP_K": "many"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := loadConfig()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewPipeline(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, backend := range []string{BackendGemini, BackendOpenAI, BackendLocal} {
		t.Run(backend, func(t *testing.T) {
			cfg := Config{
				Backend:        backend,
				GoogleAPIKey:   "key",
				OpenAIAPIKey:   "key",
				LocalModelURL:  "http://localhost:8081/v1",
				YoutubeBaseURL: "http://localhost",
				FetchTimeout:   time.Second,
				GenOptions:     generator.DefaultOptions(),
			}
			p, err := newPipeline(context.Background(), cfg, logger)
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}

	_, err := newGenerator(context.Background(), Config{Backend: "bard"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
