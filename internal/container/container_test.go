package container

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-poi-planner/config"
)

func testConfig() *config.Config {
	var cfg config.Config
	cfg.Catalog.TTL = time.Minute
	cfg.Catalog.CityTTL = time.Hour
	cfg.Catalog.CandidateLimit = 25
	cfg.Catalog.PlanTTL = time.Hour
	cfg.Routing.BaseURL = "http://localhost:5000"
	cfg.Routing.Mode = "foot"
	cfg.Judge.Provider = "anthropic"
	return &cfg
}

func TestNewContainer_WithoutKeys(t *testing.T) {
	t.Setenv(geminiKeyEnv, "")
	t.Setenv(anthropicKeyEnv, "")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := NewContainer(context.Background(), testConfig(), nil, logger)
	require.NoError(t, err)

	assert.NotNil(t, c.CatalogService)
	assert.NotNil(t, c.PlannerService)
	assert.NotNil(t, c.PlannerHandler)
	assert.Empty(t, c.JudgeProvider)
	c.Close()
}

func TestNewContainer_AnthropicJudgeOnly(t *testing.T) {
	t.Setenv(geminiKeyEnv, "")
	t.Setenv(anthropicKeyEnv, "test-key")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := testConfig()
	cfg.Judge.Model = config.DefaultGeminiJudgeModel

	c, err := NewContainer(context.Background(), cfg, nil, logger)
	require.NoError(t, err)
	assert.NotNil(t, c.PlannerHandler)
	assert.Equal(t, config.JudgeProviderAnthropic, c.JudgeProvider)
	assert.Equal(t, config.DefaultAnthropicJudgeModel, c.JudgeModel)
}

func TestNewContainer_AnthropicWithoutKeyFallsBackToGemini(t *testing.T) {
	t.Setenv(geminiKeyEnv, "test-key")
	t.Setenv(anthropicKeyEnv, "")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig()
	cfg.Judge.Model = config.DefaultAnthropicJudgeModel

	c, err := NewContainer(context.Background(), cfg, nil, logger)
	require.NoError(t, err)
	assert.Equal(t, config.JudgeProviderGemini, c.JudgeProvider)
	assert.Equal(t, config.DefaultGeminiJudgeModel, c.JudgeModel)
}

func TestJudgeModel(t *testing.T) {
	tests := []struct {
		provider   string
		configured string
		want       string
	}{
		{config.JudgeProviderGemini, "gemini-2.5-flash", "gemini-2.5-flash"},
		{config.JudgeProviderGemini, "claude-3-5-haiku-latest", config.DefaultGeminiJudgeModel},
		{config.JudgeProviderGemini, "", config.DefaultGeminiJudgeModel},
		{config.JudgeProviderAnthropic, "claude-sonnet-4-0", "claude-sonnet-4-0"},
		{config.JudgeProviderAnthropic, "gemini-2.0-flash-lite", config.DefaultAnthropicJudgeModel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JudgeModel(tt.provider, tt.configured), "%s/%s", tt.provider, tt.configured)
	}
}

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), nil, nil, slog.Default())
	assert.Error(t, err)
}
