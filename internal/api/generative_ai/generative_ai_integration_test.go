//go:build integration

package generativeAI

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Check if API key is available for integration tests
	if os.Getenv("GOOGLE_GEMINI_API_KEY") == "" {
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func TestAIClient_GenerateJSON_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewGenAIClient(ctx, os.Getenv("GOOGLE_GEMINI_API_KEY"))
	require.NoError(t, err)
	ai := NewAIClient(client, 0.1, slog.New(slog.NewTextHandler(io.Discard, nil)))

	text, err := ai.GenerateJSON(ctx, "gemini-2.0-flash", "Answer with JSON only.", `Return {"capital": "<capital of Portugal>"}`)
	require.NoError(t, err)

	var out struct {
		Capital string `json:"capital"`
	}
	require.NoError(t, json.Unmarshal([]byte(CleanJSONResponse(text)), &out))
	assert.Contains(t, out.Capital, "Lisbon")
}

func TestEmbeddingService_EmbedBatch_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewGenAIClient(ctx, os.Getenv("GOOGLE_GEMINI_API_KEY"))
	require.NoError(t, err)
	svc := NewEmbeddingService(client, "gemini-embedding-001", 1000, slog.New(slog.NewTextHandler(io.Discard, nil)))

	vectors, err := svc.EmbedBatch(ctx, []string{"кофейня с завтраками", "coffee shop serving breakfast"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.NotEmpty(t, vectors[0])
	assert.Equal(t, len(vectors[0]), len(vectors[1]))
}
