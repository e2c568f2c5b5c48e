package generativeAI

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

// EmbeddingService turns texts into vectors with a single batched call.
type EmbeddingService struct {
	client   *genai.Client
	model    string
	maxChars int
	logger   *slog.Logger
}

func NewEmbeddingService(client *genai.Client, model string, maxChars int, logger *slog.Logger) *EmbeddingService {
	return &EmbeddingService{
		client:   client,
		model:    model,
		maxChars: maxChars,
		logger:   logger,
	}
}

// EmbedBatch returns one vector per input, in input order. Texts longer than
// the configured limit are cut at a rune boundary.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "EmbedBatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("embedding.model", s.model),
		attribute.Int("embedding.inputs", len(texts)),
	)

	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(Truncate(t, s.maxChars), genai.RoleUser))
	}

	result, err := s.client.Models.EmbedContent(ctx, s.model, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding failed")
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("no embeddings returned from API")
	}

	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, e := range result.Embeddings {
		if e == nil {
			vectors = append(vectors, nil)
			continue
		}
		vectors = append(vectors, e.Values)
	}
	span.SetAttributes(attribute.Int("embedding.outputs", len(vectors)))
	return vectors, nil
}

// Truncate cuts s to at most max runes. A non-positive max disables the cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
