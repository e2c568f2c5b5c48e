package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when a model answers with no text.
var ErrEmptyResponse = errors.New("empty model response")

// TextGenerator produces a single JSON-bearing completion. Implementations
// must honour ctx cancellation.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, model, system, prompt string) (string, error)
}

var _ TextGenerator = (*AIClient)(nil)

type AIClient struct {
	client      *genai.Client
	temperature float32
	logger      *slog.Logger
}

func NewGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return client, nil
}

func NewAIClient(client *genai.Client, temperature float32, logger *slog.Logger) *AIClient {
	return &AIClient{
		client:      client,
		temperature: temperature,
		logger:      logger,
	}
}

func (ai *AIClient) GenerateJSON(ctx context.Context, model, system, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateJSON")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", "gemini"),
		attribute.String("llm.model", model),
		attribute.Int("prompt.length", len(prompt)),
	)

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](ai.temperature),
		ResponseMIMEType: "application/json",
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := ai.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate content")
		return "", fmt.Errorf("gemini %s: %w", model, err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		span.SetStatus(codes.Error, "Empty response")
		return "", fmt.Errorf("gemini %s: %w", model, ErrEmptyResponse)
	}
	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "Content generated")
	return text, nil
}
