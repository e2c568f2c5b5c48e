package generativeAI

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const claudeMaxTokens = 2048

var _ TextGenerator = (*ClaudeClient)(nil)

// ClaudeClient serves TextGenerator from the Anthropic Messages API. It is
// used where a second, independent model family is wanted.
type ClaudeClient struct {
	client anthropic.Client
	logger *slog.Logger
}

func NewClaudeClient(apiKey string, logger *slog.Logger) (*ClaudeClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}
	return &ClaudeClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		logger: logger,
	}, nil
}

func (c *ClaudeClient) GenerateJSON(ctx context.Context, model, system, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateJSON")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", "anthropic"),
		attribute.String("llm.model", model),
	)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: claudeMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Claude API call failed")
		return "", fmt.Errorf("claude %s: %w", model, err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		span.SetStatus(codes.Error, "Empty response")
		return "", fmt.Errorf("claude %s: %w", model, ErrEmptyResponse)
	}
	span.SetStatus(codes.Ok, "Content generated")
	return text, nil
}
