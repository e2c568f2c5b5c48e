package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

const (
	VerifiedThreshold    = 0.6
	AIGeneratedThreshold = 0.4
)

// ErrEmbeddingMismatch is returned when the embedding API answers with a
// different number of vectors than texts sent.
var ErrEmbeddingMismatch = errors.New("embedding count mismatch")

// Embedder is satisfied by generativeAI.EmbeddingService.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Verdict is the semantic check's opinion on one option.
type Verdict struct {
	Similarity float64
	Confidence types.Confidence
	// Substitute, when set, replaces the option's justification.
	Substitute string
}

// SemanticValidator compares each justification with what the catalog says
// about the place, by embedding both and taking cosine similarity.
type SemanticValidator struct {
	embedder Embedder
	timeout  time.Duration
	logger   *slog.Logger
}

func NewSemanticValidator(embedder Embedder, timeout time.Duration, logger *slog.Logger) *SemanticValidator {
	return &SemanticValidator{
		embedder: embedder,
		timeout:  timeout,
		logger:   logger,
	}
}

type pair struct {
	placeID uuid.UUID
	place   types.CatalogPlace
}

// Validate returns a verdict per place id. Any failure of the embedding call
// is returned as an error and no verdicts, so callers skip the step whole.
func (v *SemanticValidator) Validate(ctx context.Context, plan *types.Plan, places types.PlaceIndex) (map[uuid.UUID]Verdict, error) {
	ctx, span := otel.Tracer("SemanticValidator").Start(ctx, "Validate")
	defer span.End()

	var (
		pairs []pair
		texts []string
	)
	plan.Options(func(opt *types.PlanOption) {
		place, ok := places.Get(opt.PlaceID())
		if !ok || strings.TrimSpace(opt.Why) == "" {
			return
		}
		pairs = append(pairs, pair{placeID: opt.PlaceID(), place: place})
		texts = append(texts, opt.Why, ComparisonText(place))
	})
	span.SetAttributes(attribute.Int("pairs.count", len(pairs)))
	if len(pairs) == 0 {
		return map[uuid.UUID]Verdict{}, nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	vectors, err := v.embedder.EmbedBatch(embedCtx, texts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding failed")
		return nil, fmt.Errorf("semantic validation: %w", err)
	}
	if len(vectors) != len(texts) {
		err := fmt.Errorf("%w: sent %d, got %d", ErrEmbeddingMismatch, len(texts), len(vectors))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding count mismatch")
		return nil, err
	}

	verdicts := make(map[uuid.UUID]Verdict, len(pairs))
	for i, p := range pairs {
		sim, ok := Cosine(vectors[2*i], vectors[2*i+1])
		if !ok {
			v.logger.DebugContext(ctx, "Skipping option with unusable embeddings", slog.String("place_id", p.placeID.String()))
			continue
		}
		verdict := Verdict{Similarity: sim, Confidence: Classify(sim)}
		if verdict.Confidence == types.ConfidenceLow && strings.TrimSpace(p.place.Description) != "" {
			verdict.Substitute = p.place.Description
			verdict.Confidence = types.ConfidenceAIGenerated
		}
		verdicts[p.placeID] = verdict
	}
	span.SetStatus(codes.Ok, "Validated")
	return verdicts, nil
}

// Classify maps a similarity to a confidence class.
func Classify(similarity float64) types.Confidence {
	switch {
	case similarity >= VerifiedThreshold:
		return types.ConfidenceVerified
	case similarity >= AIGeneratedThreshold:
		return types.ConfidenceAIGenerated
	default:
		return types.ConfidenceLow
	}
}

// ComparisonText is what a justification is checked against.
func ComparisonText(p types.CatalogPlace) string {
	parts := make([]string, 0, 4)
	if d := strings.TrimSpace(p.Description); d != "" {
		parts = append(parts, d)
	}
	if len(p.Tags) > 0 {
		parts = append(parts, strings.Join(p.Tags, ", "))
	}
	if p.Category != "" {
		parts = append(parts, p.Category)
	}
	if p.Title != "" {
		parts = append(parts, p.Title)
	}
	return strings.Join(parts, ". ")
}

// Cosine returns the cosine similarity of a and b. ok is false for empty,
// zero or differently sized vectors.
func Cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
