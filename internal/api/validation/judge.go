package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	generativeAI "github.com/FACorreiaa/go-poi-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

const judgeSystemPrompt = `You review travel plans for errors. You are given the catalog facts for every place and a plan built from them.

Flag only real problems, using these types:
- "logical_contradiction": the plan contradicts itself or the catalog (e.g. a closed venue recommended as open).
- "temporal_impossibility": an activity is scheduled at an implausible time (e.g. a nightclub at 09:00, breakfast at 23:00).
- "geographic_error": the plan claims a location or proximity the catalog does not support.
- "fabricated_detail": the "why" text states a fact (amenity, dish, price, view, history) absent from the catalog facts.

Respond with JSON only:
{"valid": true|false, "issues": [{"optionId": "<place id>", "type": "<type>", "description": "<short reason>"}]}`

type judgeFact struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Address      string   `json:"address,omitempty"`
	OpeningHours string   `json:"openingHours,omitempty"`
}

type judgeOption struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Why   string `json:"why"`
}

type judgeSection struct {
	Title     string        `json:"title"`
	TimeRange string        `json:"timeRange,omitempty"`
	Options   []judgeOption `json:"options"`
	Reserves  []judgeOption `json:"reserves,omitempty"`
}

// Judge asks a second, independent model to cross-check a finished plan.
type Judge struct {
	llm     generativeAI.TextGenerator
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewJudge(llm generativeAI.TextGenerator, model string, timeout time.Duration, logger *slog.Logger) *Judge {
	return &Judge{
		llm:     llm,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Review never fails: a timeout, an API error or an unparsable answer all
// yield types.NoIssues.
func (j *Judge) Review(ctx context.Context, plan *types.Plan, places types.PlaceIndex) types.JudgeResult {
	ctx, span := otel.Tracer("Judge").Start(ctx, "Review")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", j.model))

	prompt, err := judgePrompt(plan, places)
	if err != nil {
		span.RecordError(err)
		j.logger.WarnContext(ctx, "Judge prompt could not be built", slog.Any("error", err))
		return types.NoIssues()
	}

	reviewCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	text, err := j.llm.GenerateJSON(reviewCtx, j.model, judgeSystemPrompt, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Judge call failed")
		j.logger.WarnContext(ctx, "Judge unavailable, assuming no issues", slog.Any("error", err))
		return types.NoIssues()
	}

	var result types.JudgeResult
	if err := json.Unmarshal([]byte(generativeAI.CleanJSONResponse(text)), &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unparsable verdict")
		j.logger.WarnContext(ctx, "Judge answer unparsable, assuming no issues", slog.Any("error", err))
		return types.NoIssues()
	}
	if result.Issues == nil {
		result.Issues = []types.JudgeIssue{}
	}
	for i := range result.Issues {
		result.Issues[i].OptionID = strings.TrimSpace(result.Issues[i].OptionID)
	}

	span.SetAttributes(
		attribute.Bool("judge.valid", result.Valid),
		attribute.Int("judge.issues", len(result.Issues)),
	)
	span.SetStatus(codes.Ok, "Reviewed")
	return result
}

func judgePrompt(plan *types.Plan, places types.PlaceIndex) (string, error) {
	var facts []judgeFact
	project := func(opts []types.PlanOption) []judgeOption {
		out := make([]judgeOption, 0, len(opts))
		for _, o := range opts {
			id := o.PlaceID().String()
			out = append(out, judgeOption{ID: id, Title: o.Stop.Title, Why: o.Why})
			if p, ok := places.Get(o.PlaceID()); ok {
				facts = append(facts, judgeFact{
					ID:           id,
					Title:        p.Title,
					Category:     p.Category,
					Description:  p.Description,
					Tags:         p.Tags,
					Address:      p.Address,
					OpeningHours: p.OpeningHours,
				})
			}
		}
		return out
	}

	sections := make([]judgeSection, 0, len(plan.Sections))
	for _, s := range plan.Sections {
		sections = append(sections, judgeSection{
			Title:     s.Title,
			TimeRange: s.TimeRange,
			Options:   project(s.Options),
			Reserves:  project(s.Reserves),
		})
	}

	factsJSON, err := json.Marshal(facts)
	if err != nil {
		return "", fmt.Errorf("failed to marshal catalog facts: %w", err)
	}
	planJSON, err := json.Marshal(sections)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}
	return fmt.Sprintf("Catalog facts:\n%s\n\nPlan %q:\n%s\n", factsJSON, plan.Title, planJSON), nil
}
