package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-poi-planner/app/observability/metrics"
	generativeAI "github.com/FACorreiaa/go-poi-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

var (
	// ErrSynthesisFailed means no model produced a usable plan.
	ErrSynthesisFailed = errors.New("plan synthesis failed")
	ErrNoModels        = errors.New("no synthesis models configured")
)

const (
	maxOptionsPerSection  = 3
	maxReservesPerSection = 2
)

// Draft is a synthesized plan before it is registered and validated.
type Draft struct {
	Title    string
	Mode     types.PlanMode
	Sections []types.PlanSection
}

type wirePlan struct {
	Title    string        `json:"title"`
	Sections []wireSection `json:"sections"`
}

type wireSection struct {
	Title      string       `json:"title"`
	Emoji      string       `json:"emoji"`
	TimeRange  string       `json:"timeRange"`
	Options    []wireOption `json:"options"`
	ReserveIDs []string     `json:"reserveIds"`
}

type wireOption struct {
	ID     string `json:"id"`
	Why    string `json:"why"`
	Budget string `json:"budget"`
}

// Synthesizer asks a hosted model for a plan over the candidate set, walking
// an ordered model list until one answers with well-formed JSON.
type Synthesizer struct {
	llm     generativeAI.TextGenerator
	models  []string
	timeout time.Duration
	logger  *slog.Logger
}

func NewSynthesizer(llm generativeAI.TextGenerator, models []string, timeout time.Duration, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		llm:     llm,
		models:  models,
		timeout: timeout,
		logger:  logger,
	}
}

// Synthesize returns a Draft whose every option and reserve references a
// candidate. It fails with ErrSynthesisFailed when every model errors or when
// nothing survives id validation.
func (s *Synthesizer) Synthesize(ctx context.Context, intent string, interests []string, candidates []types.ScoredPlace, city string) (*Draft, error) {
	ctx, span := otel.Tracer("Synthesizer").Start(ctx, "Synthesize")
	defer span.End()
	span.SetAttributes(
		attribute.String("city", city),
		attribute.Int("candidates.count", len(candidates)),
	)

	if len(s.models) == 0 {
		span.SetStatus(codes.Error, "No models")
		return nil, ErrNoModels
	}

	prompt, err := buildPrompt(intent, interests, candidates, city)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}

	index := make(map[uuid.UUID]types.CatalogPlace, len(candidates))
	for _, c := range candidates {
		index[c.ID] = c.CatalogPlace
	}

	var lastErr error
	for _, model := range s.models {
		wp, err := s.attempt(ctx, model, prompt)
		if err != nil {
			lastErr = err
			s.logger.WarnContext(ctx, "Synthesis attempt failed, trying next model",
				slog.String("model", model), slog.Any("error", err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		sections, dropped := s.validateIDs(ctx, wp, index)
		if dropped > 0 {
			metrics.Get().IDsDroppedTotal.Add(ctx, int64(dropped))
		}
		if len(sections) == 0 {
			err := fmt.Errorf("%w: no usable sections after id validation", ErrSynthesisFailed)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Empty after validation")
			return nil, err
		}

		mode := types.PlanModeDay
		if len(sections) == 1 {
			mode = types.PlanModeSearch
		}
		title := strings.TrimSpace(wp.Title)
		if title == "" {
			title = city
		}
		span.SetAttributes(
			attribute.String("llm.model", model),
			attribute.Int("sections.count", len(sections)),
			attribute.Int("ids.dropped", dropped),
		)
		span.SetStatus(codes.Ok, "Plan synthesized")
		return &Draft{Title: title, Mode: mode, Sections: sections}, nil
	}

	err = fmt.Errorf("%w: all %d models failed: %w", ErrSynthesisFailed, len(s.models), lastErr)
	span.RecordError(err)
	span.SetStatus(codes.Error, "All models failed")
	return nil, err
}

// attempt makes one bounded model call and parses its answer.
func (s *Synthesizer) attempt(ctx context.Context, model, prompt string) (*wirePlan, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome := "ok"
	defer func() {
		metrics.Get().SynthesisAttemptsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("model", model),
			attribute.String("outcome", outcome),
		))
	}()

	text, err := s.llm.GenerateJSON(attemptCtx, model, systemPrompt, prompt)
	if err != nil {
		outcome = "error"
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			outcome = "timeout"
		}
		return nil, err
	}

	var wp wirePlan
	if err := json.Unmarshal([]byte(generativeAI.CleanJSONResponse(text)), &wp); err != nil {
		outcome = "bad_json"
		return nil, fmt.Errorf("failed to parse plan JSON from %s: %w", model, err)
	}
	if len(wp.Sections) == 0 {
		outcome = "bad_json"
		return nil, fmt.Errorf("plan from %s has no sections", model)
	}
	return &wp, nil
}

// validateIDs keeps only options and reserves whose id is a known candidate
// not already used earlier in the response. A section left with no options
// survives only when the model sent it with no options and no reserves.
func (s *Synthesizer) validateIDs(ctx context.Context, wp *wirePlan, index map[uuid.UUID]types.CatalogPlace) ([]types.PlanSection, int) {
	seen := make(map[uuid.UUID]struct{})
	dropped := 0
	var sections []types.PlanSection

	resolve := func(raw string, local map[uuid.UUID]struct{}) (types.CatalogPlace, bool) {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			s.logger.WarnContext(ctx, "Dropping unparsable place id", slog.String("id", raw))
			dropped++
			return types.CatalogPlace{}, false
		}
		place, ok := index[id]
		if !ok {
			s.logger.WarnContext(ctx, "Dropping place id not in candidate set", slog.String("id", raw))
			dropped++
			return types.CatalogPlace{}, false
		}
		_, dupGlobal := seen[id]
		_, dupLocal := local[id]
		if dupGlobal || dupLocal {
			s.logger.DebugContext(ctx, "Dropping duplicate place id", slog.String("id", raw))
			dropped++
			return types.CatalogPlace{}, false
		}
		return place, true
	}

	for _, ws := range wp.Sections {
		local := make(map[uuid.UUID]struct{})
		section := types.PlanSection{
			Title:     strings.TrimSpace(ws.Title),
			Emoji:     strings.TrimSpace(ws.Emoji),
			TimeRange: strings.TrimSpace(ws.TimeRange),
		}

		for _, wo := range ws.Options {
			if len(section.Options) == maxOptionsPerSection {
				break
			}
			place, ok := resolve(wo.ID, local)
			if !ok {
				continue
			}
			local[place.ID] = struct{}{}
			section.Options = append(section.Options, newOption(place, wo.Why, wo.Budget))
		}
		for _, raw := range ws.ReserveIDs {
			if len(section.Reserves) == maxReservesPerSection {
				break
			}
			place, ok := resolve(raw, local)
			if !ok {
				continue
			}
			local[place.ID] = struct{}{}
			section.Reserves = append(section.Reserves, newOption(place, "", ""))
		}

		if len(section.Options) == 0 {
			if len(ws.Options) == 0 && len(ws.ReserveIDs) == 0 {
				section.Reserves = nil
				sections = append(sections, section)
				continue
			}
			s.logger.WarnContext(ctx, "Dropping section with no valid options", slog.String("section", section.Title))
			continue
		}

		for id := range local {
			seen[id] = struct{}{}
		}
		sections = append(sections, section)
	}
	return sections, dropped
}

// newOption projects a catalog place into a verified option. Missing why and
// budget are filled from catalog data.
func newOption(place types.CatalogPlace, why, budget string) types.PlanOption {
	why = strings.TrimSpace(why)
	if why == "" {
		why = catalogWhy(place, nil)
	}
	budget = strings.TrimSpace(budget)
	if budget == "" {
		budget = budgetHint(place.PriceTier)
	}
	return types.PlanOption{
		Stop:            types.NewStop(place),
		Why:             why,
		Budget:          budget,
		ConfidenceScore: 1.0,
		Confidence:      types.ConfidenceVerified,
	}
}
