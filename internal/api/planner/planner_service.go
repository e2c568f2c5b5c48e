package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-poi-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-poi-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-poi-planner/internal/api/scoring"
	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

// ErrPlanNotFound is returned for unknown or expired plan ids.
var ErrPlanNotFound = errors.New("plan not found")

// MinSafetyScore excludes places considered unsafe from every plan.
const MinSafetyScore = 40

// PlanRequest is what a traveler asks for.
type PlanRequest struct {
	City      string            `json:"city"`
	Intent    string            `json:"intent"`
	Interests []string          `json:"interests,omitempty"`
	Location  *types.Coordinate `json:"location,omitempty"`
}

// PlanSynthesizer builds a draft plan with a hosted model.
type PlanSynthesizer interface {
	Synthesize(ctx context.Context, intent string, interests []string, candidates []types.ScoredPlace, city string) (*Draft, error)
}

// PlanValidator annotates option confidence in place. It never fails.
type PlanValidator interface {
	Run(ctx context.Context, plan *types.Plan, places types.PlaceIndex)
}

// PlanEnricher adds travel times to a plan in the background.
type PlanEnricher interface {
	Detach(plan *types.Plan) <-chan struct{}
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreatePlan(ctx context.Context, req PlanRequest) (*types.Plan, error)
	GetPlan(ctx context.Context, planID uuid.UUID) (*types.Plan, error)
	ReplaceOption(ctx context.Context, planID uuid.UUID, sectionIndex, optionIndex int) (*types.Plan, error)
}

type planEntry struct {
	plan   *types.Plan
	places types.PlaceIndex
	// closed when the background enrichment of plan finishes; nil without an enricher
	enriched <-chan struct{}
}

type ServiceImpl struct {
	logger         *slog.Logger
	catalog        catalog.Service
	synthesizer    PlanSynthesizer
	validator      PlanValidator
	enricher       PlanEnricher
	candidateLimit int
	plans          *cache.Cache

	replaceMu sync.Mutex
}

// NewServiceImpl wires the planner. synthesizer, validator and enricher may
// each be nil; the plan is then built by the fallback builder, left with its
// initial confidence, or returned without travel times respectively.
func NewServiceImpl(catalogService catalog.Service, synthesizer PlanSynthesizer, validator PlanValidator, enricher PlanEnricher,
	candidateLimit int, planTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:         logger,
		catalog:        catalogService,
		synthesizer:    synthesizer,
		validator:      validator,
		enricher:       enricher,
		candidateLimit: candidateLimit,
		plans:          cache.New(planTTL, 2*planTTL),
	}
}

// CreatePlan runs the whole request pipeline. The only error it returns for a
// well-formed request wraps catalog.ErrNoPlacesForCity.
func (s *ServiceImpl) CreatePlan(ctx context.Context, req PlanRequest) (*types.Plan, error) {
	ctx, span := otel.Tracer("Planner").Start(ctx, "CreatePlan")
	defer span.End()
	span.SetAttributes(
		attribute.String("city", req.City),
		attribute.Int("interests.count", len(req.Interests)),
	)
	start := time.Now()
	l := s.logger.With(slog.String("city", req.City))

	places, err := s.catalog.LoadCatalog(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Catalog unavailable")
		return nil, fmt.Errorf("%w: %s: %w", catalog.ErrNoPlacesForCity, req.City, err)
	}
	places = s.catalog.FilterByCity(ctx, places, req.City)
	places = safePlaces(places)
	if len(places) == 0 {
		span.SetStatus(codes.Error, "No places")
		return nil, fmt.Errorf("%w: %s", catalog.ErrNoPlacesForCity, req.City)
	}

	scored := scoring.Score(places, req.Interests, req.Intent, req.Location)
	candidates := scored
	if s.candidateLimit > 0 && len(candidates) > s.candidateLimit {
		candidates = scored[:s.candidateLimit]
	}
	index := types.NewPlaceIndex(scored)

	plan := &types.Plan{
		ID:        uuid.New(),
		City:      req.City,
		CreatedAt: time.Now().UTC(),
	}

	draft := s.synthesize(ctx, l, req, candidates)
	if draft != nil {
		plan.Title = draft.Title
		plan.Mode = draft.Mode
		plan.Source = types.PlanSourceLLM
		plan.Sections = draft.Sections
	} else {
		plan.Title = fallbackTitle(req.City)
		plan.Mode = types.PlanModeSearch
		plan.Source = types.PlanSourceFallback
		plan.Sections = BuildFallback(candidates)
		if len(plan.Sections) > 1 {
			plan.Mode = types.PlanModeDay
		}
	}

	used := plan.UsedIDs()
	for _, sp := range scored {
		if _, ok := used[sp.ID]; !ok {
			plan.Pool = append(plan.Pool, sp.ID)
		}
	}

	if s.validator != nil {
		s.validator.Run(ctx, plan, index)
	}

	s.store(&planEntry{plan: plan, places: index})

	metrics.Get().PlansTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("source", string(plan.Source))))
	metrics.Get().PlanDurationSeconds.Record(ctx, time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("plan.id", plan.ID.String()),
		attribute.String("plan.source", string(plan.Source)),
		attribute.Int("plan.sections", len(plan.Sections)),
		attribute.Int("plan.pool", len(plan.Pool)),
	)
	span.SetStatus(codes.Ok, "Plan created")
	l.InfoContext(ctx, "Plan created",
		slog.String("plan_id", plan.ID.String()),
		slog.String("source", string(plan.Source)),
		slog.Int("sections", len(plan.Sections)),
		slog.Duration("elapsed", time.Since(start)))
	return plan, nil
}

func (s *ServiceImpl) synthesize(ctx context.Context, l *slog.Logger, req PlanRequest, candidates []types.ScoredPlace) *Draft {
	if s.synthesizer == nil {
		l.InfoContext(ctx, "No synthesizer configured, using fallback builder")
		return nil
	}
	draft, err := s.synthesizer.Synthesize(ctx, req.Intent, req.Interests, candidates, req.City)
	if err != nil {
		l.WarnContext(ctx, "Synthesis failed, using fallback builder", slog.Any("error", err))
		return nil
	}
	return draft
}

func (s *ServiceImpl) GetPlan(ctx context.Context, planID uuid.UUID) (*types.Plan, error) {
	entry, ok := s.entry(planID)
	if !ok {
		return nil, ErrPlanNotFound
	}
	return entry.plan, nil
}

// ReplaceOption applies Replace to a stored plan and stores the result under
// the same id.
func (s *ServiceImpl) ReplaceOption(ctx context.Context, planID uuid.UUID, sectionIndex, optionIndex int) (*types.Plan, error) {
	ctx, span := otel.Tracer("Planner").Start(ctx, "ReplaceOption")
	defer span.End()
	span.SetAttributes(
		attribute.String("plan.id", planID.String()),
		attribute.Int("section.index", sectionIndex),
		attribute.Int("option.index", optionIndex),
	)

	s.replaceMu.Lock()
	defer s.replaceMu.Unlock()

	entry, ok := s.entry(planID)
	if !ok {
		span.SetStatus(codes.Error, "Plan not found")
		return nil, ErrPlanNotFound
	}

	updated := Replace(entry.plan, sectionIndex, optionIndex, entry.places)
	if updated == entry.plan {
		s.logger.DebugContext(ctx, "Replace index out of range",
			slog.String("plan_id", planID.String()),
			slog.Int("section", sectionIndex),
			slog.Int("option", optionIndex))
		return entry.plan, nil
	}

	s.store(&planEntry{plan: updated, places: entry.places})
	span.SetStatus(codes.Ok, "Option replaced")
	return updated, nil
}

// store registers the entry and starts enriching its plan.
func (s *ServiceImpl) store(entry *planEntry) {
	if s.enricher != nil {
		entry.enriched = s.enricher.Detach(entry.plan)
	}
	s.plans.Set(entry.plan.ID.String(), entry, cache.DefaultExpiration)
}

// WaitEnriched blocks until the background enrichment of the stored plan has
// finished or ctx is done. It returns at once when no enricher is configured.
func (s *ServiceImpl) WaitEnriched(ctx context.Context, planID uuid.UUID) error {
	entry, ok := s.entry(planID)
	if !ok {
		return ErrPlanNotFound
	}
	if entry.enriched == nil {
		return nil
	}
	select {
	case <-entry.enriched:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ServiceImpl) entry(planID uuid.UUID) (*planEntry, bool) {
	v, ok := s.plans.Get(planID.String())
	if !ok {
		return nil, false
	}
	return v.(*planEntry), true
}

func safePlaces(places []types.CatalogPlace) []types.CatalogPlace {
	out := make([]types.CatalogPlace, 0, len(places))
	for _, p := range places {
		if p.SafetyScore >= MinSafetyScore {
			out = append(out, p)
		}
	}
	return out
}

func fallbackTitle(city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		return "Подборка мест"
	}
	return "Подборка мест: " + city
}
