package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-poi-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

// Enricher annotates shown stops with the travel from the previous stop.
type Enricher struct {
	router  Router
	timeout time.Duration
	logger  *slog.Logger
}

func NewEnricher(router Router, timeout time.Duration, logger *slog.Logger) *Enricher {
	return &Enricher{
		router:  router,
		timeout: timeout,
		logger:  logger,
	}
}

// Detach enriches plan on its own goroutine, independent of any request
// context. The returned channel is closed when the work is done.
func (e *Enricher) Detach(plan *types.Plan) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		e.Enrich(ctx, plan)
	}()
	return done
}

// Enrich routes through every geolocated shown option in plan order and
// writes the per-leg travel onto each stop after the first. Fewer than two
// geolocated stops, or any routing failure, leaves the plan as it was.
func (e *Enricher) Enrich(ctx context.Context, plan *types.Plan) {
	snapshot := plan.Snapshot()
	ids, waypoints := geolocatedStops(snapshot)
	if len(waypoints) < 2 {
		e.record(ctx, "skipped")
		return
	}

	route, err := e.router.Route(ctx, waypoints)
	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		e.record(ctx, outcome)
		e.logger.WarnContext(ctx, "Travel-time enrichment failed",
			slog.String("plan_id", snapshot.ID.String()), slog.Any("error", err))
		return
	}
	if route == nil || len(route.Legs) != len(waypoints)-1 {
		e.record(ctx, "error")
		e.logger.WarnContext(ctx, "Travel-time enrichment got mismatched legs",
			slog.String("plan_id", snapshot.ID.String()),
			slog.Int("waypoints", len(waypoints)),
			slog.Any("error", ErrBadResponse))
		return
	}

	plan.Lock()
	defer plan.Unlock()

	currentIDs, _ := geolocatedStops(plan)
	if !slices.Equal(ids, currentIDs) {
		e.record(ctx, "stale")
		e.logger.InfoContext(ctx, "Plan changed during enrichment, discarding route",
			slog.String("plan_id", plan.ID.String()))
		return
	}

	leg := 0
	first := true
	for si := range plan.Sections {
		for oi := range plan.Sections[si].Options {
			stop := &plan.Sections[si].Options[oi].Stop
			if stop.Location == nil {
				continue
			}
			if first {
				first = false
				continue
			}
			l := route.Legs[leg]
			leg++
			distance := l.DistanceM
			stop.DistanceFromPrevM = &distance
			stop.TravelFromPrev = FormatTravel(l.DurationSec, l.DistanceM)
		}
	}
	plan.Route = route.Geometry
	e.record(ctx, "ok")
}

func (e *Enricher) record(ctx context.Context, outcome string) {
	metrics.Get().EnrichmentTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func geolocatedStops(plan *types.Plan) ([]uuid.UUID, []types.Coordinate) {
	var (
		ids       []uuid.UUID
		waypoints []types.Coordinate
	)
	for _, s := range plan.Sections {
		for _, o := range s.Options {
			if o.Stop.Location == nil {
				continue
			}
			ids = append(ids, o.PlaceID())
			waypoints = append(waypoints, *o.Stop.Location)
		}
	}
	return ids, waypoints
}

// FormatTravel renders a leg as "12 мин · 900 м" or "25 мин · 2.4 км".
func FormatTravel(durationSec, distanceM float64) string {
	minutes := int(math.Round(durationSec / 60))
	if minutes < 1 {
		minutes = 1
	}
	if distanceM < 1000 {
		return fmt.Sprintf("%d мин · %d м", minutes, int(math.Round(distanceM)))
	}
	return fmt.Sprintf("%d мин · %.1f км", minutes, distanceM/1000)
}
