package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	PlansTotal             metric.Int64Counter
	SynthesisAttemptsTotal metric.Int64Counter
	IDsDroppedTotal        metric.Int64Counter
	ValidationSkippedTotal metric.Int64Counter
	JudgeIssuesTotal       metric.Int64Counter
	EnrichmentTotal        metric.Int64Counter
	PlanDurationSeconds    metric.Float64Histogram
	DbQueryDurationSeconds metric.Float64Histogram
	DbQueryErrorsTotal     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("PlaceRecommender")
		m := &AppMetrics{}

		m.PlansTotal = counter(meter, "planner_plans_total", "Plans produced, by source", "{plan}")
		m.SynthesisAttemptsTotal = counter(meter, "planner_synthesis_attempts_total", "Model calls made while synthesizing a plan", "{attempt}")
		m.IDsDroppedTotal = counter(meter, "planner_ids_dropped_total", "Place ids removed from model output as unknown or duplicate", "{id}")
		m.ValidationSkippedTotal = counter(meter, "planner_validation_skipped_total", "Validation checks that were skipped or failed open", "{check}")
		m.JudgeIssuesTotal = counter(meter, "planner_judge_issues_total", "Issues reported by the plan judge", "{issue}")
		m.EnrichmentTotal = counter(meter, "planner_enrichment_total", "Route enrichment runs, by outcome", "{run}")
		m.DbQueryErrorsTotal = counter(meter, "db_query_errors_total", "Total number of database query errors", "{error}")

		var err error
		m.PlanDurationSeconds, err = meter.Float64Histogram(
			"planner_plan_duration_seconds",
			metric.WithDescription("Time to build and validate a plan"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create planner_plan_duration_seconds: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		appMetrics = m
	})
}

func counter(meter metric.Meter, name, description, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return c
}

// Get returns the global AppMetrics, initializing it against whatever
// MeterProvider is installed. Without one the instruments are no-ops.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
