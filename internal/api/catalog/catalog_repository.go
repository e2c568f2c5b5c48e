package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-poi-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the read-only view of the catalog store.
type Repository interface {
	GetPlaces(ctx context.Context) ([]types.CatalogPlace, error)
	GetCities(ctx context.Context) ([]types.CityDetail, error)
}

// Querier is satisfied by *pgxpool.Pool and by pgxmock pools.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool Querier
}

func NewRepository(pgpool Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

const placesQuery = `
        SELECT p.id, p.city_id, p.title, p.category,
               COALESCE(p.description, ''), COALESCE(p.tags, '{}'),
               COALESCE(p.rating, 0), COALESCE(p.safety_score, 90), COALESCE(p.price_tier, 0),
               (p.latitude IS NOT NULL AND p.longitude IS NOT NULL),
               COALESCE(p.latitude, 0), COALESCE(p.longitude, 0),
               COALESCE(p.address, ''), COALESCE(p.phone, ''), COALESCE(p.website, ''),
               COALESCE(p.opening_hours, ''), COALESCE(p.review_summary, ''), p.is_verified
        FROM places p
        ORDER BY p.title
    `

func (r *RepositoryImpl) GetPlaces(ctx context.Context) ([]types.CatalogPlace, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "GetPlaces", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "places"),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
			otelmetric.WithAttributes(attribute.String("db.sql.table", "places")))
	}()

	rows, err := r.pgpool.Query(ctx, placesQuery)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("db.sql.table", "places")))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	var places []types.CatalogPlace
	for rows.Next() {
		var (
			p           types.CatalogPlace
			hasLocation bool
			lat, lon    float64
		)
		if err := rows.Scan(
			&p.ID, &p.CityID, &p.Title, &p.Category,
			&p.Description, &p.Tags,
			&p.Rating, &p.SafetyScore, &p.PriceTier,
			&hasLocation, &lat, &lon,
			&p.Address, &p.Phone, &p.Website,
			&p.OpeningHours, &p.ReviewSummary, &p.Verified,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Scan failed")
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		if hasLocation {
			p.Location = &types.Coordinate{Lat: lat, Lon: lon}
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Row iteration failed")
		return nil, fmt.Errorf("error iterating place rows: %w", err)
	}

	span.SetAttributes(attribute.Int("places.count", len(places)))
	span.SetStatus(codes.Ok, "Places retrieved")
	r.logger.DebugContext(ctx, "Loaded catalog places", slog.Int("count", len(places)))
	return places, nil
}

func (r *RepositoryImpl) GetCities(ctx context.Context) ([]types.CityDetail, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "GetCities", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "cities"),
	))
	defer span.End()

	query := `
        SELECT id, name, COALESCE(country, '')
        FROM cities
    `
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []types.CityDetail
	for rows.Next() {
		var c types.CityDetail
		if err := rows.Scan(&c.ID, &c.Name, &c.Country); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan city row: %w", err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating city rows: %w", err)
	}

	span.SetStatus(codes.Ok, "Cities retrieved")
	return cities, nil
}
