package catalog

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
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

// ErrNoPlacesForCity is the one planner failure surfaced to callers: there is
// nothing in the catalog to plan from.
var ErrNoPlacesForCity = errors.New("no places for city")

const (
	catalogKey = "catalog"
	citiesKey  = "cities"

	// DefaultLoadTimeout bounds one shared reload of the catalog or city table.
	DefaultLoadTimeout = 15 * time.Second
)

var _ Service = (*ServiceImpl)(nil)

// Service is the Catalog Access contract.
type Service interface {
	LoadCatalog(ctx context.Context) ([]types.CatalogPlace, error)
	ResolveCity(ctx context.Context, name string) (uuid.UUID, bool)
	FilterByCity(ctx context.Context, catalog []types.CatalogPlace, name string) []types.CatalogPlace
}

type ServiceImpl struct {
	logger  *slog.Logger
	repo    Repository
	cache   *cache.Cache
	ttl     time.Duration
	cityTTL time.Duration
	group   singleflight.Group
	// bound on a shared reload, independent of the caller that started it
	loadTimeout time.Duration

	// last successful load, served when the store is down after the TTL
	mu    sync.RWMutex
	stale []types.CatalogPlace
}

func NewServiceImpl(repo Repository, ttl, cityTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		cache:   cache.New(ttl, 2*ttl),
		ttl:     ttl,
		cityTTL: cityTTL,

		loadTimeout: DefaultLoadTimeout,
	}
}

// shared runs load once per key for all concurrent callers. Each caller stops
// waiting when its own ctx is done; the load itself carries on for the others.
func (s *ServiceImpl) shared(ctx context.Context, key string, load func(ctx context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		return load(loadCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LoadCatalog returns the cached catalog, reloading it at most once per TTL
// window. When the reload fails the last good copy is returned instead.
func (s *ServiceImpl) LoadCatalog(ctx context.Context) ([]types.CatalogPlace, error) {
	ctx, span := otel.Tracer("CatalogService").Start(ctx, "LoadCatalog")
	defer span.End()

	if cached, found := s.cache.Get(catalogKey); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.([]types.CatalogPlace), nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	v, err := s.shared(ctx, catalogKey, func(ctx context.Context) (any, error) {
		places, err := s.repo.GetPlaces(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(catalogKey, places, s.ttl)
		s.mu.Lock()
		s.stale = places
		s.mu.Unlock()
		return places, nil
	})
	if err != nil {
		s.mu.RLock()
		stale := s.stale
		s.mu.RUnlock()
		if stale != nil {
			s.logger.WarnContext(ctx, "Catalog reload failed, serving stale copy",
				slog.Any("error", err), slog.Int("count", len(stale)))
			span.AddEvent("served stale catalog")
			return stale, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Catalog unavailable")
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	places := v.([]types.CatalogPlace)
	span.SetAttributes(attribute.Int("places.count", len(places)))
	span.SetStatus(codes.Ok, "Catalog loaded")
	return places, nil
}

// ResolveCity maps a city name to its id, case-insensitively.
func (s *ServiceImpl) ResolveCity(ctx context.Context, name string) (uuid.UUID, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return uuid.Nil, false
	}
	cities, err := s.cityTable(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "City table unavailable", slog.Any("error", err))
		return uuid.Nil, false
	}
	id, ok := cities[key]
	return id, ok
}

func (s *ServiceImpl) cityTable(ctx context.Context) (map[string]uuid.UUID, error) {
	if cached, found := s.cache.Get(citiesKey); found {
		return cached.(map[string]uuid.UUID), nil
	}
	v, err := s.shared(ctx, citiesKey, func(ctx context.Context) (any, error) {
		cities, err := s.repo.GetCities(ctx)
		if err != nil {
			return nil, err
		}
		table := make(map[string]uuid.UUID, len(cities))
		for _, c := range cities {
			table[strings.ToLower(strings.TrimSpace(c.Name))] = c.ID
		}
		s.cache.Set(citiesKey, table, s.cityTTL)
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]uuid.UUID), nil
}

// FilterByCity keeps the places of the named city. An unknown city or an
// empty result degrades to the unfiltered catalog.
func (s *ServiceImpl) FilterByCity(ctx context.Context, catalog []types.CatalogPlace, name string) []types.CatalogPlace {
	l := s.logger.With(slog.String("city", name))

	cityID, ok := s.ResolveCity(ctx, name)
	if !ok {
		l.WarnContext(ctx, "City not resolved, using unfiltered catalog", slog.Int("count", len(catalog)))
		return catalog
	}

	filtered := make([]types.CatalogPlace, 0, len(catalog))
	for _, p := range catalog {
		if p.CityID == cityID {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		l.WarnContext(ctx, "No places for resolved city, using unfiltered catalog", slog.Int("count", len(catalog)))
		return catalog
	}
	l.DebugContext(ctx, "Filtered catalog by city", slog.Int("count", len(filtered)))
	return filtered
}
