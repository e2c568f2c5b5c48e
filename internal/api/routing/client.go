// Package routing talks to an OSRM-compatible routing service and annotates
// plans with travel times between stops.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/twpayne/go-polyline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

var (
	ErrTooFewWaypoints = errors.New("at least two waypoints are required")
	ErrBadResponse     = errors.New("malformed routing response")
)

const (
	ModeFoot = "foot"
	ModeCar  = "car"

	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 1.0
)

// Router is satisfied by *Client.
type Router interface {
	Route(ctx context.Context, waypoints []types.Coordinate) (*types.Route, error)
}

var _ Router = (*Client)(nil)

type Client struct {
	baseURL    string
	mode       string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithMode(mode string) ClientOption {
	return func(c *Client) {
		if mode == ModeFoot || mode == ModeCar {
			c.mode = mode
		}
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRateLimit sets requests per second. Routing demo servers ban clients
// that burst.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func NewClient(baseURL string, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		mode:       ModeFoot,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry string `json:"geometry"`
		Legs     []struct {
			Duration float64 `json:"duration"`
			Distance float64 `json:"distance"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route requests one route through all waypoints in order.
func (c *Client) Route(ctx context.Context, waypoints []types.Coordinate) (*types.Route, error) {
	ctx, span := otel.Tracer("Routing").Start(ctx, "Route")
	defer span.End()
	span.SetAttributes(
		attribute.String("routing.mode", c.mode),
		attribute.Int("routing.waypoints", len(waypoints)),
	)

	if len(waypoints) < 2 {
		return nil, ErrTooFewWaypoints
	}

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.routeURL(waypoints), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Request failed")
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%w: status %d: %s", ErrBadResponse, resp.StatusCode, strings.TrimSpace(string(body)))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Non-200 response")
		return nil, err
	}

	var payload osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Decode failed")
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if payload.Code != "Ok" || len(payload.Routes) == 0 {
		err := fmt.Errorf("%w: code %q: %s", ErrBadResponse, payload.Code, payload.Message)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Routing error")
		return nil, err
	}

	best := payload.Routes[0]
	if len(best.Legs) != len(waypoints)-1 {
		err := fmt.Errorf("%w: %d legs for %d waypoints", ErrBadResponse, len(best.Legs), len(waypoints))
		span.RecordError(err)
		return nil, err
	}

	route := &types.Route{Legs: make([]types.RouteLeg, 0, len(best.Legs))}
	for _, leg := range best.Legs {
		route.Legs = append(route.Legs, types.RouteLeg{DurationSec: leg.Duration, DistanceM: leg.Distance})
	}

	if best.Geometry != "" {
		coords, _, err := polyline.DecodeCoords([]byte(best.Geometry))
		if err != nil {
			c.logger.WarnContext(ctx, "Route geometry could not be decoded", slog.Any("error", err))
		} else {
			route.Geometry = make([]types.Coordinate, 0, len(coords))
			for _, pt := range coords {
				route.Geometry = append(route.Geometry, types.Coordinate{Lat: pt[0], Lon: pt[1]})
			}
		}
	}

	span.SetAttributes(attribute.Int("routing.geometry_points", len(route.Geometry)))
	span.SetStatus(codes.Ok, "Route computed")
	return route, nil
}

// routeURL uses OSRM's lon,lat order.
func (c *Client) routeURL(waypoints []types.Coordinate) string {
	points := make([]string, 0, len(waypoints))
	for _, w := range waypoints {
		points = append(points, strconv.FormatFloat(w.Lon, 'f', 6, 64)+","+strconv.FormatFloat(w.Lat, 'f', 6, 64))
	}
	return fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=polyline&steps=false",
		c.baseURL, c.mode, strings.Join(points, ";"))
}
