package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	appLogger "github.com/FACorreiaa/go-poi-planner/app/logger"
	"github.com/FACorreiaa/go-poi-planner/internal/api/planner"
)

// Config contains dependencies needed for the router setup
type Config struct {
	PlannerHandler         *planner.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
	// CreatePlanRate caps plan creation per client IP per minute; zero disables it.
	CreatePlanRate int
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// SetupRouter builds the HTTP surface: a public /ping and the plan routes
// behind the bearer guard.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1/plans", func(r chi.Router) {
		if cfg.AuthenticateMiddleware != nil {
			r.Use(cfg.AuthenticateMiddleware)
		}

		r.Group(func(r chi.Router) {
			// plan creation fans out to hosted models
			if cfg.CreatePlanRate > 0 {
				r.Use(httprate.LimitByIP(cfg.CreatePlanRate, time.Minute))
			}
			r.Post("/", cfg.PlannerHandler.CreatePlan)
		})
		r.Get("/{planID}", cfg.PlannerHandler.GetPlan)
		r.Post("/{planID}/replace", cfg.PlannerHandler.ReplaceOption)
	})

	return r
}
