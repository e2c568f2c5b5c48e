package container

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-poi-planner/app/db"
	"github.com/FACorreiaa/go-poi-planner/config"
	"github.com/FACorreiaa/go-poi-planner/internal/api/catalog"
	generativeAI "github.com/FACorreiaa/go-poi-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-poi-planner/internal/api/planner"
	"github.com/FACorreiaa/go-poi-planner/internal/api/routing"
	"github.com/FACorreiaa/go-poi-planner/internal/api/validation"
)

const (
	geminiKeyEnv    = "GOOGLE_GEMINI_API_KEY"
	anthropicKeyEnv = "ANTHROPIC_API_KEY"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	CatalogService *catalog.ServiceImpl
	PlannerService *planner.ServiceImpl
	PlannerHandler *planner.HandlerImpl
	// provider and model the judge runs with; empty when there is no judge
	JudgeProvider string
	JudgeModel    string
}

// NewContainer wires the planner around an open pool. Missing model API keys
// degrade the planner instead of failing startup.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("container: nil config")
	}

	catalogRepo := catalog.NewRepository(pool, logger)
	catalogService := catalog.NewServiceImpl(catalogRepo, cfg.Catalog.TTL, cfg.Catalog.CityTTL, logger)

	var (
		synthesizer planner.PlanSynthesizer
		semantic    *validation.SemanticValidator
		judgeLLM    generativeAI.TextGenerator
		judgeWith   string
	)

	if key := os.Getenv(geminiKeyEnv); key != "" {
		genaiClient, err := generativeAI.NewGenAIClient(ctx, key)
		if err != nil {
			return nil, err
		}
		aiClient := generativeAI.NewAIClient(genaiClient, cfg.LLM.Temperature, logger)
		synthesizer = planner.NewSynthesizer(aiClient, cfg.LLM.Models, cfg.LLM.Timeout, logger)

		embeddings := generativeAI.NewEmbeddingService(genaiClient, cfg.Embedding.Model, cfg.Embedding.MaxChars, logger)
		semantic = validation.NewSemanticValidator(embeddings, cfg.Embedding.Timeout, logger)
		judgeLLM = aiClient
		judgeWith = config.JudgeProviderGemini
	} else {
		logger.Warn("Gemini API key not set, plans will use the fallback builder and skip validation",
			slog.String("env", geminiKeyEnv))
	}

	if cfg.Judge.Provider == config.JudgeProviderAnthropic {
		if key := os.Getenv(anthropicKeyEnv); key != "" {
			claude, err := generativeAI.NewClaudeClient(key, logger)
			if err != nil {
				return nil, err
			}
			judgeLLM = claude
			judgeWith = config.JudgeProviderAnthropic
		} else {
			logger.Warn("Judge provider is anthropic but no key is set", slog.String("env", anthropicKeyEnv))
		}
	}

	var (
		judge      *validation.Judge
		judgeModel string
	)
	if judgeLLM != nil {
		judgeModel = JudgeModel(judgeWith, cfg.Judge.Model)
		if judgeModel != cfg.Judge.Model {
			logger.Warn("Judge model does not match the judge provider, using its default",
				slog.String("provider", judgeWith),
				slog.String("configured", cfg.Judge.Model),
				slog.String("model", judgeModel))
		}
		judge = validation.NewJudge(judgeLLM, judgeModel, cfg.Judge.Timeout, logger)
	}
	pipeline := validation.NewPipeline(semantic, judge, logger)

	var enricher planner.PlanEnricher
	if cfg.Routing.BaseURL != "" {
		router := routing.NewClient(cfg.Routing.BaseURL, logger,
			routing.WithMode(cfg.Routing.Mode),
			routing.WithTimeout(cfg.Routing.Timeout),
			routing.WithRateLimit(cfg.Routing.RatePerSecond),
		)
		enricher = routing.NewEnricher(router, cfg.Routing.Timeout, logger)
	} else {
		logger.Warn("Routing base URL not set, plans will not carry travel times")
	}

	plannerService := planner.NewServiceImpl(catalogService, synthesizer, pipeline, enricher,
		cfg.Catalog.CandidateLimit, cfg.Catalog.PlanTTL, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Pool:           pool,
		CatalogService: catalogService,
		PlannerService: plannerService,
		PlannerHandler: planner.NewHandlerImpl(plannerService, logger),
		JudgeProvider:  judgeWith,
		JudgeModel:     judgeModel,
	}, nil
}

// JudgeModel returns configured when it belongs to provider, otherwise the
// provider's default model.
func JudgeModel(provider, configured string) string {
	switch provider {
	case config.JudgeProviderAnthropic:
		if strings.HasPrefix(configured, "claude") {
			return configured
		}
		return config.DefaultAnthropicJudgeModel
	default:
		if strings.HasPrefix(configured, "gemini") {
			return configured
		}
		return config.DefaultGeminiJudgeModel
	}
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
