// Command generate_plan builds one plan against the configured catalog and
// prints it as JSON. Handy for checking model and routing settings without
// running the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	database "github.com/FACorreiaa/go-poi-planner/app/db"
	appLogger "github.com/FACorreiaa/go-poi-planner/app/logger"
	"github.com/FACorreiaa/go-poi-planner/config"
	"github.com/FACorreiaa/go-poi-planner/internal/api/planner"
	"github.com/FACorreiaa/go-poi-planner/internal/container"
	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

var (
	city      = flag.String("city", "Almaty", "city name")
	intent    = flag.String("intent", "", "free-text request")
	interests = flag.String("interests", "", "comma separated interests, e.g. coffee,nature")
	lat       = flag.Float64("lat", 0, "user latitude")
	lon       = flag.Float64("lon", 0, "user longitude")
	wait      = flag.Duration("wait", 15*time.Second, "upper bound on waiting for travel times before printing")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}
	logger := appLogger.New(os.Getenv("APP_ENV"))

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}
	pool, err := database.Init(ctx, dbConfig.ConnectionURL, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	c, err := container.NewContainer(ctx, &cfg, pool, logger)
	if err != nil {
		pool.Close()
		log.Fatalf("Failed to build planner: %v", err)
	}
	defer c.Close()
	if !c.WaitForDB(ctx) {
		return
	}

	req := planner.PlanRequest{City: *city, Intent: *intent}
	for _, in := range strings.Split(*interests, ",") {
		if in = strings.TrimSpace(in); in != "" {
			req.Interests = append(req.Interests, in)
		}
	}
	if *lat != 0 || *lon != 0 {
		req.Location = &types.Coordinate{Lat: *lat, Lon: *lon}
	}

	plan, err := c.PlannerService.CreatePlan(ctx, req)
	if err != nil {
		logger.Error("Failed to create plan", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Plan created", slog.String("plan_id", plan.ID.String()), slog.String("source", string(plan.Source)))

	waitCtx, cancel := context.WithTimeout(ctx, *wait)
	if err := c.PlannerService.WaitEnriched(waitCtx, plan.ID); err != nil {
		logger.Warn("Printing plan without travel times", slog.Any("error", err))
	}
	cancel()
	if stored, err := c.PlannerService.GetPlan(ctx, plan.ID); err == nil {
		plan = stored
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plan.Snapshot()); err != nil {
		log.Fatalf("Failed to encode plan: %v", err)
	}
}
