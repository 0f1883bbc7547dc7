package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/drying-rack-forecast/internal/api/http"
	"github.com/i474232898/drying-rack-forecast/internal/config"
	"github.com/i474232898/drying-rack-forecast/internal/forecast"
	"github.com/i474232898/drying-rack-forecast/internal/forecast/providers"
	"github.com/i474232898/drying-rack-forecast/internal/logging"
	"github.com/i474232898/drying-rack-forecast/internal/scheduler"
	"github.com/i474232898/drying-rack-forecast/internal/store"
)

const serviceName = "drying-rack-forecast"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.OpenWeatherAPIKey == "" {
		logger.Warnw("OPENWEATHER_API_KEY is not set; fetches will fail and fallback data will be shown")
	}

	// The orchestrator bounds each request itself; the client timeout is a backstop.
	httpClient := &http.Client{
		Timeout: cfg.FetchTimeout + 5*time.Second,
	}

	zone := cfg.Zone()
	loc := cfg.ForecastLocation()

	var provider forecast.Provider = providers.NewOpenWeatherProvider(httpClient, providers.OpenWeatherConfig{
		APIKey:   cfg.OpenWeatherAPIKey,
		BaseURL:  cfg.OpenWeatherBaseURL,
		Units:    cfg.Units,
		Lang:     cfg.Lang,
		TimeZone: zone,
		Breaker:  providers.DefaultBreakerConfig(),
	}, logger)
	provider = providers.NewRateLimitedProvider(provider, cfg.MaxRequestsPerSecond, cfg.Burst)

	now := func() time.Time { return time.Now().In(zone) }
	stateStore := store.NewStateStore(now())

	orch := forecast.NewOrchestrator(stateStore, provider, loc,
		forecast.WithTimeout(cfg.FetchTimeout),
		forecast.WithSink(forecast.NewLogSink(logger.Named("notify"))),
		forecast.WithLogger(logger),
		forecast.WithClock(now),
	)
	session := forecast.NewSession(orch)

	// Automatic first load.
	session.Start()

	sched := scheduler.New(orch, cfg.RefreshInterval, cfg.FetchTimeout+5*time.Second, logger)
	if err := sched.Start(); err != nil {
		logger.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	httpapi.RegisterHealth(app, session, serviceName)
	httpapi.RegisterRoutes(app, session, httpapi.ViewConfig{
		Location:    loc,
		DefaultLang: cfg.Lang,
		Zone:        zone,
	})

	go func() {
		logger.Infow("http server listening", "port", cfg.Port, "location", loc.Query())
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Errorw("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorw("error during shutdown", "error", err)
	}
	orch.Wait()
}
