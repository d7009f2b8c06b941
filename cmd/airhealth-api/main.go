package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	httpapi "github.com/openatmos/airhealth-api/internal/api/http"
	"github.com/openatmos/airhealth-api/internal/atmos"
	"github.com/openatmos/airhealth-api/internal/atmos/providers"
	"github.com/openatmos/airhealth-api/internal/config"
	"github.com/openatmos/airhealth-api/internal/locname"
	"github.com/openatmos/airhealth-api/internal/observability"
	"github.com/openatmos/airhealth-api/internal/probe"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Upstream adapters, one breaker each.
	merra2 := providers.NewMERRA2(cfg.GESDISCBase, cfg.EarthdataUsername, cfg.EarthdataPassword,
		providers.NewFetcher(httpClient, "merra2"), zlog)
	imerg := providers.NewIMERG(cfg.GPMBase, cfg.EarthdataUsername, cfg.EarthdataPassword,
		providers.NewFetcher(httpClient, "imerg"), zlog)
	openaq := providers.NewOpenAQ(cfg.OpenAQBase, cfg.OpenAQAPIKey,
		providers.NewFetcher(httpClient, "openaq"), zlog)
	airnow := providers.NewAirNow(cfg.AirNowBase, cfg.AirNowAPIKey,
		providers.NewFetcher(httpClient, "airnow"), zlog)
	worldview := providers.NewWorldview(cfg.WorldviewBase)
	archive := providers.NewArchive()
	names := locname.NewResolver(cfg.GeocoderAPIKey, zlog)

	service := atmos.NewService(merra2, imerg, openaq, airnow, worldview, archive, names, zlog)

	// Background upstream availability probe feeding /health.
	prober := probe.New([]probe.Target{
		{Name: "gesdisc", URL: cfg.GESDISCBase},
		{Name: "gpm", URL: cfg.GPMBase},
		{Name: "openaq", URL: cfg.OpenAQBase},
		{Name: "airnow", URL: cfg.AirNowBase},
	}, cfg.ProbeInterval, providers.NewFetcher(httpClient, "probe"), zlog)
	if err := prober.Start(); err != nil {
		zlog.Fatal("failed to start upstream probe", zap.Error(err))
	}
	defer prober.Stop()

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   cfg.AppName,
			"env":       cfg.AppEnv,
			"upstreams": prober.Snapshot(),
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}
