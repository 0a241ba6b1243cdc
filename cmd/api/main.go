package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ggorockee/companyfinder/docs"
	"github.com/ggorockee/companyfinder/internal/config"
	"github.com/ggorockee/companyfinder/internal/handlers"
	appLogger "github.com/ggorockee/companyfinder/internal/logger"
	"github.com/ggorockee/companyfinder/internal/middleware"
	"github.com/ggorockee/companyfinder/internal/services"
	"github.com/ggorockee/companyfinder/internal/storage"
	"github.com/ggorockee/companyfinder/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
)

// @title Company Finder API
// @version 1.0.0
// @description Local business search backed by Google Places with a capped result cache
// @BasePath /api
func main() {
	if err := appLogger.Init(); err != nil {
		panic(err)
	}
	defer appLogger.Sync()
	log := appLogger.GetLogger("main")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.GooglePlaces.APIKey == "" {
		log.Warn("GOOGLE_PLACES_API_KEY is not set, searches that miss the cache will fail")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	tracerShutdown, err := telemetry.InitTracer(ctx, telemetry.ServiceName, cfg.SigNozEndpoint)
	if err != nil {
		log.Errorf("Failed to initialize tracer: %v", err)
		tracerShutdown = func(context.Context) error { return nil }
	}
	meterShutdown, err := telemetry.InitMeter(ctx, telemetry.ServiceName, cfg.SigNozEndpoint)
	if err != nil {
		log.Errorf("Failed to initialize metrics: %v", err)
		meterShutdown = func(context.Context) error { return nil }
	}

	// the process does not serve without its store
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open result cache: %v", err)
	}

	svc := services.New(cfg, store)

	app := fiber.New(fiber.Config{
		AppName:      "Company Finder API",
		ErrorHandler: handlers.ErrorHandler,
		ReadTimeout:  10 * time.Second,
		// a cache miss may page through several delayed result pages
		WriteTimeout: cfg.Search.Timeout + 5*time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","request_id":"${locals:requestid}","status":${status},"latency":"${latency}","ip":"${ip}","method":"${method}","path":"${path}","user_agent":"${ua}","error":"${error}"}` + "\n",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	}))
	app.Use(telemetry.New())
	app.Use(middleware.PrometheusMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: "GET, DELETE, OPTIONS",
		AllowHeaders: "Accept, Content-Type, Origin, X-Request-ID",
		MaxAge:       86400,
	}))

	setupRoutes(app, svc)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Errorf("Error shutting down server: %v", err)
		}
	}()

	log.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Errorf("Server stopped: %v", err)
	}

	stop()
	if err := store.Close(); err != nil {
		log.Errorf("Error closing result cache: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracerShutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down tracer: %v", err)
	}
	if err := meterShutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down metrics: %v", err)
	}
}

func setupRoutes(app *fiber.App, svc *services.Services) {
	app.Get("/docs/*", swagger.HandlerDefault)
	app.Get("/metrics", middleware.PrometheusHandler())

	app.Get("/healthz", handlers.HealthCheck)
	app.Get("/readiness", handlers.ReadinessCheck(svc.Cache))

	api := app.Group("/api")
	handlers.SetupCompanyRoutes(api, svc.Search, svc.Deletion)
	handlers.SetupIndustryRoutes(api, svc.Industries)
}
