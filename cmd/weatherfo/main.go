package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	httpapi "github.com/i474232898/weatherfo/internal/api/http"
	"github.com/i474232898/weatherfo/internal/config"
	"github.com/i474232898/weatherfo/internal/radar"
	"github.com/i474232898/weatherfo/internal/repository"
	"github.com/i474232898/weatherfo/internal/scheduler"
	"github.com/i474232898/weatherfo/internal/store"
	"github.com/i474232898/weatherfo/internal/weather"
	"github.com/i474232898/weatherfo/internal/weather/providers"
)

func main() {
	// Load configuration (.env, optional CONFIG_FILE, environment).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	openWeather := providers.NewOpenWeatherClient(httpClient, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL)
	if !openWeather.Configured() {
		log.Println("WARN: no OpenWeather key configured; weather requests will fail with 500")
	}

	var geocoder weather.Geocoder = openWeather
	if cfg.Geocoder == config.GeocoderGoogle {
		if cfg.GoogleGeocoderAPIKey == "" {
			log.Fatal("GEOCODER=google requires GOOGLE_GEOCODER_API_KEY")
		}
		geocoder = providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey)
	}

	// Lookup history: Postgres when configured and reachable, memory otherwise.
	lookups, closeLookups := openLookups(cfg)
	defer closeLookups()

	service := weather.NewService(geocoder, openWeather, lookups, weather.Options{
		Days:         cfg.ForecastDays,
		Locale:       cfg.LabelLocale,
		IncludeMonth: cfg.LabelMonth,
		AirQuality:   cfg.AirQuality,
	})

	sessions := store.NewMemoryStore(cfg.SessionMaxAge)
	radarCatalog := radar.NewCatalog(providers.NewRainViewerClient(httpClient, cfg.RainViewerURL))

	// Background jobs: radar index refresh and idle session pruning.
	sched := scheduler.New(radarCatalog, sessions, cfg.RadarRefreshInterval, cfg.SessionPruneInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weatherfo",
		DisableStartupMessage: true,
		Immutable:             true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * cfg.HTTPTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
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

	// Global middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"service":    "weatherfo",
			"configured": service.Configured(),
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Weather:   service,
		Sessions:  sessions,
		Radar:     radarCatalog,
		Lookups:   lookups,
		OpenMeteo: providers.NewOpenMeteoClient(httpClient, cfg.OpenMeteoBaseURL),
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s", cfg.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	service.WaitBackground()
}

// openLookups picks the lookup history backend. A database that cannot be
// reached or migrated falls back to memory; the history is never critical.
func openLookups(cfg *config.AppConfig) (repository.Lookups, func()) {
	memory := repository.NewMemoryLookups(0)
	if cfg.DatabaseURL == "" {
		log.Println("INFO: DATABASE_URL not set, keeping lookup history in memory")
		return memory, func() {}
	}

	if cfg.MigrateOnStart {
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Printf("WARN: lookups: %v; keeping lookup history in memory", err)
			return memory, func() {}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("WARN: lookups: connect: %v; keeping lookup history in memory", err)
		return memory, func() {}
	}

	pg := repository.NewPostgresLookups(pool)
	if err := pg.Health(ctx); err != nil {
		log.Printf("WARN: lookups: %v; keeping lookup history in memory", err)
		pool.Close()
		return memory, func() {}
	}

	log.Println("INFO: lookup history stored in PostgreSQL")
	return pg, pool.Close
}
