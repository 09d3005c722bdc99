package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Geocoder backends.
const (
	GeocoderOpenWeather = "openweather"
	GeocoderGoogle      = "google"
)

type AppConfig struct {
	OpenWeatherAPIKey  string `yaml:"openweather_api_key"`
	OpenWeatherBaseURL string `yaml:"openweather_base_url" validate:"omitempty,url"`
	OpenMeteoBaseURL   string `yaml:"openmeteo_base_url" validate:"omitempty,url"`
	RainViewerURL      string `yaml:"rainviewer_url" validate:"omitempty,url"`

	// Geocoder selects the place-name backend.
	Geocoder             string `yaml:"geocoder" validate:"oneof=openweather google"`
	GoogleGeocoderAPIKey string `yaml:"google_geocoder_api_key"`

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration `yaml:"-" validate:"gt=0"`

	// Pipeline defaults; requests may override them.
	ForecastDays int    `yaml:"forecast_days" validate:"min=1,max=7"`
	AirQuality   bool   `yaml:"air_quality"`
	LabelLocale  string `yaml:"label_locale"`
	LabelMonth   bool   `yaml:"label_month"`

	RadarRefreshInterval time.Duration `yaml:"-" validate:"gt=0"`
	SessionMaxAge        time.Duration `yaml:"-" validate:"gte=0"`
	SessionPruneInterval time.Duration `yaml:"-" validate:"gt=0"`

	// DatabaseURL enables the Postgres lookup history; empty keeps it in memory.
	DatabaseURL    string `yaml:"database_url"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`

	Port string `yaml:"port" validate:"required,numeric"`
}

var validate = validator.New()

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *AppConfig {
	return &AppConfig{
		Geocoder:             GeocoderOpenWeather,
		HTTPTimeout:          10 * time.Second,
		ForecastDays:         7,
		AirQuality:           true,
		LabelLocale:          "en",
		RadarRefreshInterval: 10 * time.Minute,
		SessionMaxAge:        time.Hour,
		SessionPruneInterval: 15 * time.Minute,
		MigrateOnStart:       true,
		Port:                 "8080",
	}
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and then from
// the environment, which wins. The result is validated.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read CONFIG_FILE: %w", err)
		}
		if err := applyYAML(cfg, data); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// yamlConfig mirrors AppConfig with durations as strings ("10m", "1h").
type yamlConfig struct {
	AppConfig            `yaml:",inline"`
	HTTPTimeout          string `yaml:"http_timeout"`
	RadarRefreshInterval string `yaml:"radar_refresh_interval"`
	SessionMaxAge        string `yaml:"session_max_age"`
	SessionPruneInterval string `yaml:"session_prune_interval"`
}

func applyYAML(cfg *AppConfig, data []byte) error {
	y := yamlConfig{AppConfig: *cfg}
	if err := yaml.Unmarshal(data, &y); err != nil {
		return fmt.Errorf("parse CONFIG_FILE: %w", err)
	}
	*cfg = y.AppConfig

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"http_timeout", y.HTTPTimeout, &cfg.HTTPTimeout},
		{"radar_refresh_interval", y.RadarRefreshInterval, &cfg.RadarRefreshInterval},
		{"session_max_age", y.SessionMaxAge, &cfg.SessionMaxAge},
		{"session_prune_interval", y.SessionPruneInterval, &cfg.SessionPruneInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s in CONFIG_FILE: %w", d.name, err)
		}
		*d.dst = v
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	// OPENWEATHER_KEY is the name the serverless proxy used.
	cfg.OpenWeatherAPIKey = getenvDefault("OPENWEATHER_API_KEY", getenvDefault("OPENWEATHER_KEY", cfg.OpenWeatherAPIKey))
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", cfg.OpenWeatherBaseURL)
	cfg.OpenMeteoBaseURL = getenvDefault("OPENMETEO_BASE_URL", cfg.OpenMeteoBaseURL)
	cfg.RainViewerURL = getenvDefault("RAINVIEWER_URL", cfg.RainViewerURL)

	cfg.Geocoder = strings.ToLower(getenvDefault("GEOCODER", cfg.Geocoder))
	cfg.GoogleGeocoderAPIKey = getenvDefault("GOOGLE_GEOCODER_API_KEY", cfg.GoogleGeocoderAPIKey)

	cfg.ForecastDays = getenvInt("FORECAST_DAYS", cfg.ForecastDays)
	cfg.AirQuality = getenvBool("AIR_QUALITY", cfg.AirQuality)
	cfg.LabelLocale = getenvDefault("LABEL_LOCALE", cfg.LabelLocale)
	cfg.LabelMonth = getenvBool("LABEL_MONTH", cfg.LabelMonth)

	cfg.DatabaseURL = getenvDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.MigrateOnStart = getenvBool("MIGRATE_ON_START", cfg.MigrateOnStart)
	cfg.Port = getenvDefault("PORT", cfg.Port)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", &cfg.HTTPTimeout},
		{"RADAR_REFRESH_INTERVAL", &cfg.RadarRefreshInterval},
		{"SESSION_MAX_AGE", &cfg.SessionMaxAge},
		{"SESSION_PRUNE_INTERVAL", &cfg.SessionPruneInterval},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
