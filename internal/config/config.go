package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/drying-rack-forecast/internal/forecast"
)

var validate = validator.New()

type AppConfig struct {
	OpenWeatherAPIKey  string `yaml:"openweather_api_key"`
	OpenWeatherBaseURL string `yaml:"openweather_base_url" validate:"required,url"`

	// Location is the single "city,country" the dashboard shows.
	Location string `yaml:"location" validate:"required"`
	Lang     string `yaml:"lang" validate:"required"`
	Units    string `yaml:"units" validate:"required,oneof=metric imperial standard"`
	TimeZone string `yaml:"timezone" validate:"required"`

	// FetchTimeout bounds a single forecast request.
	FetchTimeout time.Duration `yaml:"fetch_timeout" validate:"gt=0"`
	// RefreshInterval is the period of automatic refreshes (0 = disabled).
	RefreshInterval time.Duration `yaml:"refresh_interval" validate:"gte=0"`

	// Outbound rate limit.
	MaxRequestsPerSecond float64 `yaml:"max_rps" validate:"gt=0"`
	Burst                int     `yaml:"burst" validate:"gte=1"`

	Port           string `yaml:"port" validate:"required,numeric"`
	LogDevelopment bool   `yaml:"log_development"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() AppConfig {
	return AppConfig{
		OpenWeatherBaseURL:   "https://api.openweathermap.org/data/2.5",
		Location:             "Ban Pong,TH",
		Lang:                 "th",
		Units:                "metric",
		TimeZone:             "Asia/Bangkok",
		FetchTimeout:         forecast.DefaultTimeout,
		RefreshInterval:      30 * time.Minute,
		MaxRequestsPerSecond: 1,
		Burst:                1,
		Port:                 "8080",
	}
}

// Load reads configuration with sensible defaults. Values come, lowest
// precedence first, from Defaults, the YAML file named by
// FORECAST_CONFIG_FILE, and the environment (including a .env file).
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := Defaults()

	if path := os.Getenv("FORECAST_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	cfg.OpenWeatherAPIKey = getenvDefault("OPENWEATHER_API_KEY", cfg.OpenWeatherAPIKey)
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", cfg.OpenWeatherBaseURL)
	cfg.Location = getenvDefault("FORECAST_LOCATION", cfg.Location)
	cfg.Lang = getenvDefault("FORECAST_LANG", cfg.Lang)
	cfg.Units = getenvDefault("FORECAST_UNITS", cfg.Units)
	cfg.TimeZone = getenvDefault("FORECAST_TIMEZONE", cfg.TimeZone)
	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.Burst = getenvInt("FORECAST_BURST", cfg.Burst)

	var err error
	if cfg.FetchTimeout, err = getenvDuration("FORECAST_TIMEOUT", cfg.FetchTimeout); err != nil {
		return err
	}
	if cfg.RefreshInterval, err = getenvDuration("FORECAST_REFRESH_INTERVAL", cfg.RefreshInterval); err != nil {
		return err
	}
	if v := os.Getenv("FORECAST_MAX_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid FORECAST_MAX_RPS: %w", err)
		}
		cfg.MaxRequestsPerSecond = rps
	}
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LOG_DEVELOPMENT: %w", err)
		}
		cfg.LogDevelopment = dev
	}
	return nil
}

// Validate checks field constraints and that the time zone is known.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.TimeZone, err)
	}
	if forecast.ParseLocation(c.Location).City == "" {
		return errors.New("location must name a city")
	}
	return nil
}

// ForecastLocation returns the configured location.
func (c *AppConfig) ForecastLocation() forecast.Location {
	return forecast.ParseLocation(c.Location)
}

// Zone returns the configured display time zone, UTC if it cannot be loaded.
func (c *AppConfig) Zone() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
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

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
