package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FORECAST_CONFIG_FILE", "")
	t.Setenv("FORECAST_LOCATION", "")
	t.Setenv("FORECAST_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %v", cfg.FetchTimeout)
	}
	loc := cfg.ForecastLocation()
	if loc.City != "Ban Pong" || loc.Country != "TH" {
		t.Fatalf("unexpected location %+v", loc)
	}
	if cfg.Lang != "th" || cfg.Units != "metric" {
		t.Fatalf("unexpected locale %s/%s", cfg.Lang, cfg.Units)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "secret")
	t.Setenv("FORECAST_LOCATION", "Chiang Mai,TH")
	t.Setenv("FORECAST_LANG", "en")
	t.Setenv("FORECAST_TIMEOUT", "3s")
	t.Setenv("FORECAST_REFRESH_INTERVAL", "0")
	t.Setenv("FORECAST_MAX_RPS", "0.5")
	t.Setenv("FORECAST_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenWeatherAPIKey != "secret" {
		t.Fatalf("expected api key from env")
	}
	if cfg.ForecastLocation().City != "Chiang Mai" {
		t.Fatalf("unexpected location %+v", cfg.ForecastLocation())
	}
	if cfg.FetchTimeout != 3*time.Second || cfg.RefreshInterval != 0 || cfg.MaxRequestsPerSecond != 0.5 {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if cfg.Zone() != time.UTC {
		t.Fatalf("expected UTC zone")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.yaml")
	data := []byte("location: \"Ratchaburi,TH\"\nfetch_timeout: 7s\nport: \"9090\"\ntimezone: UTC\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FORECAST_CONFIG_FILE", path)
	t.Setenv("FORECAST_LOCATION", "")
	t.Setenv("FORECAST_TIMEOUT", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Location != "Ratchaburi,TH" || cfg.FetchTimeout != 7*time.Second || cfg.Port != "9090" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad duration", "FORECAST_TIMEOUT", "soon"},
		{"zero timeout", "FORECAST_TIMEOUT", "0s"},
		{"bad units", "FORECAST_UNITS", "kelvin"},
		{"bad url", "OPENWEATHER_BASE_URL", "not a url"},
		{"bad timezone", "FORECAST_TIMEZONE", "Mars/Olympus"},
		{"bad rps", "FORECAST_MAX_RPS", "fast"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("FORECAST_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for a missing config file")
	}
}
