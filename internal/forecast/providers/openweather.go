package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/drying-rack-forecast/internal/forecast"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// dtTxtLayout is the layout of dt_txt; OpenWeatherMap sends it in UTC.
const dtTxtLayout = "2006-01-02 15:04:05"

var validate = validator.New()

// OpenWeatherConfig holds request parameters for the forecast endpoint.
type OpenWeatherConfig struct {
	APIKey  string
	BaseURL string
	Units   string
	Lang    string
	// TimeZone is applied to parsed sample timestamps. Nil means UTC.
	TimeZone *time.Location
	Breaker  BreakerConfig
}

// OpenWeatherProvider implements forecast.Provider against the
// 5 day / 3 hour forecast endpoint.
type OpenWeatherProvider struct {
	name    string
	cfg     OpenWeatherConfig
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

func NewOpenWeatherProvider(client *http.Client, cfg OpenWeatherConfig, logger *zap.SugaredLogger) *OpenWeatherProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenWeatherBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	if cfg.TimeZone == nil {
		cfg.TimeZone = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		cfg:     cfg,
		client:  client,
		circuit: newBreaker("openweather", cfg.Breaker, logger),
		logger:  logger,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owForecastResponse struct {
	List []owSample `json:"list" validate:"dive"`
}

type owSample struct {
	DtTxt   string `json:"dt_txt" validate:"required"`
	Weather []struct {
		Icon        string `json:"icon"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     *float64 `json:"temp" validate:"required"`
		Humidity *int     `json:"humidity" validate:"required,min=0,max=100"`
		Pressure *int     `json:"pressure" validate:"required"`
	} `json:"main"`
	Pop *float64 `json:"pop" validate:"omitempty,min=0,max=1"`
}

// FetchForecast requests the forecast for loc and maps every sample.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc forecast.Location) ([]forecast.Entry, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("q", loc.Query())
		values.Set("appid", p.cfg.APIKey)
		values.Set("units", p.cfg.Units)
		if p.cfg.Lang != "" {
			values.Set("lang", p.cfg.Lang)
		}

		u := fmt.Sprintf("%s/forecast?%s", p.cfg.BaseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	p.logger.Debugw("requesting forecast", "provider", p.name, "location", loc.Query())

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload owForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}
	if len(payload.List) == 0 {
		return nil, forecast.ErrEmptyPayload
	}
	if err := validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", forecast.ErrMalformedPayload, err)
	}

	entries := make([]forecast.Entry, 0, len(payload.List))
	for i, s := range payload.List {
		e, err := p.toEntry(s)
		if err != nil {
			return nil, fmt.Errorf("%w: sample %d: %v", forecast.ErrMalformedPayload, i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (p *OpenWeatherProvider) toEntry(s owSample) (forecast.Entry, error) {
	ts, err := time.ParseInLocation(dtTxtLayout, s.DtTxt, time.UTC)
	if err != nil {
		return forecast.Entry{}, err
	}

	var icon, description string
	if len(s.Weather) > 0 {
		icon = s.Weather[0].Icon
		description = s.Weather[0].Description
	}

	var pop float64
	if s.Pop != nil {
		pop = *s.Pop
	}

	return forecast.Entry{
		Timestamp:                ts.In(p.cfg.TimeZone),
		ConditionCode:            icon,
		Description:              description,
		TemperatureC:             *s.Main.Temp,
		HumidityPct:              *s.Main.Humidity,
		PressureHPa:              *s.Main.Pressure,
		PrecipitationProbability: pop,
	}, nil
}
