package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/drying-rack-forecast/internal/forecast"
	"github.com/i474232898/drying-rack-forecast/internal/store"
)

var banPong = forecast.Location{City: "Ban Pong", Country: "TH"}

var sampleStart = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

// forecastBody builds an OpenWeatherMap /forecast payload of n 3-hourly samples.
func forecastBody(n int) map[string]interface{} {
	list := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, map[string]interface{}{
			"dt_txt":  sampleStart.Add(time.Duration(i) * 3 * time.Hour).Format(dtTxtLayout),
			"weather": []map[string]string{{"icon": "10d", "description": "ฝนตกเล็กน้อย"}},
			"main":    map[string]interface{}{"temp": 20.5 + float64(i), "humidity": 80, "pressure": 1009},
			"pop":     0.65,
		})
	}
	return map[string]interface{}{"cod": "200", "list": list}
}

func jsonHandler(status int, body interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func newTestProvider(baseURL string) *OpenWeatherProvider {
	return NewOpenWeatherProvider(&http.Client{}, OpenWeatherConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Lang:    "th",
		Breaker: DefaultBreakerConfig(),
	}, nil)
}

func TestFetchForecastRequestAndMapping(t *testing.T) {
	var gotQuery map[string]string
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		q := r.URL.Query()
		gotQuery = map[string]string{
			"q":     q.Get("q"),
			"appid": q.Get("appid"),
			"units": q.Get("units"),
			"lang":  q.Get("lang"),
		}
		jsonHandler(http.StatusOK, forecastBody(40))(w, r)
	}))
	defer ts.Close()

	ict := time.FixedZone("ICT", 7*60*60)
	p := NewOpenWeatherProvider(&http.Client{}, OpenWeatherConfig{
		APIKey:   "test-key",
		BaseURL:  ts.URL + "/",
		Lang:     "th",
		TimeZone: ict,
	}, nil)

	entries, err := p.FetchForecast(context.Background(), banPong)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/forecast" {
		t.Fatalf("expected /forecast, got %s", gotPath)
	}
	want := map[string]string{"q": "Ban Pong,TH", "appid": "test-key", "units": "metric", "lang": "th"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s: expected %q, got %q", k, v, gotQuery[k])
		}
	}

	if len(entries) != 40 {
		t.Fatalf("expected all 40 samples, got %d", len(entries))
	}
	e := entries[0]
	if !e.Timestamp.Equal(sampleStart) || e.Timestamp.Location() != ict {
		t.Fatalf("unexpected timestamp %v", e.Timestamp)
	}
	if e.ConditionCode != "10d" || e.Description != "ฝนตกเล็กน้อย" {
		t.Fatalf("unexpected condition %+v", e)
	}
	if e.TemperatureC != 20.5 || e.HumidityPct != 80 || e.PressureHPa != 1009 || e.PrecipitationProbability != 0.65 {
		t.Fatalf("unexpected values %+v", e)
	}
}

func TestFetchForecastOptionalFields(t *testing.T) {
	body := map[string]interface{}{
		"list": []map[string]interface{}{{
			"dt_txt": "2026-10-15 12:00:00",
			"main":   map[string]interface{}{"temp": 30, "humidity": 70, "pressure": 1012},
		}},
	}
	ts := httptest.NewServer(jsonHandler(http.StatusOK, body))
	defer ts.Close()

	entries, err := newTestProvider(ts.URL).FetchForecast(context.Background(), banPong)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].PrecipitationProbability != 0 || entries[0].ConditionCode != "" {
		t.Fatalf("expected zero pop and empty condition, got %+v", entries[0])
	}
}

func TestFetchForecastErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(error) bool
		kind    forecast.ErrorKind
	}{
		{
			name:    "service unavailable",
			handler: jsonHandler(http.StatusServiceUnavailable, map[string]string{"message": "busy"}),
			check: func(err error) bool {
				var se *StatusError
				return errors.As(err, &se) && se.Code == http.StatusServiceUnavailable
			},
			kind: forecast.KindHTTPError,
		},
		{
			name:    "unauthorized",
			handler: jsonHandler(http.StatusUnauthorized, map[string]string{"message": "Invalid API key"}),
			check:   func(err error) bool { return errors.Is(err, forecast.ErrHTTPStatus) },
			kind:    forecast.KindHTTPError,
		},
		{
			name:    "empty list",
			handler: jsonHandler(http.StatusOK, map[string]interface{}{"list": []interface{}{}}),
			check:   func(err error) bool { return errors.Is(err, forecast.ErrEmptyPayload) },
			kind:    forecast.KindEmptyPayload,
		},
		{
			name:    "missing list",
			handler: jsonHandler(http.StatusOK, map[string]interface{}{"cod": "200"}),
			check:   func(err error) bool { return errors.Is(err, forecast.ErrEmptyPayload) },
			kind:    forecast.KindEmptyPayload,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "<html>oops</html>")
			},
			check: func(err error) bool { return err != nil },
			kind:  forecast.KindUnclassified,
		},
		{
			name: "missing temperature",
			handler: jsonHandler(http.StatusOK, map[string]interface{}{"list": []map[string]interface{}{{
				"dt_txt": "2026-10-15 12:00:00",
				"main":   map[string]interface{}{"humidity": 70, "pressure": 1012},
			}}}),
			check: func(err error) bool { return errors.Is(err, forecast.ErrMalformedPayload) },
			kind:  forecast.KindUnclassified,
		},
		{
			name: "bad dt_txt",
			handler: jsonHandler(http.StatusOK, map[string]interface{}{"list": []map[string]interface{}{{
				"dt_txt": "tomorrow",
				"main":   map[string]interface{}{"temp": 30, "humidity": 70, "pressure": 1012},
			}}}),
			check: func(err error) bool { return errors.Is(err, forecast.ErrMalformedPayload) },
			kind:  forecast.KindUnclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			_, err := newTestProvider(ts.URL).FetchForecast(context.Background(), banPong)
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := forecast.Classify(err); got != tt.kind {
				t.Fatalf("expected kind %s, got %s (%v)", tt.kind, got, err)
			}
		})
	}
}

func TestFetchForecastNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(http.StatusOK, forecastBody(1)))
	url := ts.URL
	ts.Close()

	_, err := newTestProvider(url).FetchForecast(context.Background(), banPong)
	if err == nil {
		t.Fatalf("expected error from closed server")
	}
	if got := forecast.Classify(err); got != forecast.KindNetworkFailure {
		t.Fatalf("expected network failure, got %s (%v)", got, err)
	}
}

func TestFetchForecastBadSchemeIsNotNetworkFailure(t *testing.T) {
	_, err := newTestProvider("ftp://api.example").FetchForecast(context.Background(), banPong)
	if err == nil {
		t.Fatalf("expected error for an unsupported scheme")
	}
	if got := forecast.Classify(err); got != forecast.KindUnclassified {
		t.Fatalf("expected unclassified, got %s (%v)", got, err)
	}
}

func TestFetchForecastAbortsOnDeadline(t *testing.T) {
	var aborted atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			aborted.Store(true)
		case <-time.After(5 * time.Second):
			jsonHandler(http.StatusOK, forecastBody(8))(w, r)
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestProvider(ts.URL).FetchForecast(ctx, banPong)
	if got := forecast.Classify(err); got != forecast.KindTimeout {
		t.Fatalf("expected timeout, got %s (%v)", got, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !aborted.Load() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !aborted.Load() {
		t.Fatalf("expected the server to see the request aborted")
	}
}

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	p := NewOpenWeatherProvider(&http.Client{}, OpenWeatherConfig{
		APIKey:  "k",
		BaseURL: ts.URL,
		Breaker: BreakerConfig{ConsecutiveFailures: 2, OpenTimeout: time.Minute},
	}, nil)

	ctx := forecast.Scheduled(context.Background())
	for i := 0; i < 3; i++ {
		if _, err := p.FetchForecast(ctx, banPong); !errors.Is(err, forecast.ErrHTTPStatus) {
			t.Fatalf("attempt %d: expected http status error, got %v", i, err)
		}
	}

	_, err := p.FetchForecast(ctx, banPong)
	if !errors.Is(err, errCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected open breaker to skip the request, got %d hits", hits.Load())
	}
	if got := forecast.Classify(err); got != forecast.KindUnclassified {
		t.Fatalf("expected unclassified for an open breaker, got %s", got)
	}
}

func TestManualRefreshIgnoresOpenBreaker(t *testing.T) {
	var hits atomic.Int32
	var healthy atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		jsonHandler(http.StatusOK, forecastBody(40))(w, r)
	}))
	defer ts.Close()

	p := newTestProvider(ts.URL)
	st := store.NewStateStore(sampleStart)
	orch := forecast.NewOrchestrator(st, p, banPong, forecast.WithTimeout(5*time.Second))

	// Scheduled refreshes trip the breaker after more than five failures.
	scheduled := forecast.Scheduled(context.Background())
	for i := 0; i < 6; i++ {
		orch.Refresh(scheduled)
	}
	orch.Refresh(scheduled)
	if err := orch.State().LastError; err == nil || !errors.Is(err, errCircuitOpen) {
		t.Fatalf("expected the breaker to be open, got %v", err)
	}
	if hits.Load() != 6 {
		t.Fatalf("expected open breaker to skip the request, got %d hits", hits.Load())
	}

	healthy.Store(true)
	orch.Refresh(context.Background())

	if hits.Load() != 7 {
		t.Fatalf("expected the manual refresh to reach the server, got %d hits", hits.Load())
	}
	s := orch.State()
	if s.IsFallback || s.LastError != nil || len(s.Entries) != forecast.MaxEntries {
		t.Fatalf("expected live data after recovery, got %+v", s)
	}
}
