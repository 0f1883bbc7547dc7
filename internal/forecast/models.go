package forecast

import (
	"math"
	"strings"
	"time"
)

// MaxEntries is the number of daily entries the module keeps.
const MaxEntries = 5

// Entry is one forecast sample for a future time slot.
// Entries are values; nothing mutates one after it is built.
type Entry struct {
	Timestamp                time.Time `json:"timestamp"`
	ConditionCode            string    `json:"conditionCode"`
	Description              string    `json:"description"`
	TemperatureC             float64   `json:"temperatureC"`
	HumidityPct              int       `json:"humidityPct"`
	PressureHPa              int       `json:"pressureHpa"`
	PrecipitationProbability float64   `json:"precipitationProbability"`
}

// Displayable reports whether every numeric field is finite and in range.
func (e Entry) Displayable() bool {
	if e.Timestamp.IsZero() {
		return false
	}
	if !finite(e.TemperatureC) || !finite(e.PrecipitationProbability) {
		return false
	}
	if e.HumidityPct < 0 || e.HumidityPct > 100 {
		return false
	}
	return e.PrecipitationProbability >= 0 && e.PrecipitationProbability <= 1
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// State is the externally observable state of the forecast module.
type State struct {
	Entries     []Entry     `json:"entries"`
	IsLoading   bool        `json:"isLoading"`
	LastError   *FetchError `json:"lastError,omitempty"`
	IsFallback  bool        `json:"isFallback"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// Clone returns a copy of s that shares no memory with it.
func (s State) Clone() State {
	out := s
	if s.Entries != nil {
		out.Entries = make([]Entry, len(s.Entries))
		copy(out.Entries, s.Entries)
	}
	if s.LastError != nil {
		e := *s.LastError
		out.LastError = &e
	}
	return out
}

// Location identifies the single place the module fetches for,
// in OpenWeatherMap "city,country" form.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Query returns the value sent as the provider's q parameter.
func (l Location) Query() string {
	if l.Country == "" {
		return l.City
	}
	return l.City + "," + l.Country
}

// ParseLocation splits a "city,country" string.
func ParseLocation(s string) Location {
	if i := strings.LastIndex(s, ","); i >= 0 {
		return Location{City: strings.TrimSpace(s[:i]), Country: strings.TrimSpace(s[i+1:])}
	}
	return Location{City: strings.TrimSpace(s)}
}
