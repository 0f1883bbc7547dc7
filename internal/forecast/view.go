package forecast

import (
	"fmt"
	"time"
)

// Card is the display-ready form of one entry.
type Card struct {
	DayLabel     string     `json:"dayLabel"`
	DateLabel    string     `json:"dateLabel"`
	IsFirst      bool       `json:"isFirst"`
	IconURL      string     `json:"iconUrl"`
	Glyph        string     `json:"glyph"`
	Description  string     `json:"description"`
	Temperature  string     `json:"temperature"`
	HumidityPct  int        `json:"humidityPct"`
	PressureHPa  int        `json:"pressureHpa"`
	Rain         RainChance `json:"rain"`
	RainGlyph    string     `json:"rainGlyph"`
	FallbackData bool       `json:"fallbackData"`
}

// ChartPoint is one point of the temperature and humidity trend.
type ChartPoint struct {
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	Temperature float64 `json:"temp"`
	Humidity    int     `json:"hum"`
}

// Banner describes provenance of the shown data.
type Banner struct {
	Fallback bool   `json:"fallback"`
	Live     bool   `json:"live"`
	Error    string `json:"error,omitempty"`
	Loading  bool   `json:"loading"`
}

// View is everything a UI needs to render the forecast panel.
type View struct {
	Location    string       `json:"location"`
	Banner      Banner       `json:"banner"`
	Cards       []Card       `json:"cards"`
	Chart       []ChartPoint `json:"chart"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

// BuildView derives the display values from a state snapshot.
// Entries that are not displayable are skipped.
func BuildView(s State, loc Location, today time.Time, l Locale) View {
	v := View{
		Location: loc.City,
		Banner: Banner{
			Fallback: s.IsFallback,
			Live:     !s.IsFallback,
			Loading:  s.IsLoading,
		},
		Cards:       make([]Card, 0, len(s.Entries)),
		Chart:       make([]ChartPoint, 0, len(s.Entries)),
		LastUpdated: s.LastUpdated,
	}
	if s.LastError != nil {
		v.Banner.Error = s.LastError.Message
	}

	for _, e := range s.Entries {
		if !e.Displayable() {
			continue
		}
		e.Timestamp = e.Timestamp.In(today.Location())
		day := l.DayLabel(e, today)
		date := ShortDateLabel(e)

		v.Cards = append(v.Cards, Card{
			DayLabel:     day,
			DateLabel:    date,
			IsFirst:      len(v.Cards) == 0,
			IconURL:      IconURL(e),
			Glyph:        ConditionGlyph(e),
			Description:  e.Description,
			Temperature:  fmt.Sprintf("%.1f", e.TemperatureC),
			HumidityPct:  e.HumidityPct,
			PressureHPa:  e.PressureHPa,
			Rain:         RainBucket(e),
			RainGlyph:    RainBadgeGlyph(e),
			FallbackData: s.IsFallback,
		})
		v.Chart = append(v.Chart, ChartPoint{
			Name:        day,
			Date:        date,
			Temperature: e.TemperatureC,
			Humidity:    e.HumidityPct,
		})
	}
	return v
}
