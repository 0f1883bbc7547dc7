package forecast

import (
	"fmt"
	"math"
	"time"
)

// Locale is the label table used by the presentation helpers.
type Locale struct {
	Today    string
	Weekdays [7]string // indexed by time.Weekday, 0 = Sunday
}

var (
	Thai = Locale{
		Today:    "วันนี้",
		Weekdays: [7]string{"อาทิตย์", "จันทร์", "อังคาร", "พุธ", "พฤหัสฯ", "ศุกร์", "เสาร์"},
	}
	English = Locale{
		Today:    "Today",
		Weekdays: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	}
)

// LocaleFor returns the table for a provider lang code, Thai by default.
func LocaleFor(lang string) Locale {
	if lang == "en" {
		return English
	}
	return Thai
}

// DayLabel returns the "today" sentinel when e falls on today's calendar
// date (in today's location), otherwise the weekday name.
func (l Locale) DayLabel(e Entry, today time.Time) string {
	ts := e.Timestamp.In(today.Location())
	if sameDay(ts, today) {
		return l.Today
	}
	return l.Weekdays[ts.Weekday()]
}

// DayLabel uses the Thai table.
func DayLabel(e Entry, today time.Time) string {
	return Thai.DayLabel(e, today)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ShortDateLabel formats the entry date as D/M in the entry's own zone.
// BuildView moves entries into the display zone first so the date agrees
// with DayLabel.
func ShortDateLabel(e Entry) string {
	return fmt.Sprintf("%d/%d", e.Timestamp.Day(), int(e.Timestamp.Month()))
}

// RainLevel is the coloring bucket of the rain-chance badge.
type RainLevel string

const (
	RainLow    RainLevel = "low"
	RainMedium RainLevel = "medium"
	RainHigh   RainLevel = "high"
)

// RainChance is the rounded precipitation percent and its bucket.
type RainChance struct {
	Percent int       `json:"percent"`
	Level   RainLevel `json:"level"`
}

func rainPercent(e Entry) int {
	if !finite(e.PrecipitationProbability) {
		return 0
	}
	return int(math.Round(e.PrecipitationProbability * 100))
}

// RainBucket buckets the rain chance: high above 60, medium above 30.
func RainBucket(e Entry) RainChance {
	p := rainPercent(e)
	level := RainLow
	switch {
	case p > 60:
		level = RainHigh
	case p > 30:
		level = RainMedium
	}
	return RainChance{Percent: p, Level: level}
}

// Glyph values shown instead of the remote icon.
const (
	GlyphRain    = "🌧️"
	GlyphShowers = "🌦️"
	GlyphClear   = "☀️"
)

// ConditionGlyph picks the stand-in icon when the remote image is missing.
// Its thresholds (50/30) differ from RainBucket's (60/30); keep both.
func ConditionGlyph(e Entry) string {
	p := rainPercent(e)
	switch {
	case p > 50:
		return GlyphRain
	case p > 30:
		return GlyphShowers
	default:
		return GlyphClear
	}
}

// RainBadgeGlyph is the icon next to the rain-chance text.
func RainBadgeGlyph(e Entry) string {
	if rainPercent(e) > 30 {
		return GlyphRain
	}
	return GlyphClear
}

// IconURL returns the OpenWeatherMap image for the entry's condition code.
func IconURL(e Entry) string {
	if e.ConditionCode == "" {
		return ""
	}
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", e.ConditionCode)
}
