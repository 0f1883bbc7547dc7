package forecast

import "time"

type sample struct {
	icon        string
	description string
	temp        float64
	humidity    int
	pressure    int
	pop         float64
}

var fallbackSamples = [MaxEntries]sample{
	{icon: "01d", description: "ท้องฟ้าแจ่มใส", temp: 32, humidity: 65, pressure: 1013, pop: 0.1},
	{icon: "02d", description: "มีเมฆบางส่วน", temp: 31, humidity: 70, pressure: 1012, pop: 0.3},
	{icon: "10d", description: "ฝนตกเล็กน้อย", temp: 29, humidity: 80, pressure: 1011, pop: 0.6},
	{icon: "03d", description: "มีเมฆมาก", temp: 30, humidity: 75, pressure: 1012, pop: 0.4},
	{icon: "01d", description: "ท้องฟ้าแจ่มใส", temp: 33, humidity: 60, pressure: 1013, pop: 0.2},
}

// FallbackEntries builds the bundled sample forecast with timestamps at
// now+1 day through now+5 days, so the data always starts "tomorrow".
func FallbackEntries(now time.Time) []Entry {
	entries := make([]Entry, 0, len(fallbackSamples))
	for i, s := range fallbackSamples {
		entries = append(entries, Entry{
			Timestamp:                now.Add(time.Duration(i+1) * 24 * time.Hour),
			ConditionCode:            s.icon,
			Description:              s.description,
			TemperatureC:             s.temp,
			HumidityPct:              s.humidity,
			PressureHPa:              s.pressure,
			PrecipitationProbability: s.pop,
		})
	}
	return entries
}

// Downsample keeps every step-th sample starting at index 0, up to limit entries.
func Downsample(samples []Entry, step, limit int) []Entry {
	if step <= 0 {
		step = 1
	}
	if limit < 0 {
		limit = 0
	}
	out := make([]Entry, 0, limit)
	for i := 0; i < len(samples) && len(out) < limit; i += step {
		out = append(out, samples[i])
	}
	return out
}
