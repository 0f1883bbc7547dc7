package forecast

import (
	"testing"
	"time"
)

func TestFallbackEntriesAreRelativeToNow(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	entries := FallbackEntries(now)

	if len(entries) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(entries))
	}
	for i, e := range entries {
		want := now.Add(time.Duration(i+1) * 24 * time.Hour)
		if !e.Timestamp.Equal(want) {
			t.Errorf("entry %d: expected %v, got %v", i, want, e.Timestamp)
		}
		if !e.Displayable() {
			t.Errorf("entry %d is not displayable: %+v", i, e)
		}
	}

	later := FallbackEntries(now.Add(72 * time.Hour))
	if !later[0].Timestamp.Equal(now.Add(96 * time.Hour)) {
		t.Fatalf("expected fallback to be regenerated from the given time")
	}
}

func TestFallbackEntriesDoNotShareMemory(t *testing.T) {
	now := time.Now()
	a := FallbackEntries(now)
	a[0].Description = "changed"
	if b := FallbackEntries(now); b[0].Description == "changed" {
		t.Fatalf("fallback entries share backing storage")
	}
}

func TestDownsample(t *testing.T) {
	samples := make([]Entry, 40)
	for i := range samples {
		samples[i].PressureHPa = i
	}

	got := Downsample(samples, 8, 5)
	want := []int{0, 8, 16, 24, 32}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].PressureHPa != want[i] {
			t.Errorf("position %d: expected index %d, got %d", i, want[i], got[i].PressureHPa)
		}
	}

	if n := len(Downsample(samples[:24], 8, 5)); n != 3 {
		t.Fatalf("expected 3 entries from 24 samples, got %d", n)
	}
	if n := len(Downsample(samples[:1], 8, 5)); n != 1 {
		t.Fatalf("expected 1 entry from 1 sample, got %d", n)
	}
	if n := len(Downsample(nil, 8, 5)); n != 0 {
		t.Fatalf("expected no entries from no samples, got %d", n)
	}
	if n := len(Downsample(samples, 1, 5)); n != 5 {
		t.Fatalf("expected cap of 5, got %d", n)
	}
}
