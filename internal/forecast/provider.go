package forecast

import (
	"context"
	"time"
)

// Provider abstracts the remote forecast source (OpenWeatherMap).
// FetchForecast returns every sample of the response in order, already
// mapped to entries; downsampling is the orchestrator's job.
type Provider interface {
	Name() string
	FetchForecast(ctx context.Context, loc Location) ([]Entry, error)
}

// Store is the contract the state holder must satisfy.
// BeginLoad and CommitResult are called only by the Orchestrator.
type Store interface {
	Snapshot() State
	// BeginLoad marks a fetch in flight and clears the last error. It
	// reports false, changing nothing, when a fetch is already in flight.
	BeginLoad() bool
	// CommitResult replaces the entries, records the outcome and clears
	// the loading flag in one step.
	CommitResult(entries []Entry, isFallback bool, fetchErr *FetchError, at time.Time)
}

type scheduledKey struct{}

// Scheduled marks ctx as a background refresh rather than a user request.
// Providers may shed scheduled attempts while the upstream keeps failing;
// user requests always reach the network.
func Scheduled(ctx context.Context) context.Context {
	return context.WithValue(ctx, scheduledKey{}, true)
}

// IsScheduled reports whether ctx was marked by Scheduled.
func IsScheduled(ctx context.Context) bool {
	v, _ := ctx.Value(scheduledKey{}).(bool)
	return v
}
