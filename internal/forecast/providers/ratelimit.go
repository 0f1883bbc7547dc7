package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/i474232898/drying-rack-forecast/internal/forecast"
)

// RateLimitedProvider wraps a forecast.Provider with a token bucket.
type RateLimitedProvider struct {
	provider forecast.Provider
	limiter  *rate.Limiter
	name     string
}

// NewRateLimitedProvider allows rps requests per second with the given burst.
// rps may be fractional.
func NewRateLimitedProvider(provider forecast.Provider, rps float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		name:     fmt.Sprintf("%s [Rate Limited]", provider.Name()),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.name
}

// FetchForecast waits for a token, then forwards to the wrapped provider.
func (r *RateLimitedProvider) FetchForecast(ctx context.Context, loc forecast.Location) ([]forecast.Entry, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("rate limit wait canceled: %w", ctx.Err())
		}
		// The limiter refuses to wait past the deadline; that is a timeout too.
		if _, ok := ctx.Deadline(); ok {
			return nil, fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.provider.FetchForecast(ctx, loc)
}

var _ forecast.Provider = (*RateLimitedProvider)(nil)
