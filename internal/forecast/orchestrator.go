package forecast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single remote fetch.
	DefaultTimeout = 10 * time.Second

	// samplesPerDay is the number of 3-hour samples in a day.
	samplesPerDay = 8
)

// Orchestrator owns the fetch lifecycle: it starts a load on the store,
// calls the provider under a timeout, and commits either the live result
// or the fallback set.
type Orchestrator struct {
	store    Store
	provider Provider
	location Location
	sink     Sink
	logger   *zap.SugaredLogger

	timeout time.Duration
	now     func() time.Time

	inflight sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithSink sets the notification sink.
func WithSink(s Sink) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewOrchestrator creates an Orchestrator for a single location.
func NewOrchestrator(store Store, provider Provider, loc Location, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		provider: provider,
		location: loc,
		sink:     discardSink{},
		logger:   zap.NewNop().Sugar(),
		timeout:  DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RequestForecast starts a fetch in the background and returns at once.
// It reports false, doing nothing, when a fetch is already in flight.
// The outcome is observed through State and the sink.
func (o *Orchestrator) RequestForecast() bool {
	if !o.store.BeginLoad() {
		o.logger.Debugw("forecast fetch already in flight", "location", o.location.Query())
		return false
	}

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		o.run(context.Background())
	}()
	return true
}

// Refresh runs a fetch and blocks until its outcome is committed.
// It reports false when another fetch was already in flight.
func (o *Orchestrator) Refresh(ctx context.Context) bool {
	if !o.store.BeginLoad() {
		o.logger.Debugw("forecast fetch already in flight", "location", o.location.Query())
		return false
	}
	o.run(ctx)
	return true
}

// Wait blocks until fetches started by RequestForecast have finished.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// State returns the current snapshot.
func (o *Orchestrator) State() State {
	return o.store.Snapshot()
}

// run performs one attempt. The caller must have won BeginLoad.
func (o *Orchestrator) run(parent context.Context) {
	attempt := uuid.NewString()
	o.sink.Notify(Event{Kind: EventStarted, AttemptID: attempt, Message: noticeStarted, At: o.now()})

	entries, err := o.fetch(parent)
	if err != nil {
		fetchErr := NewFetchError(err)
		o.logger.Errorw("forecast fetch failed; using fallback data",
			"location", o.location.Query(),
			"attempt", attempt,
			"kind", fetchErr.Kind,
			"error", err,
		)

		now := o.now()
		o.store.CommitResult(FallbackEntries(now), true, fetchErr, now)
		o.sink.Notify(Event{
			Kind:      EventFailed,
			AttemptID: attempt,
			Reason:    fetchErr.Kind,
			Message:   FailureNotice(fetchErr.Kind),
			At:        now,
		})
		return
	}

	now := o.now()
	o.store.CommitResult(entries, false, nil, now)
	o.logger.Infow("forecast fetch succeeded",
		"location", o.location.Query(),
		"attempt", attempt,
		"entries", len(entries),
	)
	o.sink.Notify(Event{Kind: EventSucceeded, AttemptID: attempt, Message: noticeSucceeded, At: now})
}

// fetch calls the provider under the timeout and reduces the samples to
// one per day. A panic inside the provider is reported as an error so the
// attempt still ends with exactly one outcome.
func (o *Orchestrator) fetch(parent context.Context) (entries []Entry, err error) {
	if o.provider == nil {
		return nil, errors.New("no forecast provider configured")
	}

	ctx, cancel := context.WithTimeout(parent, o.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			entries, err = nil, fmt.Errorf("provider %s panicked: %v", o.provider.Name(), r)
		}
	}()

	samples, err := o.provider.FetchForecast(ctx, o.location)
	if err != nil {
		// A provider may swallow the context error; report the deadline instead.
		if ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
			return nil, fmt.Errorf("%w: %v", ctx.Err(), err)
		}
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrEmptyPayload
	}

	return Downsample(samples, samplesPerDay, MaxEntries), nil
}
