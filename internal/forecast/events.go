package forecast

import (
	"time"

	"go.uber.org/zap"
)

// EventKind is the kind of notification the orchestrator emits.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventSucceeded EventKind = "succeeded"
	EventFailed    EventKind = "failed"
)

// Event is a single notification. Reason is set only for EventFailed.
type Event struct {
	Kind      EventKind `json:"kind"`
	AttemptID string    `json:"attemptId"`
	Reason    ErrorKind `json:"reason,omitempty"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// Sink consumes orchestrator notifications, e.g. a toast or log system.
// Notify is called synchronously from the fetch path and must not block.
type Sink interface {
	Notify(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Notify(e Event) { f(e) }

// MultiSink fans an event out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Notify(e Event) {
	for _, s := range m {
		if s != nil {
			s.Notify(e)
		}
	}
}

// LogSink writes notifications to a zap logger.
type LogSink struct {
	logger *zap.SugaredLogger
}

func NewLogSink(logger *zap.SugaredLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(e Event) {
	switch e.Kind {
	case EventFailed:
		s.logger.Warnw(e.Message, "event", e.Kind, "attempt", e.AttemptID, "reason", e.Reason)
	default:
		s.logger.Infow(e.Message, "event", e.Kind, "attempt", e.AttemptID)
	}
}

type discardSink struct{}

func (discardSink) Notify(Event) {}
