// Package observer carries pipeline diagnostics: per-stage durations and
// outcomes, and the category and context of every failure the controller
// absorbed into a fallback.
package observer

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Outcome of a stage or run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFallback Outcome = "fallback"
	OutcomeFailed   Outcome = "failed"
	OutcomeCacheHit Outcome = "cache_hit"
	OutcomeSkipped  Outcome = "skipped"
)

// Event is one diagnostic record.
type Event struct {
	RunID     string                 `json:"run_id"`
	Stage     string                 `json:"stage"`
	Outcome   Outcome                `json:"outcome"`
	Duration  time.Duration          `json:"duration"`
	Category  string                 `json:"category,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Sink receives events. Implementations must not block the caller for long
// and must be safe for concurrent use.
type Sink interface {
	Record(event Event)
}

// LogSink writes events through logrus.
type LogSink struct {
	logger logrus.FieldLogger
}

// NewLogSink creates a sink backed by the given logger.
func NewLogSink(logger logrus.FieldLogger) *LogSink {
	return &LogSink{logger: logger}
}

// Record logs the event. Failures log at warn, everything else at debug.
func (s *LogSink) Record(event Event) {
	fields := logrus.Fields{
		"run_id":      event.RunID,
		"stage":       event.Stage,
		"outcome":     event.Outcome,
		"duration_ms": event.Duration.Milliseconds(),
	}
	if event.Category != "" {
		fields["category"] = event.Category
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := s.logger.WithFields(fields)
	switch event.Outcome {
	case OutcomeFailed, OutcomeFallback:
		entry.Warn(event.Message)
	default:
		entry.Debug(event.Message)
	}
}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends the event.
func (r *Recorder) Record(event Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Find returns recorded events for a stage.
func (r *Recorder) Find(stage string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Stage == stage {
			out = append(out, e)
		}
	}
	return out
}

// Multi fans an event out to several sinks.
type Multi []Sink

// Record forwards the event to every sink.
func (m Multi) Record(event Event) {
	for _, s := range m {
		if s != nil {
			s.Record(event)
		}
	}
}

// Nop drops events.
type Nop struct{}

// Record does nothing.
func (Nop) Record(Event) {}
