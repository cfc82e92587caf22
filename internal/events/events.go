// Package events carries controller notifications to downstream sinks off
// the simulation's hot path.
package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Rus1K7/Airport/shared/models"
)

// Kind identifies an event payload.
type Kind string

const (
	KindFlightStatusChanged Kind = "flight_status_changed"
	KindCheckInManifest     Kind = "checkin_manifest"
)

// Event is a single notification. Exactly one payload is set, matching Kind.
type Event struct {
	Kind     Kind
	FlightID string
	Status   *models.FlightStatusChanged
	Manifest *models.CheckInManifest
}

// StatusChanged wraps a transition payload.
func StatusChanged(p models.FlightStatusChanged) Event {
	return Event{Kind: KindFlightStatusChanged, FlightID: p.FlightID, Status: &p}
}

// CheckInManifest wraps a manifest payload.
func CheckInManifest(m models.CheckInManifest) Event {
	return Event{Kind: KindCheckInManifest, FlightID: m.FlightID, Manifest: &m}
}

// Sink receives events from the dispatcher.
type Sink interface {
	Name() string
	Publish(ctx context.Context, e Event) error
}

// DefaultQueueSize bounds the number of undelivered events.
const DefaultQueueSize = 256

// SinkTimeout bounds a single delivery.
const SinkTimeout = 5 * time.Second

// Dispatcher queues events and delivers them to every sink from one
// goroutine, in publish order. Publish never blocks: when the queue is
// full the event is dropped and counted.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
	queue  chan Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}

	dropped atomic.Int64
}

// NewDispatcher creates a dispatcher with a queue of size events.
func NewDispatcher(logger *slog.Logger, size int, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = DefaultQueueSize
	}
	d := &Dispatcher{
		sinks:  sinks,
		logger: logger,
		queue:  make(chan Event, size),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues e and reports whether it was accepted.
func (d *Dispatcher) Publish(e Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return false
	}
	select {
	case d.queue <- e:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("event queue full, dropping event", "kind", e.Kind, "flightId", e.FlightID)
		return false
	}
}

// Dropped returns the number of events that were not delivered.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops accepting events and waits until queued ones are delivered
// or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), SinkTimeout)
			if err := s.Publish(ctx, e); err != nil {
				d.logger.Warn("failed to deliver event", "sink", s.Name(), "kind", e.Kind, "flightId", e.FlightID, "error", err)
			}
			cancel()
		}
	}
}

// LogSink writes events to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Name() string { return "log" }

func (s LogSink) Publish(_ context.Context, e Event) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch e.Kind {
	case KindFlightStatusChanged:
		logger.Info("flight status changed", "flightId", e.FlightID, "from", e.Status.From, "status", e.Status.Status, "at", e.Status.At)
	case KindCheckInManifest:
		logger.Info("check-in manifest handed off", "flightId", e.FlightID, "tickets", len(e.Manifest.Tickets))
	}
	return nil
}
