// Package flights holds flight records and advances their lifecycle.
package flights

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Rus1K7/Airport/internal/simerr"
)

// Spec describes a flight to be created.
type Spec struct {
	ID            string
	From          string
	To            string
	ScheduledTime time.Time
	Duration      time.Duration
	Capacity      int
	VIPSeats      int
}

// Flight is a snapshot of a flight record.
type Flight struct {
	ID             string
	From           string
	To             string
	ScheduledTime  time.Time
	Duration       time.Duration
	Status         Status
	ResumeStatus   Status
	DelayedAt      time.Time
	NextTransition time.Time
	Capacity       int
	VIPSeats       int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EstimatedArrival is the scheduled departure plus the flight duration.
func (f Flight) EstimatedArrival() time.Time {
	return f.ScheduledTime.Add(f.Duration)
}

// DisplayStatus is the label shown on the board at now. A departed flight
// whose arrival is due within window shows PlanningArrive.
func (f Flight) DisplayStatus(now time.Time, window time.Duration) Status {
	if f.Status == StatusDeparted {
		eta := f.EstimatedArrival()
		if now.Before(eta) && !now.Before(eta.Add(-window)) {
			return StatusPlanningArrive
		}
	}
	return f.Status
}

// EffectiveStatus is the state a delayed flight will resume in, or the
// flight's own state otherwise.
func (f Flight) EffectiveStatus() Status {
	if f.Status == StatusDelayed {
		return f.ResumeStatus
	}
	return f.Status
}

// Change records a single applied transition.
type Change struct {
	FlightID string
	From     Status
	To       Status
	At       time.Time
	Flight   Flight
}

type record struct {
	id     string
	mu     sync.RWMutex
	flight Flight
}

// Registry owns every flight. Each flight has its own lock so unrelated
// flights never contend.
type Registry struct {
	timeline Timeline

	mu      sync.RWMutex
	flights map[string]*record
}

// NewRegistry creates an empty registry using timeline to place stages.
func NewRegistry(timeline Timeline) (*Registry, error) {
	if err := timeline.Validate(); err != nil {
		return nil, err
	}
	return &Registry{
		timeline: timeline,
		flights:  make(map[string]*record),
	}, nil
}

// Timeline returns the registry's stage offsets.
func (r *Registry) Timeline() Timeline {
	return r.timeline
}

// Create adds a Scheduled flight. A flight whose stages are already due
// catches up one stage per scan.
func (r *Registry) Create(spec Spec, now time.Time) (Flight, error) {
	spec.ID = strings.TrimSpace(spec.ID)
	if spec.ID == "" {
		return Flight{}, simerr.New(simerr.ErrInvalidFlight, "flight id is required")
	}
	if strings.TrimSpace(spec.From) == "" || strings.TrimSpace(spec.To) == "" {
		return Flight{}, simerr.New(simerr.ErrInvalidFlight, "flight %s: origin and destination are required", spec.ID)
	}
	if spec.ScheduledTime.IsZero() {
		return Flight{}, simerr.New(simerr.ErrInvalidFlight, "flight %s: scheduled time is required", spec.ID)
	}
	if spec.Capacity <= 0 {
		return Flight{}, simerr.New(simerr.ErrInvalidFlight, "flight %s: capacity must be positive", spec.ID)
	}
	if spec.VIPSeats < 0 || spec.VIPSeats > spec.Capacity {
		return Flight{}, simerr.New(simerr.ErrInvalidFlight, "flight %s: vip seats must be between 0 and capacity", spec.ID)
	}
	if spec.Duration < 0 {
		return Flight{}, simerr.New(simerr.ErrInvalidFlight, "flight %s: duration must not be negative", spec.ID)
	}
	if spec.Duration == 0 {
		spec.Duration = r.timeline.FlightDuration
	}

	f := Flight{
		ID:            spec.ID,
		From:          spec.From,
		To:            spec.To,
		ScheduledTime: spec.ScheduledTime,
		Duration:      spec.Duration,
		Status:        StatusScheduled,
		Capacity:      spec.Capacity,
		VIPSeats:      spec.VIPSeats,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.schedule(&f)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.flights[f.ID]; exists {
		return Flight{}, simerr.New(simerr.ErrInvalidFlight, "flight %s already exists", f.ID)
	}
	r.flights[f.ID] = &record{id: f.ID, flight: f}
	return f, nil
}

// Get returns a snapshot of one flight.
func (r *Registry) Get(id string) (Flight, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return Flight{}, err
	}
	rec.mu.RLock()
	defer rec.mu.RUnlock()
	return rec.flight, nil
}

// View runs fn on a snapshot of the flight while no transition can be
// applied to it. fn may take other locks but must not call back into the
// registry for the same flight.
func (r *Registry) View(id string, fn func(f Flight) error) error {
	rec, err := r.lookup(id)
	if err != nil {
		return err
	}
	rec.mu.RLock()
	defer rec.mu.RUnlock()
	return fn(rec.flight)
}

// List returns snapshots of all flights ordered by departure then id.
func (r *Registry) List() []Flight {
	records := r.records()
	out := make([]Flight, 0, len(records))
	for _, rec := range records {
		rec.mu.RLock()
		out = append(out, rec.flight)
		rec.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledTime.Equal(out[j].ScheduledTime) {
			return out[i].ScheduledTime.Before(out[j].ScheduledTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AdvanceDueFlights applies at most one transition to every flight whose
// next transition is due at now. Changes are ordered by flight id.
func (r *Registry) AdvanceDueFlights(now time.Time) []Change {
	records := r.records()
	sort.Slice(records, func(i, j int) bool { return records[i].id < records[j].id })

	var changes []Change
	for _, rec := range records {
		if c, ok := r.step(rec, now); ok {
			changes = append(changes, c)
		}
	}
	return changes
}

// Delay moves the departure of a pre-departure flight to newTime and marks
// it Delayed. The flight resumes the state it was in once that state's
// window opens under the new schedule.
func (r *Registry) Delay(id string, newTime, now time.Time) (Change, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return Change{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	f := &rec.flight
	if !delayable[f.Status] {
		return Change{}, simerr.New(simerr.ErrInvalidTransition, "flight %s cannot be delayed while %s", id, f.Status)
	}
	if !newTime.After(f.ScheduledTime) {
		return Change{}, simerr.New(simerr.ErrInvalidFlight, "flight %s: new departure %s must be later than %s",
			id, newTime.Format(time.RFC3339), f.ScheduledTime.Format(time.RFC3339))
	}

	from := f.Status
	if f.Status != StatusDelayed {
		f.ResumeStatus = f.Status
		f.Status = StatusDelayed
		f.DelayedAt = now
	}
	f.ScheduledTime = newTime
	f.UpdatedAt = now
	r.schedule(f)

	return Change{FlightID: id, From: from, To: StatusDelayed, At: now, Flight: *f}, nil
}

func (r *Registry) step(rec *record, now time.Time) (Change, bool) {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	f := &rec.flight
	t, ok := nextTransition(f)
	if !ok || now.Before(entryTime(f, t.To, r.timeline)) {
		return Change{}, false
	}

	from := f.Status
	f.Status = t.To
	if from == StatusDelayed {
		f.ResumeStatus = ""
		f.DelayedAt = time.Time{}
	}
	f.UpdatedAt = now
	r.schedule(f)

	return Change{FlightID: f.ID, From: from, To: f.Status, At: now, Flight: *f}, true
}

// schedule recomputes the instant of the flight's next transition.
func (r *Registry) schedule(f *Flight) {
	t, ok := nextTransition(f)
	if !ok {
		f.NextTransition = time.Time{}
		return
	}
	f.NextTransition = entryTime(f, t.To, r.timeline)
}

func (r *Registry) lookup(id string) (*record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.flights[id]
	if !ok {
		return nil, simerr.New(simerr.ErrFlightNotFound, "flight %s not found", id)
	}
	return rec, nil
}

func (r *Registry) records() []*record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*record, 0, len(r.flights))
	for _, rec := range r.flights {
		out = append(out, rec)
	}
	return out
}
