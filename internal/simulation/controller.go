// Package simulation wires the clock, registry, ledger, directory and fraud
// injector into one simulation and drives it from wall-clock ticks.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Rus1K7/Airport/internal/events"
	"github.com/Rus1K7/Airport/internal/flights"
	"github.com/Rus1K7/Airport/internal/fraud"
	"github.com/Rus1K7/Airport/internal/ledger"
	"github.com/Rus1K7/Airport/internal/passengers"
	"github.com/Rus1K7/Airport/internal/simclock"
	"github.com/Rus1K7/Airport/internal/simerr"
	"github.com/Rus1K7/Airport/shared/models"
	"github.com/jonboulle/clockwork"
)

// ErrAlreadyRunning is returned by Run when a loop is active.
var ErrAlreadyRunning = errors.New("simulation loop already running")

// Publisher accepts events without blocking.
type Publisher interface {
	Publish(e events.Event) bool
}

type discard struct{}

func (discard) Publish(events.Event) bool { return true }

// Options configures a simulation.
type Options struct {
	Start        time.Time
	Step         time.Duration
	TickInterval time.Duration
	Timeline     flights.Timeline
	VIPOverflow  bool
	Schedule     []flights.Spec

	// WallClock drives the tick loop. Defaults to the real clock.
	WallClock clockwork.Clock
	Publisher Publisher
	Logger    *slog.Logger
}

// Status describes the loop.
type Status struct {
	Now     time.Time
	Running bool
	Paused  bool
	Step    time.Duration
	Ticks   int64
}

// Reconciliation pairs a passenger's genuine ticket with its forged copy.
type Reconciliation struct {
	Passenger     passengers.Passenger
	Genuine       *ledger.Ticket
	Forged        *ledger.Ticket
	Discrepancies []fraud.Discrepancy
}

// Controller owns one isolated simulation.
type Controller struct {
	clock     *simclock.Clock
	registry  *flights.Registry
	ledger    *ledger.Ledger
	directory *passengers.Directory
	injector  *fraud.Injector

	publisher    Publisher
	wall         clockwork.Clock
	tickInterval time.Duration
	logger       *slog.Logger

	handoffMu sync.Mutex
	handedOff map[string]bool

	running atomic.Bool
	paused  atomic.Bool
	ticks   atomic.Int64
}

// New builds a simulation and seeds its schedule.
func New(opts Options) (*Controller, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.WallClock == nil {
		opts.WallClock = clockwork.NewRealClock()
	}
	if opts.Publisher == nil {
		opts.Publisher = discard{}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Timeline == (flights.Timeline{}) {
		opts.Timeline = flights.DefaultTimeline()
	}

	clock, err := simclock.New(opts.Start, opts.Step)
	if err != nil {
		return nil, fmt.Errorf("failed to create clock: %w", err)
	}
	registry, err := flights.NewRegistry(opts.Timeline)
	if err != nil {
		return nil, fmt.Errorf("failed to create flight registry: %w", err)
	}
	l := ledger.New(registry, clock, ledger.Options{VIPOverflow: opts.VIPOverflow})
	dir := passengers.NewDirectory(registry, l, clock)

	c := &Controller{
		clock:        clock,
		registry:     registry,
		ledger:       l,
		directory:    dir,
		injector:     fraud.NewInjector(dir, l),
		publisher:    opts.Publisher,
		wall:         opts.WallClock,
		tickInterval: opts.TickInterval,
		logger:       opts.Logger,
		handedOff:    make(map[string]bool),
	}

	for _, spec := range opts.Schedule {
		if _, err := registry.Create(spec, opts.Start); err != nil {
			return nil, fmt.Errorf("failed to seed flight %s: %w", spec.ID, err)
		}
	}
	clock.OnAdvance(c.onAdvance)

	c.logger.Info("simulation created",
		"start", opts.Start.Format(time.RFC3339),
		"step", opts.Step,
		"tick", opts.TickInterval,
		"flights", len(opts.Schedule),
		"vipOverflow", opts.VIPOverflow)
	return c, nil
}

// Run advances the clock by one step every tick interval until ctx is
// done. Paused ticks are skipped.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	ticker := c.wall.NewTicker(c.tickInterval)
	defer ticker.Stop()

	c.logger.Info("simulation loop started", "tick", c.tickInterval)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("simulation loop stopped", "ticks", c.ticks.Load())
			return nil
		case <-ticker.Chan():
			if c.paused.Load() {
				continue
			}
			now, err := c.clock.Tick()
			if err != nil {
				c.logger.Error("failed to advance clock", "error", err)
				continue
			}
			c.ticks.Add(1)
			c.logger.Debug("tick", "simulationTime", now.Format(time.RFC3339))
		}
	}
}

// Pause stops the loop from advancing the clock. Explicit advances still
// apply.
func (c *Controller) Pause() {
	c.paused.Store(true)
	c.logger.Info("simulation paused")
}

// Resume undoes Pause.
func (c *Controller) Resume() {
	c.paused.Store(false)
	c.logger.Info("simulation resumed")
}

// onAdvance runs on every clock advance, serialized by the clock.
func (c *Controller) onAdvance(now time.Time) {
	for _, change := range c.registry.AdvanceDueFlights(now) {
		c.publishChange(change)
		if change.To == flights.StatusRegistrationOpen {
			c.handOff(change.FlightID, now)
		}
	}
}

func (c *Controller) publishChange(change flights.Change) {
	c.publisher.Publish(events.StatusChanged(models.FlightStatusChanged{
		FlightID:      change.FlightID,
		From:          string(change.From),
		Status:        string(change.To),
		ScheduledTime: change.Flight.ScheduledTime,
		At:            change.At,
	}))
}

// handOff publishes the check-in manifest of a flight the first time its
// registration opens.
func (c *Controller) handOff(flightID string, now time.Time) {
	c.handoffMu.Lock()
	if c.handedOff[flightID] {
		c.handoffMu.Unlock()
		return
	}
	c.handedOff[flightID] = true
	c.handoffMu.Unlock()

	active := c.ledger.List(ledger.Filter{FlightID: flightID, Status: ledger.TicketActive})
	manifest := models.CheckInManifest{FlightID: flightID, At: now, Tickets: make([]models.ManifestEntry, 0, len(active))}
	for _, t := range active {
		manifest.Tickets = append(manifest.Tickets, models.ManifestEntry{
			TicketID:      t.ID,
			PassengerID:   t.PassengerID,
			PassengerName: t.PassengerName,
			BaggageWeight: t.BaggageWeight,
			MenuType:      string(t.MenuType),
			IsVIP:         t.IsVIP,
		})
	}
	c.publisher.Publish(events.CheckInManifest(manifest))
	c.logger.Info("check-in manifest handed off", "flightId", flightID, "tickets", len(manifest.Tickets))
}

// Now returns the simulated time.
func (c *Controller) Now() time.Time {
	return c.clock.Now()
}

// AdvanceTime moves the clock forward by delta.
func (c *Controller) AdvanceTime(delta time.Duration) (time.Time, error) {
	now, err := c.clock.Advance(delta)
	if err != nil {
		return time.Time{}, err
	}
	c.logger.Info("simulation time advanced", "by", delta, "simulationTime", now.Format(time.RFC3339))
	return now, nil
}

// AdvanceTo moves the clock forward to t.
func (c *Controller) AdvanceTo(t time.Time) (time.Time, error) {
	now, err := c.clock.AdvanceTo(t)
	if err != nil {
		return time.Time{}, err
	}
	c.logger.Info("simulation time set", "simulationTime", now.Format(time.RFC3339))
	return now, nil
}

// SetSpeed sets the simulated seconds added per tick.
func (c *Controller) SetSpeed(seconds int) error {
	minSpeed, maxSpeed := int(simclock.MinStep/time.Second), int(simclock.MaxStep/time.Second)
	if seconds < minSpeed || seconds > maxSpeed {
		return simerr.New(simerr.ErrInvalidSpeed, "speed must be between %d and %d simulated seconds per tick, got %d", minSpeed, maxSpeed, seconds)
	}
	if err := c.clock.SetStep(time.Duration(seconds) * time.Second); err != nil {
		return err
	}
	c.logger.Info("simulation speed changed", "secondsPerTick", seconds)
	return nil
}

// Status reports the loop state.
func (c *Controller) Status() Status {
	return Status{
		Now:     c.clock.Now(),
		Running: c.running.Load(),
		Paused:  c.paused.Load(),
		Step:    c.clock.Step(),
		Ticks:   c.ticks.Load(),
	}
}

// Timeline returns the lifecycle offsets in use.
func (c *Controller) Timeline() flights.Timeline {
	return c.registry.Timeline()
}

// CreateFlight adds a flight at the current simulated time.
func (c *Controller) CreateFlight(spec flights.Spec) (flights.Flight, error) {
	now := c.clock.Now()
	f, err := c.registry.Create(spec, now)
	if err != nil {
		return flights.Flight{}, err
	}
	c.publishChange(flights.Change{FlightID: f.ID, To: f.Status, At: now, Flight: f})
	c.logger.Info("flight created", "flightId", f.ID, "from", f.From, "to", f.To, "departure", f.ScheduledTime.Format(time.RFC3339))
	return f, nil
}

// DelayFlight moves a departure later.
func (c *Controller) DelayFlight(id string, newTime time.Time) (flights.Flight, error) {
	change, err := c.registry.Delay(id, newTime, c.clock.Now())
	if err != nil {
		return flights.Flight{}, err
	}
	c.publishChange(change)
	c.logger.Info("flight delayed", "flightId", id, "departure", newTime.Format(time.RFC3339), "resume", change.Flight.ResumeStatus)
	return change.Flight, nil
}

// Flights lists every flight.
func (c *Controller) Flights() []flights.Flight {
	return c.registry.List()
}

// Flight returns one flight.
func (c *Controller) Flight(id string) (flights.Flight, error) {
	return c.registry.Get(id)
}

// Seats returns a flight's seat accounting.
func (c *Controller) Seats(flightID string) (ledger.Seats, error) {
	return c.ledger.Seats(flightID)
}

// BuyTicket purchases a ticket and, when the passenger is known to the
// directory, binds it to them. A known passenger that already holds an
// active ticket cannot buy another; the ledger checks this atomically with
// the seat allocation.
func (c *Controller) BuyTicket(req ledger.PurchaseRequest) (ledger.Ticket, error) {
	p, err := c.directory.Get(req.PassengerID)
	known := err == nil
	if known {
		req.Exclusive = true
		if req.PassengerName == "" {
			req.PassengerName = p.Name
		}
	}

	t, err := c.ledger.Purchase(req)
	if err != nil {
		return ledger.Ticket{}, err
	}

	if known {
		if _, err := c.directory.AttachTicket(p.ID, t); err != nil {
			if _, rerr := c.ledger.Refund(t.ID, t.PassengerID); rerr != nil {
				c.logger.Error("failed to roll back ticket", "ticketId", t.ID, "error", rerr)
				return ledger.Ticket{}, errors.Join(err, fmt.Errorf("failed to roll back ticket %s: %w", t.ID, rerr))
			}
			return ledger.Ticket{}, err
		}
	}

	c.logger.Info("ticket purchased", "ticketId", t.ID, "flightId", t.FlightID, "passengerId", t.PassengerID, "pool", t.Pool)
	return t, nil
}

// RefundTicket returns a ticket and releases its seat.
func (c *Controller) RefundTicket(ticketID, passengerID string) (ledger.Ticket, error) {
	t, err := c.ledger.Refund(ticketID, passengerID)
	if err != nil {
		return ledger.Ticket{}, err
	}
	if _, err := c.directory.DetachTicket(passengerID, ticketID); err != nil && !errors.Is(err, simerr.ErrPassengerNotFound) {
		c.logger.Warn("failed to detach refunded ticket", "ticketId", ticketID, "error", err)
	}
	c.logger.Info("ticket refunded", "ticketId", t.ID, "flightId", t.FlightID, "passengerId", t.PassengerID)
	return t, nil
}

// Tickets lists ledger tickets.
func (c *Controller) Tickets(filter ledger.Filter) []ledger.Ticket {
	return c.ledger.List(filter)
}

// Ticket returns one ledger ticket.
func (c *Controller) Ticket(id string) (ledger.Ticket, error) {
	return c.ledger.Get(id)
}

// CreatePassenger records a passenger.
func (c *Controller) CreatePassenger(req passengers.CreateRequest) (passengers.Passenger, error) {
	p, err := c.directory.Create(req)
	if err != nil {
		return passengers.Passenger{}, err
	}
	c.logger.Info("passenger created", "passengerId", p.ID, "name", p.Name, "flightId", p.FlightID)
	return p, nil
}

// CreateBulkPassengers records count passengers. Passengers created before
// a failure are returned with the error.
func (c *Controller) CreateBulkPassengers(count int, req passengers.CreateRequest) ([]passengers.Passenger, error) {
	created, err := c.directory.CreateBulk(count, req)
	if err != nil {
		c.logger.Warn("bulk passenger creation stopped", "requested", count, "created", len(created), "error", err)
		return created, err
	}
	c.logger.Info("passengers created", "count", len(created), "flightId", req.FlightID)
	return created, nil
}

// ToggleVIP flips a passenger's VIP flag.
func (c *Controller) ToggleVIP(passengerID string) (passengers.Passenger, error) {
	return c.directory.ToggleVIP(passengerID)
}

// FakeTicket attaches a forged ticket to a passenger.
func (c *Controller) FakeTicket(passengerID string) (passengers.Passenger, ledger.Ticket, error) {
	p, forged, err := c.injector.FakeTicket(passengerID)
	if err != nil {
		return passengers.Passenger{}, ledger.Ticket{}, err
	}
	c.logger.Info("forged ticket attached", "passengerId", passengerID, "genuine", p.TicketID, "forged", forged.ID)
	return p, forged, nil
}

// RegisterAll checks in a flight's passengers.
func (c *Controller) RegisterAll(flightID string) ([]passengers.RegistrationResult, error) {
	results, err := c.directory.RegisterAll(flightID)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	c.logger.Info("registration run", "flightId", flightID, "passengers", len(results), "failed", failed, "error", err)
	return results, err
}

// Passengers lists passengers, optionally for one flight.
func (c *Controller) Passengers(flightID string) []passengers.Passenger {
	return c.directory.List(flightID)
}

// Passenger returns one passenger.
func (c *Controller) Passenger(id string) (passengers.Passenger, error) {
	return c.directory.Get(id)
}

// Reconcile compares a passenger's genuine ticket with any forged copy.
func (c *Controller) Reconcile(passengerID string) (Reconciliation, error) {
	p, err := c.directory.Get(passengerID)
	if err != nil {
		return Reconciliation{}, err
	}

	r := Reconciliation{Passenger: p, Forged: p.ForgedTicket}
	if p.TicketID != "" {
		if t, err := c.ledger.Get(p.TicketID); err == nil {
			r.Genuine = &t
		}
	}
	if r.Genuine != nil && r.Forged != nil {
		r.Discrepancies = fraud.Diff(*r.Genuine, *r.Forged)
	}
	return r, nil
}
