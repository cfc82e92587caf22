// Package passengers tracks passengers, their tickets and check-in state.
package passengers

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Rus1K7/Airport/internal/flights"
	"github.com/Rus1K7/Airport/internal/ledger"
	"github.com/Rus1K7/Airport/internal/simerr"
	"github.com/google/uuid"
)

// State is the passenger's progress through the airport.
type State string

const (
	StateCameToAirport  State = "CameToAirport"
	StateGotTicket      State = "GotTicket"
	StateCheckedIn      State = "CheckedIn"
	StateTicketReturned State = "TicketReturned"
)

// MaxBulk caps a single bulk creation.
const MaxBulk = 500

// Names is used for passengers created without a name.
var Names = []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry"}

// Passenger is a snapshot of a directory record. TicketID references the
// genuine ledger ticket; ForgedTicket is a detached copy and never affects
// the ledger.
type Passenger struct {
	ID            string
	Name          string
	FlightID      string
	BaggageWeight int
	MenuType      ledger.MenuType
	IsVIP         bool
	State         State
	TicketID      string
	ForgedTicket  *ledger.Ticket
	CreatedAt     time.Time
	CheckedInAt   time.Time

	seq int
}

func (p *Passenger) clone() Passenger {
	c := *p
	if p.ForgedTicket != nil {
		forged := *p.ForgedTicket
		c.ForgedTicket = &forged
	}
	return c
}

// CreateRequest describes a new passenger. Empty name and menu type are
// filled in from rotation.
type CreateRequest struct {
	Name          string
	FlightID      string
	BaggageWeight int
	MenuType      string
	IsVIP         bool
}

// RegistrationResult is the outcome of checking in one passenger.
type RegistrationResult struct {
	PassengerID string
	Name        string
	State       State
	Err         error
}

// FlightViewer gives atomic read access to a flight.
type FlightViewer interface {
	View(id string, fn func(f flights.Flight) error) error
}

// TicketReader looks up genuine tickets.
type TicketReader interface {
	Get(ticketID string) (ledger.Ticket, error)
}

// Clock supplies simulated time.
type Clock interface {
	Now() time.Time
}

// Directory owns all passenger records.
type Directory struct {
	flights FlightViewer
	tickets TicketReader
	clock   Clock

	mu         sync.RWMutex
	passengers map[string]*Passenger
	created    int
}

// NewDirectory creates an empty directory.
func NewDirectory(fv FlightViewer, tickets TicketReader, clock Clock) *Directory {
	return &Directory{
		flights:    fv,
		tickets:    tickets,
		clock:      clock,
		passengers: make(map[string]*Passenger),
	}
}

// Create records a passenger headed for a flight. It does not buy a ticket.
func (d *Directory) Create(req CreateRequest) (Passenger, error) {
	if err := ledger.ValidateBaggage(req.BaggageWeight); err != nil {
		return Passenger{}, err
	}
	var menu ledger.MenuType
	if strings.TrimSpace(req.MenuType) != "" {
		m, err := ledger.ParseMenuType(req.MenuType)
		if err != nil {
			return Passenger{}, err
		}
		menu = m
	}

	err := d.flights.View(req.FlightID, func(f flights.Flight) error {
		if f.Status == flights.StatusDeparted || f.Status == flights.StatusArrived {
			return simerr.New(simerr.ErrFlightDeparted, "flight %s is %s and takes no more passengers", f.ID, f.Status)
		}
		return nil
	})
	if err != nil {
		return Passenger{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.created
	d.created++

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = Names[n%len(Names)]
	}
	if menu == "" {
		menu = ledger.MenuTypes[n%len(ledger.MenuTypes)]
	}

	p := &Passenger{
		ID:            uuid.New().String(),
		Name:          name,
		FlightID:      req.FlightID,
		BaggageWeight: req.BaggageWeight,
		MenuType:      menu,
		IsVIP:         req.IsVIP,
		State:         StateCameToAirport,
		CreatedAt:     d.clock.Now(),
		seq:           n,
	}
	d.passengers[p.ID] = p
	return p.clone(), nil
}

// CreateBulk creates count passengers from the same template. It stops at
// the first failure and returns the passengers created so far; those are
// kept.
func (d *Directory) CreateBulk(count int, req CreateRequest) ([]Passenger, error) {
	if count < 1 || count > MaxBulk {
		return nil, simerr.New(simerr.ErrInvalidCount, "count must be between 1 and %d, got %d", MaxBulk, count)
	}

	created := make([]Passenger, 0, count)
	base := strings.TrimSpace(req.Name)
	for i := 0; i < count; i++ {
		item := req
		if base != "" && count > 1 {
			item.Name = fmt.Sprintf("%s %d", base, i+1)
		}
		p, err := d.Create(item)
		if err != nil {
			return created, fmt.Errorf("created %d of %d passengers: %w", len(created), count, err)
		}
		created = append(created, p)
	}
	return created, nil
}

// Get returns one passenger.
func (d *Directory) Get(id string) (Passenger, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.passengers[id]
	if !ok {
		return Passenger{}, simerr.New(simerr.ErrPassengerNotFound, "passenger %s not found", id)
	}
	return p.clone(), nil
}

// List returns passengers in creation order, optionally only those
// assigned to flightID.
func (d *Directory) List(flightID string) []Passenger {
	d.mu.RLock()
	out := make([]Passenger, 0, len(d.passengers))
	for _, p := range d.passengers {
		if flightID != "" && p.FlightID != flightID {
			continue
		}
		out = append(out, p.clone())
	}
	d.mu.RUnlock()

	sortPassengers(out)
	return out
}

// ToggleVIP flips the VIP flag.
func (d *Directory) ToggleVIP(id string) (Passenger, error) {
	return d.update(id, func(p *Passenger) error {
		p.IsVIP = !p.IsVIP
		return nil
	})
}

// AttachTicket binds a genuine ticket to the passenger. The ticket's
// attributes become the passenger's.
func (d *Directory) AttachTicket(id string, t ledger.Ticket) (Passenger, error) {
	return d.update(id, func(p *Passenger) error {
		if p.TicketID != "" && p.TicketID != t.ID {
			if current, err := d.tickets.Get(p.TicketID); err == nil && current.Active() {
				return simerr.New(simerr.ErrAlreadyTicketed, "passenger %s already holds ticket %s", p.ID, p.TicketID)
			}
		}
		p.TicketID = t.ID
		p.FlightID = t.FlightID
		p.BaggageWeight = t.BaggageWeight
		p.MenuType = t.MenuType
		p.IsVIP = t.IsVIP
		p.State = StateGotTicket
		return nil
	})
}

// DetachTicket marks the passenger's genuine ticket as returned. A ticket
// the passenger does not hold is ignored.
func (d *Directory) DetachTicket(id, ticketID string) (Passenger, error) {
	return d.update(id, func(p *Passenger) error {
		if p.TicketID == ticketID {
			p.State = StateTicketReturned
		}
		return nil
	})
}

// AttachForgery stores a forged ticket next to the genuine one.
func (d *Directory) AttachForgery(id string, forged ledger.Ticket) (Passenger, error) {
	return d.update(id, func(p *Passenger) error {
		p.ForgedTicket = &forged
		return nil
	})
}

// RegisterAll checks in every passenger assigned to flightID. The flight
// cannot change state while registration runs. Outside RegistrationOpen
// every passenger fails and the call returns ErrRegistrationClosed.
func (d *Directory) RegisterAll(flightID string) ([]RegistrationResult, error) {
	var (
		results []RegistrationResult
		closed  error
	)

	err := d.flights.View(flightID, func(f flights.Flight) error {
		if f.Status != flights.StatusRegistrationOpen {
			closed = simerr.New(simerr.ErrRegistrationClosed, "flight %s is %s, registration is not open", f.ID, f.Status)
		}

		d.mu.Lock()
		defer d.mu.Unlock()

		assigned := make([]*Passenger, 0)
		for _, p := range d.passengers {
			if p.FlightID == flightID {
				assigned = append(assigned, p)
			}
		}
		sort.Slice(assigned, func(i, j int) bool { return less(assigned[i], assigned[j]) })

		now := d.clock.Now()
		for _, p := range assigned {
			res := RegistrationResult{PassengerID: p.ID, Name: p.Name}
			if closed != nil {
				res.Err = closed
			} else {
				res.Err = d.checkIn(p, flightID, now)
			}
			res.State = p.State
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, closed
}

func (d *Directory) checkIn(p *Passenger, flightID string, now time.Time) error {
	if p.State == StateCheckedIn {
		return nil
	}
	if p.TicketID == "" {
		return simerr.New(simerr.ErrNoGenuineTicket, "passenger %s has no ticket", p.ID)
	}
	t, err := d.tickets.Get(p.TicketID)
	if err != nil || !t.Active() || t.FlightID != flightID {
		return simerr.New(simerr.ErrNoGenuineTicket, "passenger %s has no active ticket for flight %s", p.ID, flightID)
	}
	p.State = StateCheckedIn
	p.CheckedInAt = now
	return nil
}

func (d *Directory) update(id string, fn func(p *Passenger) error) (Passenger, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.passengers[id]
	if !ok {
		return Passenger{}, simerr.New(simerr.ErrPassengerNotFound, "passenger %s not found", id)
	}
	if err := fn(p); err != nil {
		return Passenger{}, err
	}
	return p.clone(), nil
}

func less(a, b *Passenger) bool {
	return a.seq < b.seq
}

func sortPassengers(ps []Passenger) {
	sort.Slice(ps, func(i, j int) bool { return less(&ps[i], &ps[j]) })
}
