// Package ledger is the authoritative record of tickets and seat counts.
package ledger

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Rus1K7/Airport/internal/flights"
	"github.com/Rus1K7/Airport/internal/simerr"
	"github.com/google/uuid"
)

// FlightViewer gives atomic read access to a flight.
type FlightViewer interface {
	View(id string, fn func(f flights.Flight) error) error
}

// Clock supplies the simulated purchase and refund time.
type Clock interface {
	Now() time.Time
}

// Options configures seat allocation.
type Options struct {
	// VIPOverflow lets VIP buyers take general seats once the VIP
	// sub-pool is exhausted.
	VIPOverflow bool
}

// PurchaseRequest carries the fields of a ticket purchase.
type PurchaseRequest struct {
	FlightID      string
	PassengerID   string
	PassengerName string
	MenuType      string
	BaggageWeight int
	IsVIP         bool
	// Exclusive rejects the purchase while the passenger holds another
	// active ticket on any flight.
	Exclusive bool
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	PassengerID string
	FlightID    string
	Status      TicketStatus
}

// Seats summarizes one flight's seat accounting.
type Seats struct {
	FlightID         string `json:"flightId"`
	Capacity         int    `json:"capacity"`
	VIPSeats         int    `json:"vipSeats"`
	VIPAvailable     int    `json:"vipAvailable"`
	GeneralAvailable int    `json:"generalAvailable"`
	Available        int    `json:"available"`
	Active           int    `json:"active"`
}

// account is the seat count of one flight. Its capacity is fixed when the
// first ticket is sold.
type account struct {
	mu          sync.Mutex
	capacity    int
	vipSeats    int
	vipUsed     int
	generalUsed int
}

func (a *account) generalSeats() int {
	return a.capacity - a.vipSeats
}

func (a *account) take(vip, overflow bool) (Pool, bool) {
	if vip && a.vipSeats > 0 {
		if a.vipUsed < a.vipSeats {
			a.vipUsed++
			return PoolVIP, true
		}
		if !overflow {
			return "", false
		}
	}
	if a.generalUsed < a.generalSeats() {
		a.generalUsed++
		return PoolGeneral, true
	}
	return "", false
}

func (a *account) release(p Pool) {
	switch p {
	case PoolVIP:
		if a.vipUsed > 0 {
			a.vipUsed--
		}
	default:
		if a.generalUsed > 0 {
			a.generalUsed--
		}
	}
}

func (a *account) seats(flightID string) Seats {
	vipFree := a.vipSeats - a.vipUsed
	generalFree := a.generalSeats() - a.generalUsed
	return Seats{
		FlightID:         flightID,
		Capacity:         a.capacity,
		VIPSeats:         a.vipSeats,
		VIPAvailable:     vipFree,
		GeneralAvailable: generalFree,
		Available:        vipFree + generalFree,
		Active:           a.vipUsed + a.generalUsed,
	}
}

// Ledger issues and refunds tickets. Seat mutations on one flight are
// serialized by that flight's account lock and happen while the flight's
// status is pinned by the registry; different flights proceed in parallel.
type Ledger struct {
	flights FlightViewer
	clock   Clock
	opts    Options

	mu       sync.RWMutex
	accounts map[string]*account
	tickets  map[string]*Ticket
}

// New creates an empty ledger.
func New(fv FlightViewer, clock Clock, opts Options) *Ledger {
	return &Ledger{
		flights:  fv,
		clock:    clock,
		opts:     opts,
		accounts: make(map[string]*account),
		tickets:  make(map[string]*Ticket),
	}
}

// Sellable reports whether seats may be sold on f.
func Sellable(f flights.Flight) bool {
	switch f.EffectiveStatus() {
	case flights.StatusScheduled, flights.StatusRegistrationOpen:
		return true
	}
	return false
}

// Purchase issues an active ticket and consumes one seat.
func (l *Ledger) Purchase(req PurchaseRequest) (Ticket, error) {
	menu, err := ParseMenuType(req.MenuType)
	if err != nil {
		return Ticket{}, err
	}
	if err := ValidateBaggage(req.BaggageWeight); err != nil {
		return Ticket{}, err
	}
	if strings.TrimSpace(req.PassengerID) == "" {
		return Ticket{}, simerr.New(simerr.ErrInvalidPassenger, "passenger id is required")
	}

	var issued Ticket
	err = l.flights.View(req.FlightID, func(f flights.Flight) error {
		if !Sellable(f) {
			return simerr.New(simerr.ErrRegistrationClosed, "flight %s is %s, tickets are not on sale", f.ID, f.Status)
		}

		acct := l.account(f)
		acct.mu.Lock()
		defer acct.mu.Unlock()

		l.mu.Lock()
		defer l.mu.Unlock()

		if req.Exclusive {
			if held, ok := l.activeTicketLocked(req.PassengerID); ok {
				return simerr.New(simerr.ErrAlreadyTicketed, "passenger %s already holds ticket %s", req.PassengerID, held.ID)
			}
		}

		pool, ok := acct.take(req.IsVIP, l.opts.VIPOverflow)
		if !ok {
			return simerr.New(simerr.ErrNoCapacity, "no seats left on flight %s", f.ID)
		}

		t := &Ticket{
			ID:            uuid.New().String(),
			PassengerID:   req.PassengerID,
			PassengerName: req.PassengerName,
			FlightID:      f.ID,
			PurchasedAt:   l.clock.Now(),
			BaggageWeight: req.BaggageWeight,
			MenuType:      menu,
			IsVIP:         req.IsVIP,
			Pool:          pool,
			Status:        TicketActive,
		}

		l.tickets[t.ID] = t
		issued = *t
		return nil
	})
	if err != nil {
		return Ticket{}, err
	}
	return issued, nil
}

// Refund returns an active ticket and releases its seat to the pool it
// came from.
func (l *Ledger) Refund(ticketID, passengerID string) (Ticket, error) {
	l.mu.RLock()
	t, ok := l.tickets[ticketID]
	var owner, flightID string
	if ok {
		owner, flightID = t.PassengerID, t.FlightID
	}
	l.mu.RUnlock()

	if !ok {
		return Ticket{}, simerr.New(simerr.ErrTicketNotFound, "ticket %s not found", ticketID)
	}
	if owner != passengerID {
		return Ticket{}, simerr.New(simerr.ErrNotOwner, "ticket %s does not belong to passenger %s", ticketID, passengerID)
	}

	var returned Ticket
	err := l.flights.View(flightID, func(f flights.Flight) error {
		acct := l.account(f)
		acct.mu.Lock()
		defer acct.mu.Unlock()

		l.mu.Lock()
		defer l.mu.Unlock()

		if t.Status == TicketReturned {
			return simerr.New(simerr.ErrAlreadyReturned, "ticket %s was already returned", ticketID)
		}
		if f.Status == flights.StatusDeparted || f.Status == flights.StatusArrived {
			return simerr.New(simerr.ErrFlightDeparted, "flight %s is %s, ticket %s cannot be returned", f.ID, f.Status, ticketID)
		}

		t.Status = TicketReturned
		t.ReturnedAt = l.clock.Now()
		acct.release(t.Pool)

		returned = *t
		return nil
	})
	if err != nil {
		return Ticket{}, err
	}
	return returned, nil
}

// Get returns one ticket.
func (l *Ledger) Get(ticketID string) (Ticket, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.tickets[ticketID]
	if !ok {
		return Ticket{}, simerr.New(simerr.ErrTicketNotFound, "ticket %s not found", ticketID)
	}
	return *t, nil
}

// List returns tickets matching filter ordered by purchase time.
func (l *Ledger) List(filter Filter) []Ticket {
	l.mu.RLock()
	out := make([]Ticket, 0, len(l.tickets))
	for _, t := range l.tickets {
		if filter.PassengerID != "" && t.PassengerID != filter.PassengerID {
			continue
		}
		if filter.FlightID != "" && t.FlightID != filter.FlightID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].PurchasedAt.Equal(out[j].PurchasedAt) {
			return out[i].PurchasedAt.Before(out[j].PurchasedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// activeTicketLocked finds an active ticket of passengerID. l.mu must be
// held.
func (l *Ledger) activeTicketLocked(passengerID string) (*Ticket, bool) {
	for _, t := range l.tickets {
		if t.PassengerID == passengerID && t.Status == TicketActive {
			return t, true
		}
	}
	return nil, false
}

// Seats returns the seat accounting of a flight.
func (l *Ledger) Seats(flightID string) (Seats, error) {
	var s Seats
	err := l.flights.View(flightID, func(f flights.Flight) error {
		acct := l.account(f)
		acct.mu.Lock()
		s = acct.seats(f.ID)
		acct.mu.Unlock()
		return nil
	})
	return s, err
}

func (l *Ledger) account(f flights.Flight) *account {
	l.mu.RLock()
	acct, ok := l.accounts[f.ID]
	l.mu.RUnlock()
	if ok {
		return acct
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if acct, ok = l.accounts[f.ID]; ok {
		return acct
	}
	acct = &account{capacity: f.Capacity, vipSeats: f.VIPSeats}
	l.accounts[f.ID] = acct
	return acct
}
