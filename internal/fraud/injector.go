// Package fraud manufactures forged tickets for detection scenarios.
package fraud

import (
	"strconv"

	"github.com/Rus1K7/Airport/internal/ledger"
	"github.com/Rus1K7/Airport/internal/passengers"
	"github.com/Rus1K7/Airport/internal/simerr"
	"github.com/google/uuid"
)

// Directory is the part of the passenger directory the injector needs.
type Directory interface {
	Get(id string) (passengers.Passenger, error)
	AttachForgery(id string, forged ledger.Ticket) (passengers.Passenger, error)
}

// TicketReader looks up genuine tickets.
type TicketReader interface {
	Get(ticketID string) (ledger.Ticket, error)
}

// Injector attaches forged tickets to passengers. It never writes to the
// ledger.
type Injector struct {
	dir     Directory
	tickets TicketReader
}

// NewInjector creates an injector over dir and tickets.
func NewInjector(dir Directory, tickets TicketReader) *Injector {
	return &Injector{dir: dir, tickets: tickets}
}

// Forge derives a forged copy of genuine: a fresh id, a baggage weight
// shifted by 7 kg modulo 21 and the next menu type. The weight always
// differs from the original and stays within the allowance.
func Forge(genuine ledger.Ticket) ledger.Ticket {
	forged := genuine
	forged.ID = uuid.New().String()
	forged.BaggageWeight = (genuine.BaggageWeight + 7) % (ledger.MaxBaggage + 1)
	forged.MenuType = genuine.MenuType.Next()
	forged.Forged = true
	return forged
}

// FakeTicket forges the passenger's genuine ticket and attaches the copy
// as the passenger's forged ticket.
func (i *Injector) FakeTicket(passengerID string) (passengers.Passenger, ledger.Ticket, error) {
	p, err := i.dir.Get(passengerID)
	if err != nil {
		return passengers.Passenger{}, ledger.Ticket{}, err
	}
	if p.TicketID == "" {
		return passengers.Passenger{}, ledger.Ticket{}, simerr.New(simerr.ErrNoGenuineTicket, "passenger %s holds no ticket to forge", passengerID)
	}

	genuine, err := i.tickets.Get(p.TicketID)
	if err != nil {
		return passengers.Passenger{}, ledger.Ticket{}, simerr.New(simerr.ErrNoGenuineTicket, "ticket %s of passenger %s is unknown", p.TicketID, passengerID)
	}
	if !genuine.Active() {
		return passengers.Passenger{}, ledger.Ticket{}, simerr.New(simerr.ErrNoGenuineTicket, "ticket %s of passenger %s was returned", genuine.ID, passengerID)
	}

	forged := Forge(genuine)
	p, err = i.dir.AttachForgery(passengerID, forged)
	if err != nil {
		return passengers.Passenger{}, ledger.Ticket{}, err
	}
	return p, forged, nil
}

// Discrepancy is one field on which a forged ticket departs from the
// genuine record.
type Discrepancy struct {
	Field   string `json:"field"`
	Genuine string `json:"genuine"`
	Forged  string `json:"forged"`
}

// Diff lists the fields on which forged differs from genuine.
func Diff(genuine, forged ledger.Ticket) []Discrepancy {
	var out []Discrepancy
	add := func(field, g, f string) {
		if g != f {
			out = append(out, Discrepancy{Field: field, Genuine: g, Forged: f})
		}
	}

	add("ticketId", genuine.ID, forged.ID)
	add("passengerId", genuine.PassengerID, forged.PassengerID)
	add("flightId", genuine.FlightID, forged.FlightID)
	add("baggageWeight", strconv.Itoa(genuine.BaggageWeight), strconv.Itoa(forged.BaggageWeight))
	add("menuType", string(genuine.MenuType), string(forged.MenuType))
	add("isVIP", strconv.FormatBool(genuine.IsVIP), strconv.FormatBool(forged.IsVIP))
	add("status", string(genuine.Status), string(forged.Status))
	return out
}
