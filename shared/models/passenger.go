package models

import "time"

// Passenger is the public view of a passenger.
type Passenger struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	FlightID      string    `json:"flightId"`
	BaggageWeight int       `json:"baggageWeight"`
	MenuType      string    `json:"menuType"`
	IsVIP         bool      `json:"isVIP"`
	State         string    `json:"state"`
	Ticket        *Ticket   `json:"ticket,omitempty"`
	ForgedTicket  *Ticket   `json:"forgedTicket,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CreatePassengerRequest creates one passenger or, with Count, several.
type CreatePassengerRequest struct {
	Name          string `json:"name"`
	FlightID      string `json:"flightId"`
	BaggageWeight int    `json:"baggageWeight"`
	MenuType      string `json:"menuType"`
	IsVIP         bool   `json:"isVIP"`
	Count         int    `json:"count,omitempty"`
}

// BulkResult reports a bulk creation that may have stopped early.
type BulkResult struct {
	Requested  int         `json:"requested"`
	Created    int         `json:"created"`
	Passengers []Passenger `json:"passengers"`
	Error      string      `json:"error,omitempty"`
	Code       string      `json:"code,omitempty"`
}

// RegistrationResult is the check-in outcome for one passenger.
type RegistrationResult struct {
	PassengerID string `json:"passengerId"`
	Name        string `json:"name"`
	State       string `json:"state"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	Code        string `json:"code,omitempty"`
}

// RegistrationReport is the response of a flight-wide check-in.
type RegistrationReport struct {
	FlightID  string               `json:"flightId"`
	CheckedIn int                  `json:"checkedIn"`
	Failed    int                  `json:"failed"`
	Results   []RegistrationResult `json:"results"`
}

// Discrepancy is a field where a forged ticket diverges from the genuine one.
type Discrepancy struct {
	Field   string `json:"field"`
	Genuine string `json:"genuine"`
	Forged  string `json:"forged"`
}

// Reconciliation compares a passenger's genuine and forged tickets.
type Reconciliation struct {
	PassengerID   string        `json:"passengerId"`
	Genuine       *Ticket       `json:"genuine,omitempty"`
	Forged        *Ticket       `json:"forged,omitempty"`
	Forgery       bool          `json:"forgery"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}
