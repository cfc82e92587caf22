package models

import "time"

// Ticket status values as they appear on the wire.
const (
	TicketStatusActive   = "active"
	TicketStatusReturned = "returned"
)

// Ticket is the public view of a ticket.
type Ticket struct {
	TicketID            string    `json:"ticketId"`
	PassengerName       string    `json:"passengerName"`
	PassengerID         string    `json:"passengerId"`
	FlightID            string    `json:"flightId"`
	FromCity            string    `json:"fromCity"`
	ToCity              string    `json:"toCity"`
	FlightDepartureTime time.Time `json:"flightDepartureTime"`
	Status              string    `json:"status"`
	MenuType            string    `json:"menuType"`
	BaggageWeight       int       `json:"baggageWeight"`
	IsVIP               bool      `json:"isVIP"`
	IsFake              bool      `json:"isFake"`
	CreatedAt           time.Time `json:"createdAt"`
}

// BuyTicketRequest is the body of POST /v1/tickets/buy.
type BuyTicketRequest struct {
	PassengerName string `json:"passengerName"`
	PassengerID   string `json:"passengerId"`
	FlightID      string `json:"flightId"`
	MenuType      string `json:"menuType"`
	BaggageWeight int    `json:"baggageWeight"`
	IsVIP         bool   `json:"isVIP"`
}
