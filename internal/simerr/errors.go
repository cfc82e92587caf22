// Package simerr classifies the domain failures of the simulation engine.
package simerr

import (
	"errors"
	"fmt"
)

// Kind is the coarse class of a domain failure.
type Kind string

const (
	KindNotFound          Kind = "NotFound"
	KindInvalidState      Kind = "InvalidState"
	KindCapacityExceeded  Kind = "CapacityExceeded"
	KindValidation        Kind = "ValidationError"
	KindOwnershipMismatch Kind = "OwnershipMismatch"
	KindInternal          Kind = "Internal"
)

// Error is a classified domain failure. Two errors match under errors.Is
// when their codes are equal, so wrapped instances still compare against
// the package sentinels.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func define(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrFlightNotFound    = define(KindNotFound, "FlightNotFound", "flight not found")
	ErrTicketNotFound    = define(KindNotFound, "TicketNotFound", "ticket not found")
	ErrPassengerNotFound = define(KindNotFound, "PassengerNotFound", "passenger not found")

	ErrRegistrationClosed = define(KindInvalidState, "RegistrationClosed", "registration is closed for this flight")
	ErrAlreadyReturned    = define(KindInvalidState, "AlreadyReturned", "ticket already returned")
	ErrInvalidTransition  = define(KindInvalidState, "InvalidTransition", "transition not allowed in current flight state")
	ErrNoGenuineTicket    = define(KindInvalidState, "NoGenuineTicket", "passenger holds no genuine ticket")
	ErrAlreadyTicketed    = define(KindInvalidState, "AlreadyTicketed", "passenger already holds an active ticket")
	ErrFlightDeparted     = define(KindInvalidState, "FlightDeparted", "flight has already departed")

	ErrNoCapacity = define(KindCapacityExceeded, "NoCapacity", "no seats available")

	ErrInvalidBaggage   = define(KindValidation, "InvalidBaggage", "baggage weight must be between 0 and 20 kg")
	ErrInvalidMenu      = define(KindValidation, "InvalidMenu", "unknown menu type")
	ErrInvalidAdvance   = define(KindValidation, "InvalidAdvance", "time can only move forward")
	ErrInvalidFlight    = define(KindValidation, "InvalidFlight", "invalid flight definition")
	ErrInvalidCount     = define(KindValidation, "InvalidCount", "invalid passenger count")
	ErrInvalidPassenger = define(KindValidation, "InvalidPassenger", "invalid passenger")
	ErrInvalidSpeed     = define(KindValidation, "InvalidSpeed", "speed must be between 1 and 3600 simulated seconds per tick")

	ErrNotOwner = define(KindOwnershipMismatch, "NotOwner", "ticket belongs to another passenger")
)

// New derives an error from base with a more specific message. The result
// keeps the kind and code of base.
func New(base *Error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    base.Kind,
		Code:    base.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of the first classified error in err's chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first classified error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if err == nil {
		return ""
	}
	return "Internal"
}
