package models

import "time"

// FlightLifecycleWorkflowName is the worker registration name of the lifecycle workflow.
const FlightLifecycleWorkflowName = "FlightLifecycleWorkflow"

// DefaultTaskQueue is shared by the engine and the worker.
const DefaultTaskQueue = "airport-simulation-queue"

// Signals for workflow communication.
const (
	SignalFlightStatusChanged = "flight_status_changed"
	SignalCheckInManifest     = "checkin_manifest"
)

// Queries for workflow state.
const (
	QueryGetHistory = "get_history"
)

// FlightLifecycleInput starts the lifecycle workflow of one flight.
type FlightLifecycleInput struct {
	FlightID string `json:"flightId"`
}

// FlightStatusChanged is published on every applied transition.
type FlightStatusChanged struct {
	FlightID      string    `json:"flightId"`
	From          string    `json:"from,omitempty"`
	Status        string    `json:"status"`
	ScheduledTime time.Time `json:"scheduledTime"`
	At            time.Time `json:"at"`
}

// ManifestEntry is one ticket handed off to check-in.
type ManifestEntry struct {
	TicketID      string `json:"ticketId"`
	PassengerID   string `json:"passengerId"`
	PassengerName string `json:"passengerName"`
	BaggageWeight int    `json:"baggageWeight"`
	MenuType      string `json:"menuType"`
	IsVIP         bool   `json:"isVIP"`
}

// CheckInManifest lists the active genuine tickets of a flight when its
// registration opens.
type CheckInManifest struct {
	FlightID string          `json:"flightId"`
	At       time.Time       `json:"at"`
	Tickets  []ManifestEntry `json:"tickets"`
}

// FlightRecord is what the worker has already persisted for a flight.
type FlightRecord struct {
	FlightID       string                `json:"flightId"`
	Statuses       []FlightStatusChanged `json:"statuses"`
	ManifestStored bool                  `json:"manifestStored"`
}

// FlightHistory is the lifecycle workflow's view of a flight.
type FlightHistory struct {
	FlightID  string                `json:"flightId"`
	Statuses  []FlightStatusChanged `json:"statuses"`
	Manifests int                   `json:"manifests"`
	Restored  int                   `json:"restored"`
	Completed bool                  `json:"completed"`
}
