package database

import (
	"time"

	"github.com/google/uuid"
)

// StatusChange is one row of flight_status_history.
type StatusChange struct {
	ID            uuid.UUID `json:"id"`
	FlightID      string    `json:"flightId"`
	FromStatus    string    `json:"fromStatus"`
	ToStatus      string    `json:"toStatus"`
	ScheduledTime time.Time `json:"scheduledTime"`
	SimulatedAt   time.Time `json:"simulatedAt"`
	RecordedAt    time.Time `json:"recordedAt"`
}

// CheckInManifest is one row of checkin_manifests. Tickets holds the
// manifest entries as JSON.
type CheckInManifest struct {
	ID          uuid.UUID `json:"id"`
	FlightID    string    `json:"flightId"`
	SimulatedAt time.Time `json:"simulatedAt"`
	TicketCount int       `json:"ticketCount"`
	Tickets     []byte    `json:"tickets"`
	RecordedAt  time.Time `json:"recordedAt"`
}
