package flights

import (
	"time"

	"github.com/Rus1K7/Airport/internal/simerr"
)

// Status is a control state of the flight lifecycle.
type Status string

const (
	StatusScheduled          Status = "Scheduled"
	StatusRegistrationOpen   Status = "RegistrationOpen"
	StatusRegistrationClosed Status = "RegistrationClosed"
	StatusBoarding           Status = "Boarding"
	StatusDeparted           Status = "Departed"
	StatusArrived            Status = "Arrived"
	StatusDelayed            Status = "Delayed"

	// StatusPlanningArrive is a board label derived from Departed and the
	// arrival estimate. No flight is ever stored in this state.
	StatusPlanningArrive Status = "PlanningArrive"
)

// Timeline holds the offsets that place each lifecycle stage relative to
// the scheduled departure.
type Timeline struct {
	RegistrationOpen  time.Duration `yaml:"registration_open"`
	RegistrationClose time.Duration `yaml:"registration_close"`
	Boarding          time.Duration `yaml:"boarding"`
	FlightDuration    time.Duration `yaml:"flight_duration"`
	ArrivalForecast   time.Duration `yaml:"arrival_forecast"`
}

// DefaultTimeline opens registration 50 minutes before departure, closes it
// at 25 minutes and starts boarding at 20.
func DefaultTimeline() Timeline {
	return Timeline{
		RegistrationOpen:  50 * time.Minute,
		RegistrationClose: 25 * time.Minute,
		Boarding:          20 * time.Minute,
		FlightDuration:    2 * time.Hour,
		ArrivalForecast:   30 * time.Minute,
	}
}

// Validate checks that the stages are strictly ordered.
func (t Timeline) Validate() error {
	if !(t.RegistrationOpen > t.RegistrationClose && t.RegistrationClose > t.Boarding && t.Boarding > 0) {
		return simerr.New(simerr.ErrInvalidFlight,
			"timeline must satisfy registration_open > registration_close > boarding > 0 (got %s, %s, %s)",
			t.RegistrationOpen, t.RegistrationClose, t.Boarding)
	}
	if t.FlightDuration <= 0 {
		return simerr.New(simerr.ErrInvalidFlight, "flight duration must be positive")
	}
	if t.ArrivalForecast < 0 {
		return simerr.New(simerr.ErrInvalidFlight, "arrival forecast window must not be negative")
	}
	return nil
}

// transition is one edge of the lifecycle graph. A row applies to a flight
// in From when guard (if any) holds; it fires once the clock reaches the
// entry instant of To.
type transition struct {
	From  Status
	To    Status
	Guard func(f *Flight) bool
}

func resumesTo(s Status) func(f *Flight) bool {
	return func(f *Flight) bool { return f.ResumeStatus == s }
}

var transitions = []transition{
	{From: StatusScheduled, To: StatusRegistrationOpen},
	{From: StatusRegistrationOpen, To: StatusRegistrationClosed},
	{From: StatusRegistrationClosed, To: StatusBoarding},
	{From: StatusBoarding, To: StatusDeparted},
	{From: StatusDeparted, To: StatusArrived},
	{From: StatusDelayed, To: StatusScheduled, Guard: resumesTo(StatusScheduled)},
	{From: StatusDelayed, To: StatusRegistrationOpen, Guard: resumesTo(StatusRegistrationOpen)},
	{From: StatusDelayed, To: StatusRegistrationClosed, Guard: resumesTo(StatusRegistrationClosed)},
}

// delayable lists the states a delay may be applied in.
var delayable = map[Status]bool{
	StatusScheduled:          true,
	StatusRegistrationOpen:   true,
	StatusRegistrationClosed: true,
	StatusDelayed:            true,
}

func nextTransition(f *Flight) (transition, bool) {
	for _, t := range transitions {
		if t.From != f.Status {
			continue
		}
		if t.Guard != nil && !t.Guard(f) {
			continue
		}
		return t, true
	}
	return transition{}, false
}

// entryTime is the instant a flight enters s under its current schedule.
// Scheduled is only entered again when a delay resumes, which happens on
// the first scan after the delay.
func entryTime(f *Flight, s Status, tl Timeline) time.Time {
	switch s {
	case StatusScheduled:
		return f.DelayedAt
	case StatusRegistrationOpen:
		return f.ScheduledTime.Add(-tl.RegistrationOpen)
	case StatusRegistrationClosed:
		return f.ScheduledTime.Add(-tl.RegistrationClose)
	case StatusBoarding:
		return f.ScheduledTime.Add(-tl.Boarding)
	case StatusDeparted:
		return f.ScheduledTime
	case StatusArrived:
		return f.EstimatedArrival()
	}
	return time.Time{}
}
