package models

import "time"

// Flight is a departure board row.
type Flight struct {
	FlightID      string    `json:"flightId"`
	FromCity      string    `json:"fromCity"`
	ToCity        string    `json:"toCity"`
	ScheduledTime time.Time `json:"scheduledTime"`
	Status        string    `json:"status"`
}

// FlightDetail is a single flight with its seat accounting.
type FlightDetail struct {
	Flight
	ControlStatus    string    `json:"controlStatus"`
	ResumeStatus     string    `json:"resumeStatus,omitempty"`
	NextTransition   time.Time `json:"nextTransition"`
	EstimatedArrival time.Time `json:"estimatedArrival"`
	Seats            Seats     `json:"seats"`
}

// Seats summarizes the seat pools of a flight.
type Seats struct {
	Capacity         int `json:"capacity"`
	VIPSeats         int `json:"vipSeats"`
	VIPAvailable     int `json:"vipAvailable"`
	GeneralAvailable int `json:"generalAvailable"`
	Available        int `json:"available"`
	Active           int `json:"active"`
}

// CreateFlightRequest adds a flight to the schedule.
type CreateFlightRequest struct {
	FlightID        string    `json:"flightId"`
	FromCity        string    `json:"fromCity"`
	ToCity          string    `json:"toCity"`
	ScheduledTime   time.Time `json:"scheduledTime"`
	DurationMinutes int       `json:"durationMinutes,omitempty"`
	Capacity        int       `json:"capacity,omitempty"`
	VIPSeats        *int      `json:"vipSeats,omitempty"`
}

// DelayFlightRequest moves a departure later.
type DelayFlightRequest struct {
	ScheduledTime time.Time `json:"scheduledTime"`
}
