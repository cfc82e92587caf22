package models

import "time"

// SimulationTime is the body of the simulation clock endpoints.
type SimulationTime struct {
	SimulationTime time.Time `json:"simulation_time"`
}

// AdvanceRequest moves the clock forward by a number of simulated minutes.
type AdvanceRequest struct {
	Minutes int `json:"minutes"`
}

// SpeedRequest sets the simulated seconds advanced per tick.
type SpeedRequest struct {
	Speed int `json:"speed"`
}

// SimulationStatus describes the running simulation.
type SimulationStatus struct {
	SimulationTime time.Time `json:"simulation_time"`
	Running        bool      `json:"running"`
	Paused         bool      `json:"paused"`
	Speed          int       `json:"speed"`
	Ticks          int64     `json:"ticks"`
	DroppedEvents  int64     `json:"droppedEvents"`
}
