package service

import (
	"context"
	"errors"
	"time"

	"github.com/Rus1K7/Airport/internal/flights"
	"github.com/Rus1K7/Airport/internal/ledger"
	"github.com/Rus1K7/Airport/internal/passengers"
	"github.com/Rus1K7/Airport/internal/simerr"
	"github.com/Rus1K7/Airport/internal/simulation"
	"github.com/Rus1K7/Airport/shared/models"
)

// SimulationService defines the operations exposed over HTTP.
type SimulationService interface {
	GetTime(ctx context.Context) *models.SimulationTime
	SetTime(ctx context.Context, t time.Time) (*models.SimulationTime, error)
	AdvanceTime(ctx context.Context, minutes int) (*models.SimulationTime, error)
	SetSpeed(ctx context.Context, speed int) (*models.SimulationStatus, error)
	GetStatus(ctx context.Context) *models.SimulationStatus
	Pause(ctx context.Context) *models.SimulationStatus
	Resume(ctx context.Context) *models.SimulationStatus

	GetFlights(ctx context.Context) []*models.Flight
	GetFlight(ctx context.Context, flightID string) (*models.FlightDetail, error)
	CreateFlight(ctx context.Context, req *models.CreateFlightRequest) (*models.FlightDetail, error)
	DelayFlight(ctx context.Context, flightID string, scheduledTime time.Time) (*models.FlightDetail, error)

	GetTickets(ctx context.Context, passengerID, flightID string) []*models.Ticket
	GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error)
	BuyTicket(ctx context.Context, req *models.BuyTicketRequest) (*models.Ticket, error)
	RefundTicket(ctx context.Context, ticketID, passengerID string) (*models.Ticket, error)

	GetPassengers(ctx context.Context, flightID string) []*models.Passenger
	GetPassenger(ctx context.Context, passengerID string) (*models.Passenger, error)
	CreatePassengers(ctx context.Context, req *models.CreatePassengerRequest) (*models.BulkResult, error)
	ToggleVIP(ctx context.Context, passengerID string) (*models.Passenger, error)
	FakeTicket(ctx context.Context, passengerID string) (*models.Passenger, error)
	RegisterAll(ctx context.Context, flightID string) (*models.RegistrationReport, error)
	Reconcile(ctx context.Context, passengerID string) (*models.Reconciliation, error)
}

// DropCounter reports events the dispatcher could not queue.
type DropCounter interface {
	Dropped() int64
}

// Defaults fill in flight fields a create request leaves out.
type Defaults struct {
	Capacity int
	VIPSeats int
}

// simulationServiceImpl implements SimulationService on top of a controller.
type simulationServiceImpl struct {
	sim      *simulation.Controller
	drops    DropCounter
	defaults Defaults
}

// NewSimulationService creates a new SimulationService. drops may be nil.
func NewSimulationService(sim *simulation.Controller, drops DropCounter, defaults Defaults) SimulationService {
	return &simulationServiceImpl{
		sim:      sim,
		drops:    drops,
		defaults: defaults,
	}
}

func (s *simulationServiceImpl) GetTime(ctx context.Context) *models.SimulationTime {
	return &models.SimulationTime{SimulationTime: s.sim.Now()}
}

func (s *simulationServiceImpl) SetTime(ctx context.Context, t time.Time) (*models.SimulationTime, error) {
	now, err := s.sim.AdvanceTo(t)
	if err != nil {
		return nil, err
	}
	return &models.SimulationTime{SimulationTime: now}, nil
}

// MaxAdvanceMinutes caps a single advance at one simulated year.
const MaxAdvanceMinutes = 366 * 24 * 60

func (s *simulationServiceImpl) AdvanceTime(ctx context.Context, minutes int) (*models.SimulationTime, error) {
	if minutes < 1 || minutes > MaxAdvanceMinutes {
		return nil, simerr.New(simerr.ErrInvalidAdvance, "advance must be between 1 and %d minutes, got %d", MaxAdvanceMinutes, minutes)
	}
	now, err := s.sim.AdvanceTime(time.Duration(minutes) * time.Minute)
	if err != nil {
		return nil, err
	}
	return &models.SimulationTime{SimulationTime: now}, nil
}

func (s *simulationServiceImpl) SetSpeed(ctx context.Context, speed int) (*models.SimulationStatus, error) {
	if err := s.sim.SetSpeed(speed); err != nil {
		return nil, err
	}
	return s.GetStatus(ctx), nil
}

func (s *simulationServiceImpl) Pause(ctx context.Context) *models.SimulationStatus {
	s.sim.Pause()
	return s.GetStatus(ctx)
}

func (s *simulationServiceImpl) Resume(ctx context.Context) *models.SimulationStatus {
	s.sim.Resume()
	return s.GetStatus(ctx)
}

func (s *simulationServiceImpl) GetStatus(ctx context.Context) *models.SimulationStatus {
	st := s.sim.Status()
	status := &models.SimulationStatus{
		SimulationTime: st.Now,
		Running:        st.Running,
		Paused:         st.Paused,
		Speed:          int(st.Step / time.Second),
		Ticks:          st.Ticks,
	}
	if s.drops != nil {
		status.DroppedEvents = s.drops.Dropped()
	}
	return status
}

func (s *simulationServiceImpl) GetFlights(ctx context.Context) []*models.Flight {
	now := s.sim.Now()
	window := s.sim.Timeline().ArrivalForecast

	list := s.sim.Flights()
	views := make([]*models.Flight, 0, len(list))
	for _, f := range list {
		v := flightView(f, now, window)
		views = append(views, &v)
	}
	return views
}

func (s *simulationServiceImpl) GetFlight(ctx context.Context, flightID string) (*models.FlightDetail, error) {
	f, err := s.sim.Flight(flightID)
	if err != nil {
		return nil, err
	}
	return s.flightDetail(f)
}

func (s *simulationServiceImpl) CreateFlight(ctx context.Context, req *models.CreateFlightRequest) (*models.FlightDetail, error) {
	spec := flights.Spec{
		ID:            req.FlightID,
		From:          req.FromCity,
		To:            req.ToCity,
		ScheduledTime: req.ScheduledTime,
		Duration:      time.Duration(req.DurationMinutes) * time.Minute,
		Capacity:      req.Capacity,
		VIPSeats:      s.defaults.VIPSeats,
	}
	if spec.Capacity == 0 {
		spec.Capacity = s.defaults.Capacity
	}
	if req.VIPSeats != nil {
		spec.VIPSeats = *req.VIPSeats
	}
	// The default VIP pool never invalidates an explicit capacity.
	if spec.VIPSeats > spec.Capacity && req.VIPSeats == nil {
		spec.VIPSeats = 0
	}

	f, err := s.sim.CreateFlight(spec)
	if err != nil {
		return nil, err
	}
	return s.flightDetail(f)
}

func (s *simulationServiceImpl) DelayFlight(ctx context.Context, flightID string, scheduledTime time.Time) (*models.FlightDetail, error) {
	f, err := s.sim.DelayFlight(flightID, scheduledTime)
	if err != nil {
		return nil, err
	}
	return s.flightDetail(f)
}

func (s *simulationServiceImpl) GetTickets(ctx context.Context, passengerID, flightID string) []*models.Ticket {
	list := s.sim.Tickets(ledger.Filter{PassengerID: passengerID, FlightID: flightID})
	views := make([]*models.Ticket, 0, len(list))
	for _, t := range list {
		views = append(views, s.ticketView(t))
	}
	return views
}

func (s *simulationServiceImpl) GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	t, err := s.sim.Ticket(ticketID)
	if err != nil {
		return nil, err
	}
	return s.ticketView(t), nil
}

func (s *simulationServiceImpl) BuyTicket(ctx context.Context, req *models.BuyTicketRequest) (*models.Ticket, error) {
	t, err := s.sim.BuyTicket(ledger.PurchaseRequest{
		FlightID:      req.FlightID,
		PassengerID:   req.PassengerID,
		PassengerName: req.PassengerName,
		MenuType:      req.MenuType,
		BaggageWeight: req.BaggageWeight,
		IsVIP:         req.IsVIP,
	})
	if err != nil {
		return nil, err
	}
	return s.ticketView(t), nil
}

func (s *simulationServiceImpl) RefundTicket(ctx context.Context, ticketID, passengerID string) (*models.Ticket, error) {
	t, err := s.sim.RefundTicket(ticketID, passengerID)
	if err != nil {
		return nil, err
	}
	return s.ticketView(t), nil
}

func (s *simulationServiceImpl) GetPassengers(ctx context.Context, flightID string) []*models.Passenger {
	list := s.sim.Passengers(flightID)
	views := make([]*models.Passenger, 0, len(list))
	for _, p := range list {
		views = append(views, s.passengerView(p))
	}
	return views
}

func (s *simulationServiceImpl) GetPassenger(ctx context.Context, passengerID string) (*models.Passenger, error) {
	p, err := s.sim.Passenger(passengerID)
	if err != nil {
		return nil, err
	}
	return s.passengerView(p), nil
}

// CreatePassengers creates one passenger, or req.Count of them when set.
// A bulk run that stops early returns the partial result with the error.
func (s *simulationServiceImpl) CreatePassengers(ctx context.Context, req *models.CreatePassengerRequest) (*models.BulkResult, error) {
	create := passengers.CreateRequest{
		Name:          req.Name,
		FlightID:      req.FlightID,
		BaggageWeight: req.BaggageWeight,
		MenuType:      req.MenuType,
		IsVIP:         req.IsVIP,
	}

	count := req.Count
	if count == 0 {
		count = 1
	}

	var (
		created []passengers.Passenger
		err     error
	)
	if count == 1 {
		var p passengers.Passenger
		if p, err = s.sim.CreatePassenger(create); err == nil {
			created = append(created, p)
		}
	} else {
		created, err = s.sim.CreateBulkPassengers(count, create)
	}

	result := &models.BulkResult{
		Requested:  count,
		Created:    len(created),
		Passengers: make([]models.Passenger, 0, len(created)),
	}
	for _, p := range created {
		result.Passengers = append(result.Passengers, *s.passengerView(p))
	}
	if err != nil {
		result.Error = err.Error()
		result.Code = simerr.CodeOf(err)
	}
	return result, err
}

func (s *simulationServiceImpl) ToggleVIP(ctx context.Context, passengerID string) (*models.Passenger, error) {
	p, err := s.sim.ToggleVIP(passengerID)
	if err != nil {
		return nil, err
	}
	return s.passengerView(p), nil
}

func (s *simulationServiceImpl) FakeTicket(ctx context.Context, passengerID string) (*models.Passenger, error) {
	p, _, err := s.sim.FakeTicket(passengerID)
	if err != nil {
		return nil, err
	}
	return s.passengerView(p), nil
}

// RegisterAll returns a report whenever the flight exists, even when the
// whole run was refused.
func (s *simulationServiceImpl) RegisterAll(ctx context.Context, flightID string) (*models.RegistrationReport, error) {
	results, err := s.sim.RegisterAll(flightID)
	if err != nil && errors.Is(err, simerr.ErrFlightNotFound) {
		return nil, err
	}

	report := &models.RegistrationReport{
		FlightID: flightID,
		Results:  make([]models.RegistrationResult, 0, len(results)),
	}
	for _, r := range results {
		row := models.RegistrationResult{
			PassengerID: r.PassengerID,
			Name:        r.Name,
			State:       string(r.State),
			Success:     r.Err == nil,
		}
		if r.Err != nil {
			row.Error = r.Err.Error()
			row.Code = simerr.CodeOf(r.Err)
			report.Failed++
		} else {
			report.CheckedIn++
		}
		report.Results = append(report.Results, row)
	}
	return report, err
}

func (s *simulationServiceImpl) Reconcile(ctx context.Context, passengerID string) (*models.Reconciliation, error) {
	r, err := s.sim.Reconcile(passengerID)
	if err != nil {
		return nil, err
	}

	view := &models.Reconciliation{
		PassengerID:   r.Passenger.ID,
		Forgery:       r.Forged != nil,
		Discrepancies: make([]models.Discrepancy, 0, len(r.Discrepancies)),
	}
	if r.Genuine != nil {
		view.Genuine = s.ticketView(*r.Genuine)
	}
	if r.Forged != nil {
		view.Forged = s.ticketView(*r.Forged)
	}
	for _, d := range r.Discrepancies {
		view.Discrepancies = append(view.Discrepancies, models.Discrepancy{
			Field:   d.Field,
			Genuine: d.Genuine,
			Forged:  d.Forged,
		})
	}
	return view, nil
}

func (s *simulationServiceImpl) flightDetail(f flights.Flight) (*models.FlightDetail, error) {
	seats, err := s.sim.Seats(f.ID)
	if err != nil {
		return nil, err
	}
	return &models.FlightDetail{
		Flight:           flightView(f, s.sim.Now(), s.sim.Timeline().ArrivalForecast),
		ControlStatus:    string(f.Status),
		ResumeStatus:     string(f.ResumeStatus),
		NextTransition:   f.NextTransition,
		EstimatedArrival: f.EstimatedArrival(),
		Seats: models.Seats{
			Capacity:         seats.Capacity,
			VIPSeats:         seats.VIPSeats,
			VIPAvailable:     seats.VIPAvailable,
			GeneralAvailable: seats.GeneralAvailable,
			Available:        seats.Available,
			Active:           seats.Active,
		},
	}, nil
}

func flightView(f flights.Flight, now time.Time, window time.Duration) models.Flight {
	return models.Flight{
		FlightID:      f.ID,
		FromCity:      f.From,
		ToCity:        f.To,
		ScheduledTime: f.ScheduledTime,
		Status:        string(f.DisplayStatus(now, window)),
	}
}

// ticketView joins a ticket with its flight's route and departure.
func (s *simulationServiceImpl) ticketView(t ledger.Ticket) *models.Ticket {
	view := &models.Ticket{
		TicketID:      t.ID,
		PassengerName: t.PassengerName,
		PassengerID:   t.PassengerID,
		FlightID:      t.FlightID,
		Status:        string(t.Status),
		MenuType:      string(t.MenuType),
		BaggageWeight: t.BaggageWeight,
		IsVIP:         t.IsVIP,
		IsFake:        t.Forged,
		CreatedAt:     t.PurchasedAt,
	}
	if f, err := s.sim.Flight(t.FlightID); err == nil {
		view.FromCity = f.From
		view.ToCity = f.To
		view.FlightDepartureTime = f.ScheduledTime
	}
	return view
}

func (s *simulationServiceImpl) passengerView(p passengers.Passenger) *models.Passenger {
	view := &models.Passenger{
		ID:            p.ID,
		Name:          p.Name,
		FlightID:      p.FlightID,
		BaggageWeight: p.BaggageWeight,
		MenuType:      string(p.MenuType),
		IsVIP:         p.IsVIP,
		State:         string(p.State),
		CreatedAt:     p.CreatedAt,
	}
	if p.TicketID != "" {
		if t, err := s.sim.Ticket(p.TicketID); err == nil {
			view.Ticket = s.ticketView(t)
		}
	}
	if p.ForgedTicket != nil {
		view.ForgedTicket = s.ticketView(*p.ForgedTicket)
	}
	return view
}
