package mocks

import (
	"context"
	"time"

	"github.com/Rus1K7/Airport/shared/models"
	"github.com/stretchr/testify/mock"
)

// MockSimulationService is a mock implementation of SimulationService.
type MockSimulationService struct {
	mock.Mock
}

func (m *MockSimulationService) GetTime(ctx context.Context) *models.SimulationTime {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.SimulationTime)
}

func (m *MockSimulationService) SetTime(ctx context.Context, t time.Time) (*models.SimulationTime, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SimulationTime), args.Error(1)
}

func (m *MockSimulationService) AdvanceTime(ctx context.Context, minutes int) (*models.SimulationTime, error) {
	args := m.Called(ctx, minutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SimulationTime), args.Error(1)
}

func (m *MockSimulationService) SetSpeed(ctx context.Context, speed int) (*models.SimulationStatus, error) {
	args := m.Called(ctx, speed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SimulationStatus), args.Error(1)
}

func (m *MockSimulationService) GetStatus(ctx context.Context) *models.SimulationStatus {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.SimulationStatus)
}

func (m *MockSimulationService) Pause(ctx context.Context) *models.SimulationStatus {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.SimulationStatus)
}

func (m *MockSimulationService) Resume(ctx context.Context) *models.SimulationStatus {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.SimulationStatus)
}

func (m *MockSimulationService) GetFlights(ctx context.Context) []*models.Flight {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*models.Flight)
}

func (m *MockSimulationService) GetFlight(ctx context.Context, flightID string) (*models.FlightDetail, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FlightDetail), args.Error(1)
}

func (m *MockSimulationService) CreateFlight(ctx context.Context, req *models.CreateFlightRequest) (*models.FlightDetail, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FlightDetail), args.Error(1)
}

func (m *MockSimulationService) DelayFlight(ctx context.Context, flightID string, scheduledTime time.Time) (*models.FlightDetail, error) {
	args := m.Called(ctx, flightID, scheduledTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FlightDetail), args.Error(1)
}

func (m *MockSimulationService) GetTickets(ctx context.Context, passengerID, flightID string) []*models.Ticket {
	args := m.Called(ctx, passengerID, flightID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*models.Ticket)
}

func (m *MockSimulationService) GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockSimulationService) BuyTicket(ctx context.Context, req *models.BuyTicketRequest) (*models.Ticket, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockSimulationService) RefundTicket(ctx context.Context, ticketID, passengerID string) (*models.Ticket, error) {
	args := m.Called(ctx, ticketID, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockSimulationService) GetPassengers(ctx context.Context, flightID string) []*models.Passenger {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*models.Passenger)
}

func (m *MockSimulationService) GetPassenger(ctx context.Context, passengerID string) (*models.Passenger, error) {
	args := m.Called(ctx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Passenger), args.Error(1)
}

func (m *MockSimulationService) CreatePassengers(ctx context.Context, req *models.CreatePassengerRequest) (*models.BulkResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkResult), args.Error(1)
}

func (m *MockSimulationService) ToggleVIP(ctx context.Context, passengerID string) (*models.Passenger, error) {
	args := m.Called(ctx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Passenger), args.Error(1)
}

func (m *MockSimulationService) FakeTicket(ctx context.Context, passengerID string) (*models.Passenger, error) {
	args := m.Called(ctx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Passenger), args.Error(1)
}

func (m *MockSimulationService) RegisterAll(ctx context.Context, flightID string) (*models.RegistrationReport, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegistrationReport), args.Error(1)
}

func (m *MockSimulationService) Reconcile(ctx context.Context, passengerID string) (*models.Reconciliation, error) {
	args := m.Called(ctx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reconciliation), args.Error(1)
}
