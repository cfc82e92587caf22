package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Rus1K7/Airport/internal/flights"
	"github.com/Rus1K7/Airport/internal/simerr"
	"github.com/Rus1K7/Airport/internal/simulation"
	"github.com/Rus1K7/Airport/shared/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 15, hour, minute, 0, 0, time.UTC)
}

type fixedDrops int64

func (d fixedDrops) Dropped() int64 { return int64(d) }

func newTestService(t *testing.T) SimulationService {
	t.Helper()
	sim, err := simulation.New(simulation.Options{
		Start:     at(7, 57),
		Step:      30 * time.Second,
		WallClock: clockwork.NewFakeClock(),
		Schedule: []flights.Spec{
			{ID: "FL999", From: "Moscow", To: "Berlin", ScheduledTime: at(8, 0), Capacity: 10},
			{ID: "FL123", From: "Moscow", To: "Paris", ScheduledTime: at(9, 0), Capacity: 2},
		},
	})
	require.NoError(t, err)
	return NewSimulationService(sim, fixedDrops(3), Defaults{Capacity: 50, VIPSeats: 5})
}

func buyFor(passengerID string) *models.BuyTicketRequest {
	return &models.BuyTicketRequest{
		PassengerName: "Alice",
		PassengerID:   passengerID,
		FlightID:      "FL123",
		MenuType:      "fish",
		BaggageWeight: 12,
	}
}

func TestGetFlights(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	list := svc.GetFlights(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "FL999", list[0].FlightID)
	assert.Equal(t, "Paris", list[1].ToCity)
	assert.Equal(t, string(flights.StatusScheduled), list[1].Status)
}

func TestGetFlight_Detail(t *testing.T) {
	svc := newTestService(t)

	detail, err := svc.GetFlight(context.Background(), "FL123")
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Seats.Capacity)
	assert.Equal(t, 2, detail.Seats.Available)
	assert.Equal(t, at(11, 0), detail.EstimatedArrival)
	assert.Equal(t, at(8, 10), detail.NextTransition)

	_, err = svc.GetFlight(context.Background(), "FL000")
	assert.ErrorIs(t, err, simerr.ErrFlightNotFound)
}

func TestCreateFlight_AppliesDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	detail, err := svc.CreateFlight(ctx, &models.CreateFlightRequest{
		FlightID:      "FL777",
		FromCity:      "Moscow",
		ToCity:        "Rome",
		ScheduledTime: at(18, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 50, detail.Seats.Capacity)
	assert.Equal(t, 5, detail.Seats.VIPSeats)

	small, err := svc.CreateFlight(ctx, &models.CreateFlightRequest{
		FlightID:      "FL778",
		FromCity:      "Moscow",
		ToCity:        "Rome",
		ScheduledTime: at(18, 0),
		Capacity:      3,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, small.Seats.VIPSeats)

	_, err = svc.CreateFlight(ctx, &models.CreateFlightRequest{FlightID: "FL777", FromCity: "A", ToCity: "B", ScheduledTime: at(18, 0)})
	assert.ErrorIs(t, err, simerr.ErrInvalidFlight)
}

func TestBuyAndRefund_TicketViews(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.BuyTicket(ctx, buyFor("p-1"))
	require.NoError(t, err)
	assert.Equal(t, "Moscow", ticket.FromCity)
	assert.Equal(t, "Paris", ticket.ToCity)
	assert.Equal(t, at(9, 0), ticket.FlightDepartureTime)
	assert.Equal(t, models.TicketStatusActive, ticket.Status)
	assert.False(t, ticket.IsFake)

	byPassenger := svc.GetTickets(ctx, "p-1", "")
	require.Len(t, byPassenger, 1)
	assert.Equal(t, ticket.TicketID, byPassenger[0].TicketID)
	assert.Empty(t, svc.GetTickets(ctx, "", "FL999"))

	_, err = svc.RefundTicket(ctx, ticket.TicketID, "p-2")
	assert.ErrorIs(t, err, simerr.ErrNotOwner)

	refunded, err := svc.RefundTicket(ctx, ticket.TicketID, "p-1")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusReturned, refunded.Status)

	got, err := svc.GetTicket(ctx, ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusReturned, got.Status)
}

func TestBuyTicket_SoldOut(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.BuyTicket(ctx, buyFor("p-1"))
	require.NoError(t, err)
	_, err = svc.BuyTicket(ctx, buyFor("p-2"))
	require.NoError(t, err)

	_, err = svc.BuyTicket(ctx, buyFor("p-3"))
	assert.ErrorIs(t, err, simerr.ErrNoCapacity)
}

func TestCreatePassengers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	one, err := svc.CreatePassengers(ctx, &models.CreatePassengerRequest{Name: "Bob", FlightID: "FL123", MenuType: "meat"})
	require.NoError(t, err)
	assert.Equal(t, 1, one.Requested)
	require.Len(t, one.Passengers, 1)
	assert.Equal(t, "Bob", one.Passengers[0].Name)

	bulk, err := svc.CreatePassengers(ctx, &models.CreatePassengerRequest{FlightID: "FL123", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, bulk.Created)

	assert.Len(t, svc.GetPassengers(ctx, "FL123"), 4)
	assert.Empty(t, svc.GetPassengers(ctx, "FL999"))

	failed, err := svc.CreatePassengers(ctx, &models.CreatePassengerRequest{FlightID: "FL123", Count: 501})
	assert.ErrorIs(t, err, simerr.ErrInvalidCount)
	assert.Equal(t, "InvalidCount", failed.Code)
	assert.Zero(t, failed.Created)
}

func TestFakeTicketAndReconcile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreatePassengers(ctx, &models.CreatePassengerRequest{Name: "Eve", FlightID: "FL123", BaggageWeight: 5, MenuType: "vegan"})
	require.NoError(t, err)
	pid := created.Passengers[0].ID

	_, err = svc.FakeTicket(ctx, pid)
	assert.ErrorIs(t, err, simerr.ErrNoGenuineTicket)

	_, err = svc.BuyTicket(ctx, &models.BuyTicketRequest{PassengerID: pid, FlightID: "FL123", MenuType: "vegan", BaggageWeight: 5})
	require.NoError(t, err)

	p, err := svc.FakeTicket(ctx, pid)
	require.NoError(t, err)
	require.NotNil(t, p.Ticket)
	require.NotNil(t, p.ForgedTicket)
	assert.True(t, p.ForgedTicket.IsFake)
	assert.Equal(t, "Eve", p.Ticket.PassengerName)
	assert.Equal(t, 12, p.ForgedTicket.BaggageWeight)

	r, err := svc.Reconcile(ctx, pid)
	require.NoError(t, err)
	assert.True(t, r.Forgery)
	fields := make([]string, 0, len(r.Discrepancies))
	for _, d := range r.Discrepancies {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "ticketId")
	assert.Contains(t, fields, "baggageWeight")
	assert.Contains(t, fields, "menuType")
}

func TestRegisterAll(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreatePassengers(ctx, &models.CreatePassengerRequest{FlightID: "FL123", Count: 2})
	require.NoError(t, err)
	ticketed := created.Passengers[0].ID
	_, err = svc.BuyTicket(ctx, &models.BuyTicketRequest{PassengerID: ticketed, FlightID: "FL123", MenuType: "meat"})
	require.NoError(t, err)

	report, err := svc.RegisterAll(ctx, "FL123")
	assert.ErrorIs(t, err, simerr.ErrRegistrationClosed)
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Failed)

	_, err = svc.SetTime(ctx, at(8, 10))
	require.NoError(t, err)

	report, err = svc.RegisterAll(ctx, "FL123")
	require.NoError(t, err)
	assert.Equal(t, 1, report.CheckedIn)
	assert.Equal(t, 1, report.Failed)
	for _, r := range report.Results {
		if r.PassengerID == ticketed {
			assert.True(t, r.Success)
			assert.Equal(t, "CheckedIn", r.State)
		} else {
			assert.Equal(t, "NoGenuineTicket", r.Code)
		}
	}

	_, err = svc.RegisterAll(ctx, "FL000")
	assert.ErrorIs(t, err, simerr.ErrFlightNotFound)
}

func TestSimulationClock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.Equal(t, at(7, 57), svc.GetTime(ctx).SimulationTime)

	now, err := svc.AdvanceTime(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, at(8, 0), now.SimulationTime)

	_, err = svc.AdvanceTime(ctx, 0)
	assert.ErrorIs(t, err, simerr.ErrInvalidAdvance)
	_, err = svc.SetTime(ctx, at(7, 0))
	assert.ErrorIs(t, err, simerr.ErrInvalidAdvance)

	status, err := svc.SetSpeed(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, 60, status.Speed)
	assert.Equal(t, int64(3), status.DroppedEvents)

	_, err = svc.SetSpeed(ctx, 0)
	assert.ErrorIs(t, err, simerr.ErrInvalidSpeed)
}

func TestSimulationClock_RejectsOverflow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Values whose Duration conversion would wrap into range.
	_, err := svc.AdvanceTime(ctx, math.MaxInt)
	assert.ErrorIs(t, err, simerr.ErrInvalidAdvance)
	_, err = svc.AdvanceTime(ctx, MaxAdvanceMinutes+1)
	assert.ErrorIs(t, err, simerr.ErrInvalidAdvance)
	_, err = svc.SetSpeed(ctx, math.MaxInt)
	assert.ErrorIs(t, err, simerr.ErrInvalidSpeed)
	_, err = svc.SetSpeed(ctx, 3601)
	assert.ErrorIs(t, err, simerr.ErrInvalidSpeed)

	status := svc.GetStatus(ctx)
	assert.Equal(t, 30, status.Speed)
	assert.Equal(t, at(7, 57), status.SimulationTime)
}

func TestPauseResume(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.True(t, svc.Pause(ctx).Paused)
	assert.True(t, svc.GetStatus(ctx).Paused)
	assert.False(t, svc.Resume(ctx).Paused)
}

func TestGetFlights_PlanningArrive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// One lifecycle step per advance; walk minute by minute to 09:40.
	for i := 0; i < 103; i++ {
		_, err := svc.AdvanceTime(ctx, 1)
		require.NoError(t, err)
	}
	require.Equal(t, at(9, 40), svc.GetTime(ctx).SimulationTime)

	list := svc.GetFlights(ctx)
	assert.Equal(t, string(flights.StatusPlanningArrive), list[0].Status)

	detail, err := svc.GetFlight(ctx, "FL999")
	require.NoError(t, err)
	assert.Equal(t, string(flights.StatusDeparted), detail.ControlStatus)
}
