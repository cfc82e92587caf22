package passengers

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Rus1K7/Airport/internal/flights"
	"github.com/Rus1K7/Airport/internal/ledger"
	"github.com/Rus1K7/Airport/internal/simclock"
	"github.com/Rus1K7/Airport/internal/simerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var simStart = time.Date(2025, 3, 15, 7, 57, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 15, hour, minute, 0, 0, time.UTC)
}

type fixture struct {
	dir      *Directory
	ledger   *ledger.Ledger
	registry *flights.Registry
}

// newFixture leaves F1 in RegistrationOpen and F2 in Boarding.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock, err := simclock.New(simStart, 30*time.Second)
	require.NoError(t, err)
	registry, err := flights.NewRegistry(flights.DefaultTimeline())
	require.NoError(t, err)

	for _, spec := range []flights.Spec{
		{ID: "F1", From: "Moscow", To: "Paris", ScheduledTime: at(8, 30), Capacity: 10},
		{ID: "F2", From: "Berlin", To: "Moscow", ScheduledTime: at(8, 0), Capacity: 10},
	} {
		_, err := registry.Create(spec, simStart)
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		registry.AdvanceDueFlights(simStart)
	}

	l := ledger.New(registry, clock, ledger.Options{})
	return &fixture{
		dir:      NewDirectory(registry, l, clock),
		ledger:   l,
		registry: registry,
	}
}

func (fx *fixture) ticketFor(t *testing.T, p Passenger) ledger.Ticket {
	t.Helper()
	ticket, err := fx.ledger.Purchase(ledger.PurchaseRequest{
		FlightID:      p.FlightID,
		PassengerID:   p.ID,
		PassengerName: p.Name,
		MenuType:      string(p.MenuType),
		BaggageWeight: p.BaggageWeight,
	})
	require.NoError(t, err)
	return ticket
}

func TestCreate_FillsDefaults(t *testing.T) {
	fx := newFixture(t)

	first, err := fx.dir.Create(CreateRequest{FlightID: "F1"})
	require.NoError(t, err)
	second, err := fx.dir.Create(CreateRequest{FlightID: "F1", MenuType: "FISH", Name: "Zoe"})
	require.NoError(t, err)

	assert.Equal(t, "Alice", first.Name)
	assert.Equal(t, ledger.MenuMeat, first.MenuType)
	assert.Equal(t, StateCameToAirport, first.State)
	assert.Empty(t, first.TicketID)
	assert.Equal(t, "Zoe", second.Name)
	assert.Equal(t, ledger.MenuFish, second.MenuType)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreate_Errors(t *testing.T) {
	fx := newFixture(t)
	fx.registry.AdvanceDueFlights(at(8, 0))

	tests := []struct {
		name    string
		req     CreateRequest
		wantErr error
	}{
		{"heavy baggage", CreateRequest{FlightID: "F1", BaggageWeight: 25}, simerr.ErrInvalidBaggage},
		{"unknown menu", CreateRequest{FlightID: "F1", MenuType: "pasta"}, simerr.ErrInvalidMenu},
		{"unknown flight", CreateRequest{FlightID: "F9"}, simerr.ErrFlightNotFound},
		{"departed flight", CreateRequest{FlightID: "F2"}, simerr.ErrFlightDeparted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.dir.Create(tt.req)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
	assert.Empty(t, fx.dir.List(""))
}

func TestCreateBulk(t *testing.T) {
	fx := newFixture(t)

	created, err := fx.dir.CreateBulk(3, CreateRequest{Name: "Crew", FlightID: "F1", BaggageWeight: 5})
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, "Crew 1", created[0].Name)
	assert.Equal(t, "Crew 3", created[2].Name)

	listed := fx.dir.List("F1")
	require.Len(t, listed, 3)
	for i := range created {
		assert.Equal(t, created[i].ID, listed[i].ID)
	}
}

func TestCreateBulk_Errors(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.dir.CreateBulk(0, CreateRequest{FlightID: "F1"})
	assert.True(t, errors.Is(err, simerr.ErrInvalidCount))

	_, err = fx.dir.CreateBulk(MaxBulk+1, CreateRequest{FlightID: "F1"})
	assert.True(t, errors.Is(err, simerr.ErrInvalidCount))

	created, err := fx.dir.CreateBulk(4, CreateRequest{FlightID: "F9"})
	assert.True(t, errors.Is(err, simerr.ErrFlightNotFound))
	assert.Empty(t, created)
	assert.Contains(t, err.Error(), "created 0 of 4")
}

// departingViewer reports the flight as RegistrationOpen for the first
// open views and Departed afterwards.
type departingViewer struct {
	mu    sync.Mutex
	open  int
	views int
}

func (v *departingViewer) View(id string, fn func(f flights.Flight) error) error {
	v.mu.Lock()
	v.views++
	status := flights.StatusRegistrationOpen
	if v.views > v.open {
		status = flights.StatusDeparted
	}
	v.mu.Unlock()
	return fn(flights.Flight{ID: id, Status: status, ScheduledTime: at(8, 30)})
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func TestCreateBulk_KeepsPassengersBeforeFailure(t *testing.T) {
	viewer := &departingViewer{open: 2}
	dir := NewDirectory(viewer, nil, fixedClock(simStart))

	created, err := dir.CreateBulk(5, CreateRequest{Name: "Crew", FlightID: "F1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, simerr.ErrFlightDeparted))
	assert.Contains(t, err.Error(), "created 2 of 5")

	require.Len(t, created, 2)
	assert.Equal(t, "Crew 1", created[0].Name)
	assert.Equal(t, "Crew 2", created[1].Name)

	kept := dir.List("F1")
	require.Len(t, kept, 2)
	assert.Equal(t, created[0].ID, kept[0].ID)
	assert.Equal(t, created[1].ID, kept[1].ID)
	assert.Equal(t, 3, viewer.views, "creation stops at the first failure")
}

func TestToggleVIP(t *testing.T) {
	fx := newFixture(t)
	p, err := fx.dir.Create(CreateRequest{FlightID: "F1"})
	require.NoError(t, err)

	p, err = fx.dir.ToggleVIP(p.ID)
	require.NoError(t, err)
	assert.True(t, p.IsVIP)

	p, err = fx.dir.ToggleVIP(p.ID)
	require.NoError(t, err)
	assert.False(t, p.IsVIP)

	_, err = fx.dir.ToggleVIP("missing")
	assert.True(t, errors.Is(err, simerr.ErrPassengerNotFound))
}

func TestAttachTicket(t *testing.T) {
	fx := newFixture(t)
	p, err := fx.dir.Create(CreateRequest{FlightID: "F1"})
	require.NoError(t, err)

	first := fx.ticketFor(t, p)
	p, err = fx.dir.AttachTicket(p.ID, first)
	require.NoError(t, err)
	assert.Equal(t, StateGotTicket, p.State)
	assert.Equal(t, first.ID, p.TicketID)

	second := fx.ticketFor(t, p)
	_, err = fx.dir.AttachTicket(p.ID, second)
	assert.True(t, errors.Is(err, simerr.ErrAlreadyTicketed))

	_, err = fx.ledger.Refund(first.ID, p.ID)
	require.NoError(t, err)
	p, err = fx.dir.DetachTicket(p.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, StateTicketReturned, p.State)

	p, err = fx.dir.AttachTicket(p.ID, second)
	require.NoError(t, err)
	assert.Equal(t, second.ID, p.TicketID)
}

func TestAttachForgery_DoesNotLeakMutations(t *testing.T) {
	fx := newFixture(t)
	p, err := fx.dir.Create(CreateRequest{FlightID: "F1"})
	require.NoError(t, err)

	forged := ledger.Ticket{ID: "forged-1", Forged: true, BaggageWeight: 3}
	p, err = fx.dir.AttachForgery(p.ID, forged)
	require.NoError(t, err)
	require.NotNil(t, p.ForgedTicket)

	p.ForgedTicket.BaggageWeight = 99
	again, err := fx.dir.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.ForgedTicket.BaggageWeight)
}

func TestRegisterAll_PerPassengerResults(t *testing.T) {
	fx := newFixture(t)

	ticketed, err := fx.dir.Create(CreateRequest{FlightID: "F1"})
	require.NoError(t, err)
	_, err = fx.dir.AttachTicket(ticketed.ID, fx.ticketFor(t, ticketed))
	require.NoError(t, err)

	unticketed, err := fx.dir.Create(CreateRequest{FlightID: "F1"})
	require.NoError(t, err)

	returned, err := fx.dir.Create(CreateRequest{FlightID: "F1"})
	require.NoError(t, err)
	ticket := fx.ticketFor(t, returned)
	_, err = fx.dir.AttachTicket(returned.ID, ticket)
	require.NoError(t, err)
	_, err = fx.ledger.Refund(ticket.ID, returned.ID)
	require.NoError(t, err)

	results, err := fx.dir.RegisterAll("F1")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, ticketed.ID, results[0].PassengerID)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, StateCheckedIn, results[0].State)

	assert.Equal(t, unticketed.ID, results[1].PassengerID)
	assert.True(t, errors.Is(results[1].Err, simerr.ErrNoGenuineTicket))
	assert.Equal(t, StateCameToAirport, results[1].State)

	assert.True(t, errors.Is(results[2].Err, simerr.ErrNoGenuineTicket))

	results, err = fx.dir.RegisterAll("F1")
	require.NoError(t, err)
	assert.NoError(t, results[0].Err, "checking in twice is not an error")
}

func TestRegisterAll_OutsideRegistrationWindow(t *testing.T) {
	fx := newFixture(t)
	for i := 0; i < 2; i++ {
		_, err := fx.dir.Create(CreateRequest{FlightID: "F2"})
		require.NoError(t, err)
	}

	results, err := fx.dir.RegisterAll("F2")
	assert.True(t, errors.Is(err, simerr.ErrRegistrationClosed))
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, errors.Is(r.Err, simerr.ErrRegistrationClosed))
		assert.Equal(t, StateCameToAirport, r.State)
	}
}

func TestRegisterAll_UnknownFlight(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.dir.RegisterAll("F9")
	assert.True(t, errors.Is(err, simerr.ErrFlightNotFound))
}
