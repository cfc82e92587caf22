package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Rus1K7/Airport/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
	block  chan struct{}
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Publish(_ context.Context, e Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) received() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func statusEvent(flightID, status string) Event {
	return StatusChanged(models.FlightStatusChanged{FlightID: flightID, Status: status})
}

func TestDispatcher_DeliversInOrderToEverySink(t *testing.T) {
	first := &recordingSink{}
	second := &recordingSink{err: errors.New("sink down")}
	d := NewDispatcher(nil, 8, first, second)

	require.True(t, d.Publish(statusEvent("FL1", "RegistrationOpen")))
	require.True(t, d.Publish(statusEvent("FL1", "RegistrationClosed")))
	require.True(t, d.Publish(CheckInManifest(models.CheckInManifest{FlightID: "FL2"})))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	for _, s := range []*recordingSink{first, second} {
		got := s.received()
		require.Len(t, got, 3)
		assert.Equal(t, "RegistrationOpen", got[0].Status.Status)
		assert.Equal(t, "RegistrationClosed", got[1].Status.Status)
		assert.Equal(t, KindCheckInManifest, got[2].Kind)
	}
	assert.Zero(t, d.Dropped())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(nil, 1, sink)

	// The first event is taken by the delivery goroutine and blocks there;
	// the queue then holds one more.
	accepted := 0
	for i := 0; i < 5; i++ {
		if d.Publish(statusEvent("FL1", "Boarding")) {
			accepted++
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Less(t, accepted, 5)
	assert.Equal(t, int64(5-accepted), d.Dropped())

	close(sink.block)
	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, sink.received(), accepted)

	assert.False(t, d.Publish(statusEvent("FL1", "Departed")), "closed dispatcher rejects events")
}

type mockSignaler struct {
	mock.Mock
}

func (m *mockSignaler) SignalWithStartWorkflow(ctx context.Context, workflowID string, signalName string, signalArg interface{},
	options client.StartWorkflowOptions, workflow interface{}, workflowArgs ...interface{}) (client.WorkflowRun, error) {
	args := m.Called(ctx, workflowID, signalName, signalArg, options, workflow, workflowArgs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(client.WorkflowRun), args.Error(1)
}

func TestTemporalSink_SignalsFlightWorkflow(t *testing.T) {
	signaler := new(mockSignaler)
	sink := NewTemporalSink(signaler, "")

	payload := models.FlightStatusChanged{FlightID: "FL123", From: "Scheduled", Status: "RegistrationOpen"}
	signaler.On("SignalWithStartWorkflow", mock.Anything, "flight-FL123", models.SignalFlightStatusChanged, payload,
		mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
			return o.TaskQueue == models.DefaultTaskQueue && o.ID == "flight-FL123"
		}),
		models.FlightLifecycleWorkflowName,
		[]interface{}{models.FlightLifecycleInput{FlightID: "FL123"}},
	).Return(nil, nil)

	require.NoError(t, sink.Publish(context.Background(), StatusChanged(payload)))
	signaler.AssertExpectations(t)
}

func TestTemporalSink_ManifestAndErrors(t *testing.T) {
	signaler := new(mockSignaler)
	sink := NewTemporalSink(signaler, "custom-queue")

	manifest := models.CheckInManifest{FlightID: "FL9", Tickets: []models.ManifestEntry{{TicketID: "t1"}}}
	signaler.On("SignalWithStartWorkflow", mock.Anything, "flight-FL9", models.SignalCheckInManifest, manifest,
		mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("unavailable"))

	err := sink.Publish(context.Background(), CheckInManifest(manifest))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flight-FL9")

	assert.Error(t, sink.Publish(context.Background(), Event{Kind: "unknown", FlightID: "FL9"}))
	signaler.AssertExpectations(t)
}
