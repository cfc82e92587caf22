package events

import (
	"context"
	"fmt"

	"github.com/Rus1K7/Airport/shared/models"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
)

// Signaler is the part of the Temporal client the sink uses.
type Signaler interface {
	SignalWithStartWorkflow(ctx context.Context, workflowID string, signalName string, signalArg interface{},
		options client.StartWorkflowOptions, workflow interface{}, workflowArgs ...interface{}) (client.WorkflowRun, error)
}

// TemporalSink signals the lifecycle workflow of the event's flight,
// starting it on first contact.
type TemporalSink struct {
	client    Signaler
	taskQueue string
}

// NewTemporalSink creates a sink that routes workflows to taskQueue.
func NewTemporalSink(c Signaler, taskQueue string) *TemporalSink {
	if taskQueue == "" {
		taskQueue = models.DefaultTaskQueue
	}
	return &TemporalSink{client: c, taskQueue: taskQueue}
}

// WorkflowID is the lifecycle workflow id of a flight.
func WorkflowID(flightID string) string {
	return "flight-" + flightID
}

func (s *TemporalSink) Name() string { return "temporal" }

func (s *TemporalSink) Publish(ctx context.Context, e Event) error {
	var (
		signal string
		arg    interface{}
	)
	switch e.Kind {
	case KindFlightStatusChanged:
		signal, arg = models.SignalFlightStatusChanged, *e.Status
	case KindCheckInManifest:
		signal, arg = models.SignalCheckInManifest, *e.Manifest
	default:
		return fmt.Errorf("unsupported event kind %q", e.Kind)
	}

	workflowID := WorkflowID(e.FlightID)
	opts := client.StartWorkflowOptions{
		ID:                    workflowID,
		TaskQueue:             s.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}

	_, err := s.client.SignalWithStartWorkflow(ctx, workflowID, signal, arg, opts,
		models.FlightLifecycleWorkflowName, models.FlightLifecycleInput{FlightID: e.FlightID})
	if err != nil {
		return fmt.Errorf("failed to signal workflow %s: %w", workflowID, err)
	}
	return nil
}
