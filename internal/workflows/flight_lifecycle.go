package workflows

import (
	"fmt"
	"time"

	"github.com/Rus1K7/Airport/internal/activities"
	"github.com/Rus1K7/Airport/internal/flights"
	"github.com/Rus1K7/Airport/shared/models"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// FlightLifecycleWorkflow records the lifecycle of one flight as the
// simulation reports it. It completes once the flight has arrived.
func FlightLifecycleWorkflow(ctx workflow.Context, input models.FlightLifecycleInput) (*models.FlightHistory, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Flight lifecycle workflow started", "flightId", input.FlightID)

	history := &models.FlightHistory{
		FlightID: input.FlightID,
		Statuses: []models.FlightStatusChanged{},
	}
	err := workflow.SetQueryHandler(ctx, models.QueryGetHistory, func() (*models.FlightHistory, error) {
		return history, nil
	})
	if err != nil {
		return nil, err
	}

	activityOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOpts)

	statusCh := workflow.GetSignalChannel(ctx, models.SignalFlightStatusChanged)
	manifestCh := workflow.GetSignalChannel(ctx, models.SignalCheckInManifest)

	// A flight seen by an earlier run already has rows in the store.
	var record models.FlightRecord
	if err := workflow.ExecuteActivity(ctx, activities.LoadFlightRecordName, input.FlightID).Get(ctx, &record); err != nil {
		logger.Warn("Failed to load flight record", "flightId", input.FlightID, "error", err)
	}
	stored := make(map[string]bool, len(record.Statuses))
	for _, c := range record.Statuses {
		stored[statusKey(c)] = true
	}
	history.Restored = len(record.Statuses)
	manifestStored := record.ManifestStored

	onStatus := func(change models.FlightStatusChanged) {
		logger.Info("Flight status changed", "flightId", change.FlightID, "from", change.From, "to", change.Status)
		if key := statusKey(change); !stored[key] {
			if err := workflow.ExecuteActivity(ctx, activities.RecordStatusChangeName, change).Get(ctx, nil); err != nil {
				logger.Error("Failed to record status change", "error", err)
			} else {
				stored[key] = true
			}
		}
		history.Statuses = append(history.Statuses, change)
		if change.Status == string(flights.StatusArrived) {
			history.Completed = true
		}
	}
	onManifest := func(manifest models.CheckInManifest) {
		logger.Info("Check-in manifest received", "flightId", manifest.FlightID, "tickets", len(manifest.Tickets))
		if !manifestStored {
			if err := workflow.ExecuteActivity(ctx, activities.StoreCheckInManifestName, manifest).Get(ctx, nil); err != nil {
				logger.Error("Failed to store check-in manifest", "error", err)
			} else {
				manifestStored = true
			}
		}
		history.Manifests++
	}

	canceled := false
	for !history.Completed {
		selector := workflow.NewSelector(ctx)
		selector.AddReceive(ctx.Done(), func(c workflow.ReceiveChannel, more bool) {
			canceled = true
		})
		selector.AddReceive(statusCh, func(c workflow.ReceiveChannel, more bool) {
			var change models.FlightStatusChanged
			c.Receive(ctx, &change)
			onStatus(change)
		})
		selector.AddReceive(manifestCh, func(c workflow.ReceiveChannel, more bool) {
			var manifest models.CheckInManifest
			c.Receive(ctx, &manifest)
			onManifest(manifest)
		})
		selector.Select(ctx)
		if canceled {
			logger.Info("Flight lifecycle workflow canceled", "flightId", input.FlightID)
			return history, ctx.Err()
		}
	}

	// Signals buffered behind the arrival are still recorded.
	for {
		var manifest models.CheckInManifest
		if !manifestCh.ReceiveAsync(&manifest) {
			break
		}
		onManifest(manifest)
	}
	for {
		var change models.FlightStatusChanged
		if !statusCh.ReceiveAsync(&change) {
			break
		}
		onStatus(change)
	}

	logger.Info("Flight lifecycle workflow completed", "flightId", input.FlightID, "statuses", len(history.Statuses))
	return history, nil
}

func statusKey(c models.FlightStatusChanged) string {
	return fmt.Sprintf("%s/%d", c.Status, c.At.UnixNano())
}
