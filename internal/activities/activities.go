package activities

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rus1K7/Airport/internal/database"
	"github.com/Rus1K7/Airport/shared/models"
	"go.temporal.io/sdk/activity"
)

// Activity names as registered on the worker.
const (
	RecordStatusChangeName   = "RecordStatusChange"
	StoreCheckInManifestName = "StoreCheckInManifest"
	LoadFlightRecordName     = "LoadFlightRecord"
)

// Store persists the lifecycle history of flights.
type Store interface {
	InsertStatusChange(ctx context.Context, change models.FlightStatusChanged) error
	InsertCheckInManifest(ctx context.Context, manifest models.CheckInManifest) error
	ListStatusHistory(ctx context.Context, flightID string) ([]database.StatusChange, error)
	GetCheckInManifest(ctx context.Context, flightID string) (*database.CheckInManifest, error)
}

// Activities holds the flight lifecycle activities.
type Activities struct {
	store Store
}

// NewActivities creates activities backed by store.
func NewActivities(store Store) *Activities {
	return &Activities{store: store}
}

// RecordStatusChange stores one flight transition.
func (a *Activities) RecordStatusChange(ctx context.Context, change models.FlightStatusChanged) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Recording status change", "flightId", change.FlightID, "from", change.From, "to", change.Status)

	if change.FlightID == "" || change.Status == "" {
		return fmt.Errorf("status change is missing flight or status")
	}
	if err := a.store.InsertStatusChange(ctx, change); err != nil {
		return fmt.Errorf("failed to record status change: %w", err)
	}
	return nil
}

// StoreCheckInManifest stores the tickets handed off to check-in.
func (a *Activities) StoreCheckInManifest(ctx context.Context, manifest models.CheckInManifest) (int, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Storing check-in manifest", "flightId", manifest.FlightID, "tickets", len(manifest.Tickets))

	if manifest.FlightID == "" {
		return 0, fmt.Errorf("manifest is missing flight")
	}
	if err := a.store.InsertCheckInManifest(ctx, manifest); err != nil {
		return 0, fmt.Errorf("failed to store manifest: %w", err)
	}
	return len(manifest.Tickets), nil
}

// LoadFlightRecord returns the transitions and manifest already stored for
// a flight, so a restarted lifecycle does not write them again.
func (a *Activities) LoadFlightRecord(ctx context.Context, flightID string) (models.FlightRecord, error) {
	logger := activity.GetLogger(ctx)

	record := models.FlightRecord{FlightID: flightID, Statuses: []models.FlightStatusChanged{}}
	if flightID == "" {
		return record, fmt.Errorf("flight id is required")
	}

	history, err := a.store.ListStatusHistory(ctx, flightID)
	if err != nil {
		return record, fmt.Errorf("failed to load status history: %w", err)
	}
	for _, c := range history {
		record.Statuses = append(record.Statuses, models.FlightStatusChanged{
			FlightID:      c.FlightID,
			From:          c.FromStatus,
			Status:        c.ToStatus,
			ScheduledTime: c.ScheduledTime,
			At:            c.SimulatedAt,
		})
	}

	_, err = a.store.GetCheckInManifest(ctx, flightID)
	switch {
	case err == nil:
		record.ManifestStored = true
	case !errors.Is(err, database.ErrNotFound):
		return record, fmt.Errorf("failed to load manifest: %w", err)
	}

	logger.Info("Loaded flight record", "flightId", flightID, "statuses", len(record.Statuses), "manifestStored", record.ManifestStored)
	return record, nil
}
