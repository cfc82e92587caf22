package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rus1K7/Airport/shared/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS flight_status_history (
	id             UUID PRIMARY KEY,
	flight_id      TEXT NOT NULL,
	from_status    TEXT NOT NULL DEFAULT '',
	to_status      TEXT NOT NULL,
	scheduled_time TIMESTAMPTZ NOT NULL,
	simulated_at   TIMESTAMPTZ NOT NULL,
	recorded_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (flight_id, to_status, simulated_at)
);

CREATE INDEX IF NOT EXISTS idx_flight_status_history_flight
	ON flight_status_history (flight_id, simulated_at);

CREATE TABLE IF NOT EXISTS checkin_manifests (
	id           UUID PRIMARY KEY,
	flight_id    TEXT NOT NULL UNIQUE,
	simulated_at TIMESTAMPTZ NOT NULL,
	ticket_count INTEGER NOT NULL,
	tickets      JSONB NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Repository persists the flight lifecycle history recorded by the worker.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the history tables when they are missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// InsertStatusChange records a transition. Replays of the same transition
// are ignored so activity retries stay idempotent.
func (r *Repository) InsertStatusChange(ctx context.Context, change models.FlightStatusChanged) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO flight_status_history (id, flight_id, from_status, to_status, scheduled_time, simulated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (flight_id, to_status, simulated_at) DO NOTHING
	`, uuid.New(), change.FlightID, change.From, change.Status, change.ScheduledTime, change.At)
	if err != nil {
		return fmt.Errorf("failed to insert status change: %w", err)
	}
	return nil
}

// InsertCheckInManifest stores the manifest of a flight. A flight has at
// most one manifest.
func (r *Repository) InsertCheckInManifest(ctx context.Context, manifest models.CheckInManifest) error {
	tickets, err := json.Marshal(manifest.Tickets)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO checkin_manifests (id, flight_id, simulated_at, ticket_count, tickets)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (flight_id) DO NOTHING
	`, uuid.New(), manifest.FlightID, manifest.At, len(manifest.Tickets), tickets)
	if err != nil {
		return fmt.Errorf("failed to insert manifest: %w", err)
	}
	return nil
}

// ListStatusHistory returns a flight's transitions in simulated order.
func (r *Repository) ListStatusHistory(ctx context.Context, flightID string) ([]StatusChange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, flight_id, from_status, to_status, scheduled_time, simulated_at, recorded_at
		FROM flight_status_history
		WHERE flight_id = $1
		ORDER BY simulated_at ASC, recorded_at ASC
	`, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var history []StatusChange
	for rows.Next() {
		var c StatusChange
		if err := rows.Scan(&c.ID, &c.FlightID, &c.FromStatus, &c.ToStatus, &c.ScheduledTime, &c.SimulatedAt, &c.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		history = append(history, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status history: %w", err)
	}
	return history, nil
}

// GetCheckInManifest returns the stored manifest of a flight.
func (r *Repository) GetCheckInManifest(ctx context.Context, flightID string) (*CheckInManifest, error) {
	var m CheckInManifest
	err := r.pool.QueryRow(ctx, `
		SELECT id, flight_id, simulated_at, ticket_count, tickets, recorded_at
		FROM checkin_manifests
		WHERE flight_id = $1
	`, flightID).Scan(&m.ID, &m.FlightID, &m.SimulatedAt, &m.TicketCount, &m.Tickets, &m.RecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get manifest: %w", err)
	}
	return &m, nil
}
