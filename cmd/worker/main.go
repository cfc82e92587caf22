package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Rus1K7/Airport/internal/activities"
	"github.com/Rus1K7/Airport/internal/config"
	"github.com/Rus1K7/Airport/internal/database"
	"github.com/Rus1K7/Airport/internal/workflows"
	"github.com/Rus1K7/Airport/shared/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load("airport-worker", os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "airport-worker: %v\n", err)
		os.Exit(2)
	}
	logger := cfg.NewLogger()

	temporalHost := cfg.TemporalHost
	if temporalHost == "" {
		temporalHost = config.DefaultWorkerTemporal
	}

	// Connect to database.
	logger.Info("Connecting to database")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		os.Exit(1)
	}

	repo := database.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("Failed to prepare schema", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Connect to Temporal.
	logger.Info("Connecting to Temporal", "host", temporalHost)
	c, err := client.Dial(client.Options{
		HostPort: temporalHost,
	})
	if err != nil {
		logger.Error("Failed to connect to Temporal", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	// Create worker.
	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	// Register workflows.
	w.RegisterWorkflowWithOptions(workflows.FlightLifecycleWorkflow, workflow.RegisterOptions{Name: models.FlightLifecycleWorkflowName})

	// Create and register activities.
	acts := activities.NewActivities(repo)
	w.RegisterActivityWithOptions(acts.RecordStatusChange, activity.RegisterOptions{Name: activities.RecordStatusChangeName})
	w.RegisterActivityWithOptions(acts.StoreCheckInManifest, activity.RegisterOptions{Name: activities.StoreCheckInManifestName})
	w.RegisterActivityWithOptions(acts.LoadFlightRecord, activity.RegisterOptions{Name: activities.LoadFlightRecordName})

	// Start worker.
	logger.Info("Starting Temporal worker", "taskQueue", cfg.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}
}
