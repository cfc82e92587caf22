package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rus1K7/Airport/internal/config"
	"github.com/Rus1K7/Airport/internal/events"
	"github.com/Rus1K7/Airport/internal/handlers"
	"github.com/Rus1K7/Airport/internal/router"
	"github.com/Rus1K7/Airport/internal/service"
	"github.com/Rus1K7/Airport/internal/simulation"
	"github.com/Rus1K7/Airport/internal/websocket"
	"go.temporal.io/sdk/client"
)

func main() {
	cfg, err := config.Load("airport-server", os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "airport-server: %v\n", err)
		os.Exit(2)
	}
	logger := cfg.NewLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub(logger)
	sinks := []events.Sink{events.LogSink{Logger: logger}, hub}

	// Temporal is optional; without it the engine runs standalone.
	if cfg.TemporalHost != "" {
		temporalClient, err := client.Dial(client.Options{
			HostPort: cfg.TemporalHost,
		})
		if err != nil {
			logger.Error("Failed to create Temporal client", "host", cfg.TemporalHost, "error", err)
			os.Exit(1)
		}
		defer temporalClient.Close()
		sinks = append(sinks, events.NewTemporalSink(temporalClient, cfg.TaskQueue))
		logger.Info("Connected to Temporal", "host", cfg.TemporalHost, "taskQueue", cfg.TaskQueue)
	}

	dispatcher := events.NewDispatcher(logger, events.DefaultQueueSize, sinks...)

	sim, err := simulation.New(simulation.Options{
		Start:        cfg.SimStart,
		Step:         cfg.Step(),
		TickInterval: cfg.TickInterval,
		Timeline:     cfg.Timeline,
		VIPOverflow:  cfg.VIPOverflow,
		Schedule:     cfg.Flights,
		Publisher:    dispatcher,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("Failed to create simulation", "error", err)
		os.Exit(1)
	}

	go hub.Run(ctx)
	go func() {
		if err := sim.Run(ctx); err != nil {
			logger.Error("Simulation loop failed", "error", err)
		}
	}()

	// Initialize services.
	simulationService := service.NewSimulationService(sim, dispatcher, service.Defaults{
		Capacity: cfg.DefaultCapacity,
		VIPSeats: cfg.DefaultVIPSeats,
	})

	// Initialize handlers.
	h := handlers.NewHandler(simulationService, logger)

	// Create router.
	r := router.SetupRouter(h, hub)

	// Create HTTP server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine.
	go func() {
		logger.Info("API server starting", "port", cfg.Port, "simulationTime", cfg.SimStart.Format(time.RFC3339), "secondsPerTick", cfg.SimSpeed)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	cancel()
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("Event queue not drained", "error", err, "dropped", dispatcher.Dropped())
	}

	logger.Info("Server stopped")
}
