package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Rus1K7/Airport/internal/service"
	"github.com/Rus1K7/Airport/internal/simerr"
	"github.com/Rus1K7/Airport/shared/models"
	"github.com/gorilla/mux"
)

const codeInvalidRequest = "InvalidRequest"

// Handler contains HTTP handlers for the API.
type Handler struct {
	simulationService service.SimulationService
	logger            *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(simulationService service.SimulationService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		simulationService: simulationService,
		logger:            logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Response helpers.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: message, Code: codeInvalidRequest})
}

// respondError maps a domain failure to its HTTP status.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		h.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondJSON(w, status, errorResponse{Error: err.Error(), Code: simerr.CodeOf(err)})
}

func statusFor(err error) int {
	switch simerr.KindOf(err) {
	case simerr.KindNotFound:
		return http.StatusNotFound
	case simerr.KindInvalidState, simerr.KindCapacityExceeded:
		return http.StatusConflict
	case simerr.KindValidation:
		return http.StatusBadRequest
	case simerr.KindOwnershipMismatch:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func decode(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// GetTime handles GET /v1/simulation/time.
func (h *Handler) GetTime(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.simulationService.GetTime(r.Context()))
}

// SetTime handles POST /v1/simulation/time.
func (h *Handler) SetTime(w http.ResponseWriter, r *http.Request) {
	var req models.SimulationTime
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if req.SimulationTime.IsZero() {
		respondBadRequest(w, "simulation_time is required")
		return
	}

	now, err := h.simulationService.SetTime(r.Context(), req.SimulationTime)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, now)
}

// AdvanceTime handles POST /v1/simulation/advance.
func (h *Handler) AdvanceTime(w http.ResponseWriter, r *http.Request) {
	var req models.AdvanceRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	now, err := h.simulationService.AdvanceTime(r.Context(), req.Minutes)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, now)
}

// SetSpeed handles PATCH /v1/simulation/speed.
func (h *Handler) SetSpeed(w http.ResponseWriter, r *http.Request) {
	var req models.SpeedRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	status, err := h.simulationService.SetSpeed(r.Context(), req.Speed)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// GetStatus handles GET /v1/simulation/status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.simulationService.GetStatus(r.Context()))
}

// PauseSimulation handles POST /v1/simulation/pause.
func (h *Handler) PauseSimulation(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.simulationService.Pause(r.Context()))
}

// ResumeSimulation handles POST /v1/simulation/resume.
func (h *Handler) ResumeSimulation(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.simulationService.Resume(r.Context()))
}

// GetFlights handles GET /v1/flights.
func (h *Handler) GetFlights(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.simulationService.GetFlights(r.Context()))
}

// GetFlight handles GET /v1/flights/{flightId}.
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	flight, err := h.simulationService.GetFlight(r.Context(), mux.Vars(r)["flightId"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// CreateFlight handles POST /v1/flights.
func (h *Handler) CreateFlight(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFlightRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	flight, err := h.simulationService.CreateFlight(r.Context(), &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, flight)
}

// DelayFlight handles POST /v1/flights/{flightId}/delay.
func (h *Handler) DelayFlight(w http.ResponseWriter, r *http.Request) {
	var req models.DelayFlightRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if req.ScheduledTime.IsZero() {
		respondBadRequest(w, "scheduledTime is required")
		return
	}

	flight, err := h.simulationService.DelayFlight(r.Context(), mux.Vars(r)["flightId"], req.ScheduledTime)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// GetTickets handles GET /v1/tickets.
func (h *Handler) GetTickets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	respondJSON(w, http.StatusOK, h.simulationService.GetTickets(r.Context(), q.Get("passengerId"), q.Get("flightId")))
}

// GetPassengerTickets handles GET /v1/tickets/passenger/{passengerId}.
func (h *Handler) GetPassengerTickets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.simulationService.GetTickets(r.Context(), mux.Vars(r)["passengerId"], ""))
}

// GetTicket handles GET /v1/tickets/{ticketId}.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.simulationService.GetTicket(r.Context(), mux.Vars(r)["ticketId"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// BuyTicket handles POST /v1/tickets/buy.
func (h *Handler) BuyTicket(w http.ResponseWriter, r *http.Request) {
	var req models.BuyTicketRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	ticket, err := h.simulationService.BuyTicket(r.Context(), &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// RefundTicket handles POST /v1/tickets/refund?ticketId=&passengerId=.
func (h *Handler) RefundTicket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ticketID, passengerID := q.Get("ticketId"), q.Get("passengerId")
	if ticketID == "" || passengerID == "" {
		respondBadRequest(w, "ticketId and passengerId are required")
		return
	}

	ticket, err := h.simulationService.RefundTicket(r.Context(), ticketID, passengerID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// GetPassengers handles GET /v1/passengers.
func (h *Handler) GetPassengers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.simulationService.GetPassengers(r.Context(), r.URL.Query().Get("flightId")))
}

// GetPassenger handles GET /v1/passengers/{passengerId}.
func (h *Handler) GetPassenger(w http.ResponseWriter, r *http.Request) {
	p, err := h.simulationService.GetPassenger(r.Context(), mux.Vars(r)["passengerId"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Reconcile handles GET /v1/passengers/{passengerId}/reconcile.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	rec, err := h.simulationService.Reconcile(r.Context(), mux.Vars(r)["passengerId"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
