package router

import (
	"net/http"

	"github.com/Rus1K7/Airport/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
)

// SetupRouter creates and configures the HTTP router. feed serves the
// websocket board and may be nil.
func SetupRouter(h *handlers.Handler, feed http.Handler) *mux.Router {
	r := mux.NewRouter()

	// CORS middleware.
	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Simulation clock.
	v1.HandleFunc("/simulation/time", h.GetTime).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/simulation/time", h.SetTime).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/simulation/advance", h.AdvanceTime).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/simulation/speed", h.SetSpeed).Methods(http.MethodPatch, http.MethodOptions)
	v1.HandleFunc("/simulation/status", h.GetStatus).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/simulation/pause", h.PauseSimulation).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/simulation/resume", h.ResumeSimulation).Methods(http.MethodPost, http.MethodOptions)

	// WebSocket for the live departure board.
	if feed != nil {
		v1.Handle("/flights/ws", feed)
	}

	// Flights.
	v1.HandleFunc("/flights", h.GetFlights).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/flights", h.CreateFlight).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/flights/{flightId}", h.GetFlight).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/flights/{flightId}/delay", h.DelayFlight).Methods(http.MethodPost, http.MethodOptions)

	// Tickets.
	v1.HandleFunc("/tickets", h.GetTickets).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/tickets/buy", h.BuyTicket).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/tickets/refund", h.RefundTicket).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/tickets/passenger/{passengerId}", h.GetPassengerTickets).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/tickets/{ticketId}", h.GetTicket).Methods(http.MethodGet, http.MethodOptions)

	// Passengers.
	v1.HandleFunc("/passengers", h.GetPassengers).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/passengers/{passengerId}", h.GetPassenger).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/passengers/{passengerId}/reconcile", h.Reconcile).Methods(http.MethodGet, http.MethodOptions)

	// Admin console commands.
	r.PathPrefix("/ui/").Handler(adminRouter(h))

	// Health check.
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	return r
}

// adminRouter serves the form-encoded /ui commands.
func adminRouter(h *handlers.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/ui", func(r chi.Router) {
		r.Post("/toggle_vip", h.ToggleVIP)
		r.Post("/fake_ticket", h.FakeTicket)
		r.Post("/create_passenger", h.CreatePassenger)
		r.Post("/create_bulk_passengers", h.CreateBulkPassengers)
		r.Post("/register_all", h.RegisterAll)
	})
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
