package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Rus1K7/Airport/internal/simerr"
	"github.com/Rus1K7/Airport/shared/models"
)

// DefaultRedirect is where admin commands land when the form names no target.
const DefaultRedirect = "/ui/passengers"

// redirectTarget accepts only local paths so a form cannot send the
// browser elsewhere.
func redirectTarget(r *http.Request) *url.URL {
	raw := r.PostFormValue("redirect")
	if raw != "" && strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		if u, err := url.Parse(raw); err == nil && u.Host == "" {
			return u
		}
	}
	u, _ := url.Parse(DefaultRedirect)
	return u
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, err error, extra url.Values) {
	target := redirectTarget(r)
	q := target.Query()
	if err != nil {
		q.Set("status", "failure")
		q.Set("error", simerr.CodeOf(err))
		h.logger.Info("admin command failed", "path", r.URL.Path, "error", err)
	} else {
		q.Set("status", "success")
	}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}

func formBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.PostFormValue(key)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

func passengerForm(r *http.Request) (*models.CreatePassengerRequest, error) {
	req := &models.CreatePassengerRequest{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		FlightID: r.PostFormValue("flightId"),
		MenuType: r.PostFormValue("menuType"),
		IsVIP:    formBool(r, "isVIP"),
	}
	if raw := r.PostFormValue("baggageWeight"); raw != "" {
		w, err := strconv.Atoi(raw)
		if err != nil {
			return nil, simerr.New(simerr.ErrInvalidBaggage, "baggage weight %q is not a number", raw)
		}
		req.BaggageWeight = w
	}
	return req, nil
}

func requireForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return simerr.New(simerr.ErrInvalidPassenger, "malformed form: %v", err)
	}
	return nil
}

// ToggleVIP handles POST /ui/toggle_vip.
func (h *Handler) ToggleVIP(w http.ResponseWriter, r *http.Request) {
	if err := requireForm(r); err != nil {
		h.redirect(w, r, err, nil)
		return
	}
	_, err := h.simulationService.ToggleVIP(r.Context(), r.PostFormValue("passengerId"))
	h.redirect(w, r, err, nil)
}

// FakeTicket handles POST /ui/fake_ticket.
func (h *Handler) FakeTicket(w http.ResponseWriter, r *http.Request) {
	if err := requireForm(r); err != nil {
		h.redirect(w, r, err, nil)
		return
	}
	_, err := h.simulationService.FakeTicket(r.Context(), r.PostFormValue("passengerId"))
	h.redirect(w, r, err, nil)
}

// CreatePassenger handles POST /ui/create_passenger.
func (h *Handler) CreatePassenger(w http.ResponseWriter, r *http.Request) {
	if err := requireForm(r); err != nil {
		h.redirect(w, r, err, nil)
		return
	}
	req, err := passengerForm(r)
	if err != nil {
		h.redirect(w, r, err, nil)
		return
	}
	_, err = h.simulationService.CreatePassengers(r.Context(), req)
	h.redirect(w, r, err, nil)
}

// CreateBulkPassengers handles POST /ui/create_bulk_passengers.
func (h *Handler) CreateBulkPassengers(w http.ResponseWriter, r *http.Request) {
	if err := requireForm(r); err != nil {
		h.redirect(w, r, err, nil)
		return
	}
	req, err := passengerForm(r)
	if err != nil {
		h.redirect(w, r, err, nil)
		return
	}
	raw := r.PostFormValue("count")
	count, convErr := strconv.Atoi(raw)
	if convErr != nil || count < 1 {
		h.redirect(w, r, simerr.New(simerr.ErrInvalidCount, "count %q must be a positive number", raw), nil)
		return
	}
	req.Count = count

	result, err := h.simulationService.CreatePassengers(r.Context(), req)
	var extra url.Values
	if result != nil {
		extra = url.Values{"created": {strconv.Itoa(result.Created)}}
	}
	h.redirect(w, r, err, extra)
}

// RegisterAll handles POST /ui/register_all.
func (h *Handler) RegisterAll(w http.ResponseWriter, r *http.Request) {
	if err := requireForm(r); err != nil {
		h.redirect(w, r, err, nil)
		return
	}
	report, err := h.simulationService.RegisterAll(r.Context(), r.PostFormValue("flightId"))
	var extra url.Values
	if report != nil {
		extra = url.Values{
			"checked_in": {strconv.Itoa(report.CheckedIn)},
			"failed":     {strconv.Itoa(report.Failed)},
		}
	}
	h.redirect(w, r, err, extra)
}
