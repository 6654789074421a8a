package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tripmate/tripmate-go/internal/model"
	"github.com/tripmate/tripmate-go/internal/service"
)

// TripHandler handles HTTP requests for trip metadata, the REST collaborator
// the itinerary client reads trip bounds from.
type TripHandler struct {
	service *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(svc *service.TripService) *TripHandler {
	return &TripHandler{service: svc}
}

// HandleGetTrip handles GET /api/v1/trips/{trip_id} requests.
func (h *TripHandler) HandleGetTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := strconv.ParseInt(chi.URLParam(r, "trip_id"), 10, 64)
	if err != nil || tripID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid trip id"))
		return
	}

	resp, err := h.service.GetTrip(r.Context(), tripID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTripNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdateTrip handles PUT /api/v1/trips/{trip_id} requests.
func (h *TripHandler) HandleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := strconv.ParseInt(chi.URLParam(r, "trip_id"), 10, 64)
	if err != nil || tripID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid trip id"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.UpdateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	resp, err := h.service.UpdateTrip(r.Context(), tripID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTripNameRequired), errors.Is(err, service.ErrInvalidTripDates):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrTripNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}
