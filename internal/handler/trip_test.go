package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func tripRouter() *chi.Mux {
	h := NewTripHandler(nil)
	r := chi.NewRouter()
	r.Get("/api/v1/trips/{trip_id}", h.HandleGetTrip)
	r.Put("/api/v1/trips/{trip_id}", h.HandleUpdateTrip)
	return r
}

func TestHandleGetTripRejectsBadID(t *testing.T) {
	router := tripRouter()

	for _, id := range []string{"abc", "0", "-4"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/trips/"+id, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("trip id %q: status = %d, want %d", id, rec.Code, http.StatusBadRequest)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("trip id %q: content type = %q", id, ct)
		}
	}
}

func TestHandleUpdateTripRejectsBadID(t *testing.T) {
	router := tripRouter()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/trips/nope", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleUpdateTripRejectsMalformedBody(t *testing.T) {
	router := tripRouter()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/trips/1", strings.NewReader(`{"name":`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "invalid request body") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandleUpdateTripRejectsOversizedBody(t *testing.T) {
	router := tripRouter()

	body := `{"name":"` + strings.Repeat("x", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/trips/1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}
