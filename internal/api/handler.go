// Package api exposes the places service over HTTP with JSON bodies.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/wayfarer/internal/catalog"
	"github.com/UnknownOlympus/wayfarer/internal/geo"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/UnknownOlympus/wayfarer/internal/ranking"
	"github.com/UnknownOlympus/wayfarer/internal/service"
	"github.com/UnknownOlympus/wayfarer/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PlacesService is the behavior the handlers need from service.PlacesService.
type PlacesService interface {
	Options() catalog.Options
	Filter(sessionID string, predicate models.FilterPredicate) (service.FilterResult, error)
	NewSession() string
	SetLocation(sessionID string, coords models.Coordinates) error
	RankNearest(ctx context.Context, sessionID string, topN int) ([]models.Place, error)
	RefinePlace(ctx context.Context, sessionID, name string) (models.Place, error)
}

// HealthCheck reports whether the backing resources are usable.
type HealthCheck func(ctx context.Context) error

type handler struct {
	log    *slog.Logger
	svc    PlacesService
	health HealthCheck
}

// NewHandler builds the HTTP routes of the service, including /healthz and /metrics.
// health may be nil.
func NewHandler(log *slog.Logger, svc PlacesService, reg *prometheus.Registry, health HealthCheck) http.Handler {
	h := &handler{log: log, svc: svc, health: health}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/places", h.listPlaces)
	mux.HandleFunc("GET /api/options", h.options)
	mux.HandleFunc("POST /api/sessions", h.createSession)
	mux.HandleFunc("PUT /api/sessions/{id}/location", h.setLocation)
	mux.HandleFunc("POST /api/sessions/{id}/nearest", h.nearest)
	mux.HandleFunc("POST /api/sessions/{id}/places/{name}/distance", h.refinePlace)
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return mux
}

func (h *handler) listPlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	predicate, err := parsePredicate(query["type"], query["budget"], query["distance"])
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := h.svc.Filter(query.Get("session"), predicate)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, result)
}

func (h *handler) options(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.svc.Options())
}

func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusCreated, map[string]string{"id": h.svc.NewSession()})
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *handler) setLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid location body: %w", err))
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		h.writeError(w, r, http.StatusBadRequest, errors.New("latitude and longitude are required"))
		return
	}

	coords := models.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if err := h.svc.SetLocation(r.PathValue("id"), coords); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) nearest(w http.ResponseWriter, r *http.Request) {
	topN := 0
	if raw := r.URL.Query().Get("top"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("top must be a positive integer, got %q", raw))
			return
		}
		topN = value
	}

	places, err := h.svc.RankNearest(r.Context(), r.PathValue("id"), topN)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{"places": places})
}

func (h *handler) refinePlace(w http.ResponseWriter, r *http.Request) {
	place, err := h.svc.RefinePlace(r.Context(), r.PathValue("id"), r.PathValue("name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, place)
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	h.log.DebugContext(r.Context(), "Performing health checks...")
	status, body := http.StatusOK, "OK"
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		h.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

// fail maps domain errors onto HTTP statuses.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, service.ErrPlaceNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrLocationAlreadySet), errors.Is(err, session.ErrRefineInFlight):
		status = http.StatusConflict
	case errors.Is(err, geo.ErrInvalidCoordinates):
		status = http.StatusBadRequest
	case errors.Is(err, ranking.ErrLocationUnavailable), errors.Is(err, ranking.ErrNoCoordinates):
		status = http.StatusUnprocessableEntity
	}

	h.writeError(w, r, status, err)
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	} else {
		h.log.DebugContext(r.Context(), "Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	h.writeJSON(w, r, status, map[string]string{"error": err.Error()})
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

// parsePredicate reads repeated or comma separated type values and "min-max" ranges.
func parsePredicate(types, budgets, distances []string) (models.FilterPredicate, error) {
	var predicate models.FilterPredicate

	for _, value := range types {
		for _, label := range strings.Split(value, ",") {
			if label = strings.TrimSpace(label); label != "" {
				predicate.Categories = append(predicate.Categories, label)
			}
		}
	}

	var err error
	if predicate.Prices, err = parseRanges("budget", budgets); err != nil {
		return models.FilterPredicate{}, err
	}
	if predicate.Distances, err = parseRanges("distance", distances); err != nil {
		return models.FilterPredicate{}, err
	}

	return predicate, nil
}

func parseRanges(param string, values []string) ([]models.Range, error) {
	var ranges []models.Range
	for _, value := range values {
		lower, upper, found := strings.Cut(value, "-")
		if !found {
			return nil, fmt.Errorf("%s must look like min-max, got %q", param, value)
		}

		minValue, errMin := strconv.ParseFloat(strings.TrimSpace(lower), 64)
		maxValue, errMax := strconv.ParseFloat(strings.TrimSpace(upper), 64)
		if errMin != nil || errMax != nil || minValue > maxValue {
			return nil, fmt.Errorf("%s must look like min-max, got %q", param, value)
		}

		ranges = append(ranges, models.Range{Label: value, Min: minValue, Max: maxValue})
	}

	return ranges, nil
}
