package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"blumn/internal/care"
	"blumn/internal/db"
	"blumn/internal/events"
	"blumn/internal/models"
	"blumn/internal/settings"
)

// RecordCare appends a care event for a plant. The date defaults to
// today; re-submitting the same (day, kind) is a no-op, not an error.
func (a *API) RecordCare(w http.ResponseWriter, r *http.Request) {
	plant, ok := a.lookupPlant(w, r)
	if !ok {
		return
	}

	var req struct {
		Kind     string `json:"kind"`
		Date     string `json:"date,omitempty"` // YYYY-MM-DD
		AmountML int    `json:"amount_ml,omitempty"`
		Note     string `json:"note,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	kind, err := care.ParseKind(req.Kind)
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	careDate := care.Day(time.Now().UTC())
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			JSONError(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		careDate = care.Day(parsed)
	}

	event := &models.CareEvent{
		PlantID:  plant.ID,
		CareDate: careDate,
		Kind:     string(kind),
		AmountML: req.AmountML,
		Note:     req.Note,
	}

	inserted, err := db.RecordCareEvent(a.DB, event)
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if inserted {
		a.Bus.Publish(events.Event{
			Type:      events.CareRecorded,
			Severity:  events.SeverityInfo,
			PlantID:   plant.ID,
			PlantName: plant.Name,
			CareKind:  string(kind),
			Message:   fmt.Sprintf("Recorded %s for %s", kind, plant.Name),
		})
		log.Printf("💧 Care recorded: %s %s on %s", plant.Name, kind, careDate.Format("2006-01-02"))
	}

	JSONResponse(w, map[string]interface{}{
		"recorded":  inserted,
		"duplicate": !inserted,
		"event":     event,
	})
}

// ListCare returns a plant's care history, newest first.
func (a *API) ListCare(w http.ResponseWriter, r *http.Request) {
	plant, ok := a.lookupPlant(w, r)
	if !ok {
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind != "" {
		if _, err := care.ParseKind(kind); err != nil {
			JSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	eventsList, err := db.ListCareEvents(a.DB, plant.ID, kind, limit)
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	JSONResponse(w, map[string]interface{}{
		"plant_id": plant.ID,
		"events":   eventsList,
		"count":    len(eventsList),
	})
}

// GetPeriodicity returns the estimated care interval for one care kind.
func (a *API) GetPeriodicity(w http.ResponseWriter, r *http.Request) {
	plant, ok := a.lookupPlant(w, r)
	if !ok {
		return
	}

	kind, ok := a.parseKindParam(w, r)
	if !ok {
		return
	}
	method, window, ok := a.estimatorParams(w, r)
	if !ok {
		return
	}

	dates, err := db.CareEventDates(a.DB, plant.ID, string(kind))
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	p, err := care.ResolvePeriodicity(dates, method, window, care.DefaultDays(a.DB, *plant, kind))
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	JSONResponse(w, map[string]interface{}{
		"plant_id":    plant.ID,
		"kind":        kind,
		"periodicity": p,
		"event_count": len(dates),
	})
}

// parseKindParam reads and validates the ?kind= query parameter.
func (a *API) parseKindParam(w http.ResponseWriter, r *http.Request) (care.Kind, bool) {
	raw := r.URL.Query().Get("kind")
	if raw == "" {
		raw = string(care.KindWater)
	}
	kind, err := care.ParseKind(raw)
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return kind, true
}

// estimatorParams resolves the estimation method and moving-average
// window, letting query parameters override the stored settings.
func (a *API) estimatorParams(w http.ResponseWriter, r *http.Request) (care.Method, int, bool) {
	method := care.Method(settings.GetString(a.DB, "forecast", "method", string(care.MethodMovingAverage)))
	if m := r.URL.Query().Get("method"); m != "" {
		switch care.Method(m) {
		case care.MethodMean, care.MethodMovingAverage:
			method = care.Method(m)
		default:
			JSONError(w, "method must be mean or moving_average", http.StatusBadRequest)
			return "", 0, false
		}
	}

	window := settings.GetInt(a.DB, "forecast", "moving_average_window", care.DefaultMovingAverageWindow)
	if ws := r.URL.Query().Get("window"); ws != "" {
		n, err := strconv.Atoi(ws)
		if err != nil || n <= 0 {
			JSONError(w, "window must be a positive integer", http.StatusBadRequest)
			return "", 0, false
		}
		window = n
	}

	return method, window, true
}

// badInput reports whether an engine error is the caller's fault.
func badInput(err error) bool {
	return errors.Is(err, care.ErrInvalidInput)
}
