package handlers

import (
	"net/http"
	"strconv"
	"time"

	"blumn/internal/care"
	"blumn/internal/db"
	"blumn/internal/settings"
)

// GetForecast returns the day-indexed care timeline for one plant and
// care kind: the recent history window, today's anchor, and the
// predicted next event.
func (a *API) GetForecast(w http.ResponseWriter, r *http.Request) {
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

	pastDays := settings.GetInt(a.DB, "forecast", "past_days", 30)
	futureDays := settings.GetInt(a.DB, "forecast", "future_days", 10)
	if pd, bad := intParam(r, "past_days"); bad {
		JSONError(w, "past_days must be a positive integer", http.StatusBadRequest)
		return
	} else if pd > 0 {
		pastDays = pd
	}
	if fd, bad := intParam(r, "future_days"); bad {
		JSONError(w, "future_days must be a positive integer", http.StatusBadRequest)
		return
	} else if fd > 0 {
		futureDays = fd
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

	forecast, err := care.Forecast(dates, p.Days, time.Now().UTC(), pastDays, futureDays)
	if err != nil {
		if badInput(err) {
			JSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	JSONResponse(w, map[string]interface{}{
		"plant_id":    plant.ID,
		"kind":        kind,
		"periodicity": p,
		"window":      forecast,
	})
}

// intParam reads an optional positive-integer query parameter. The
// second return is true when the value is present but invalid.
func intParam(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, true
	}
	return n, false
}
