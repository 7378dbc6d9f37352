package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"blumn/internal/auth"
	"blumn/internal/db"
	"blumn/internal/events"
	"blumn/internal/models"
)

// ListPlants returns every plant with its care status roll-up.
func (a *API) ListPlants(w http.ResponseWriter, r *http.Request) {
	plants, err := db.ListPlants(a.DB)
	if err != nil {
		JSONError(w, "Failed to list plants: "+err.Error(), http.StatusInternalServerError)
		return
	}

	today := time.Now().UTC()
	statuses := make([]*models.PlantStatus, 0, len(plants))
	for _, p := range plants {
		status, err := db.PlantStatus(a.DB, p, today)
		if err != nil {
			JSONError(w, "Failed to compute status: "+err.Error(), http.StatusInternalServerError)
			return
		}
		statuses = append(statuses, status)
	}

	JSONResponse(w, map[string]interface{}{
		"plants": statuses,
		"count":  len(statuses),
	})
}

// GetPlant returns one plant with its care status roll-up.
func (a *API) GetPlant(w http.ResponseWriter, r *http.Request) {
	plant, ok := a.lookupPlant(w, r)
	if !ok {
		return
	}

	status, err := db.PlantStatus(a.DB, *plant, time.Now().UTC())
	if err != nil {
		JSONError(w, "Failed to compute status: "+err.Error(), http.StatusInternalServerError)
		return
	}
	JSONResponse(w, status)
}

// CreatePlant registers a new plant.
func (a *API) CreatePlant(w http.ResponseWriter, r *http.Request) {
	var req models.Plant
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := db.CreatePlant(a.DB, &req); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			JSONError(w, err.Error(), http.StatusConflict)
			return
		}
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	a.Bus.Publish(events.Event{
		Type:      events.PlantCreated,
		Severity:  events.SeverityInfo,
		PlantID:   req.ID,
		PlantName: req.Name,
		Message:   "Added plant " + req.Name,
	})

	log.Printf("🌱 Plant created: %s", req.Name)
	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, req)
}

// UpdatePlant changes a plant's name, schedules, size, or notes.
func (a *API) UpdatePlant(w http.ResponseWriter, r *http.Request) {
	plant, ok := a.lookupPlant(w, r)
	if !ok {
		return
	}

	var req models.Plant
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.ID = plant.ID

	if err := db.UpdatePlant(a.DB, &req); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			JSONError(w, "A plant with that name already exists", http.StatusConflict)
			return
		}
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := db.GetPlant(a.DB, plant.ID)
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	JSONResponse(w, updated)
}

// CreateDeleteToken issues a single-use confirmation token for deleting
// a plant. Deletion drops the plant's full care history, so the client
// must echo this token back in X-Confirm-Token.
func (a *API) CreateDeleteToken(w http.ResponseWriter, r *http.Request) {
	plant, ok := a.lookupPlant(w, r)
	if !ok {
		return
	}

	tok, err := a.Confirm.Create(sessionToken(r, a.Cfg.AuthEnabled), plant.ID, 5*time.Minute)
	if err != nil {
		JSONError(w, "Failed to create confirmation token: "+err.Error(), http.StatusInternalServerError)
		return
	}
	JSONResponse(w, tok)
}

// DeletePlant removes a plant and, via cascade, its care history.
func (a *API) DeletePlant(w http.ResponseWriter, r *http.Request) {
	plant, ok := a.lookupPlant(w, r)
	if !ok {
		return
	}

	confirm := r.Header.Get("X-Confirm-Token")
	if confirm == "" {
		JSONError(w, "X-Confirm-Token header is required", http.StatusBadRequest)
		return
	}
	if err := a.Confirm.Validate(confirm, sessionToken(r, a.Cfg.AuthEnabled), plant.ID); err != nil {
		JSONError(w, err.Error(), http.StatusForbidden)
		return
	}

	if err := db.DeletePlant(a.DB, plant.ID); err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	a.Bus.Publish(events.Event{
		Type:      events.PlantDeleted,
		Severity:  events.SeverityInfo,
		PlantID:   plant.ID,
		PlantName: plant.Name,
		Message:   "Removed plant " + plant.Name,
	})

	log.Printf("🗑️  Plant deleted: %s", plant.Name)
	JSONResponse(w, map[string]string{"status": "deleted"})
}

// lookupPlant resolves the {id} path value to a plant, writing the
// error response itself when it cannot.
func (a *API) lookupPlant(w http.ResponseWriter, r *http.Request) (*models.Plant, bool) {
	id := r.PathValue("id")
	if id == "" {
		JSONError(w, "Plant id is required", http.StatusBadRequest)
		return nil, false
	}

	plant, err := db.GetPlant(a.DB, id)
	if err != nil {
		JSONError(w, "Failed to look up plant: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if plant == nil {
		JSONError(w, "Plant not found", http.StatusNotFound)
		return nil, false
	}
	return plant, true
}

// sessionToken extracts the caller's session token for confirm-token
// binding. With auth disabled there is no session; a fixed value keeps
// the single-use semantics working.
func sessionToken(r *http.Request, authEnabled bool) string {
	if !authEnabled {
		return "local"
	}
	if s := auth.GetSessionFromRequest(r); s != nil {
		return s.Token
	}
	return ""
}
