package settings

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
)

// Handler handles settings-related API requests
type Handler struct {
	DB *sql.DB
}

// NewHandler creates a new settings handler
func NewHandler(database *sql.DB) *Handler {
	return &Handler{DB: database}
}

// GetAll handles GET /api/settings
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("grouped") == "true" {
		grouped, err := AllGrouped(h.DB)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, grouped)
		return
	}

	all, err := All(h.DB)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, all)
}

// GetOne handles GET /api/settings/{category}/{key}
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	key := r.PathValue("key")
	if category == "" || key == "" {
		http.Error(w, "category and key are required", http.StatusBadRequest)
		return
	}

	setting, err := Get(h.DB, category, key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if setting == nil {
		http.Error(w, "setting not found", http.StatusNotFound)
		return
	}
	respondJSON(w, setting)
}

// UpdateOne handles PUT /api/settings/{category}/{key}
func (h *Handler) UpdateOne(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	key := r.PathValue("key")
	if category == "" || key == "" {
		http.Error(w, "category and key are required", http.StatusBadRequest)
		return
	}

	var update SettingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := Update(h.DB, category, key, update.Value); err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	setting, err := Get(h.DB, category, key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, setting)
}

// ResetAllHandler handles POST /api/settings/reset
func (h *Handler) ResetAllHandler(w http.ResponseWriter, r *http.Request) {
	if err := ResetAll(h.DB); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	grouped, err := AllGrouped(h.DB)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]interface{}{
		"message":  "all settings reset to defaults",
		"settings": grouped,
	})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
