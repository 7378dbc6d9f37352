package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"blumn/internal/auth"
	"blumn/internal/config"
	"blumn/internal/events"
)

// API bundles the dependencies the HTTP handlers need.
type API struct {
	DB      *sql.DB
	Bus     *events.Bus
	Confirm *auth.ConfirmTokenService
	Cfg     config.Config
}

// JSONResponse sends a JSON response
func JSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("⚠️  Failed to encode JSON response: %v", err)
	}
}

// JSONError sends a JSON error response
func JSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
