package handlers

import (
	"net/http"
	"time"

	"blumn/internal/auth"
	"blumn/internal/live"
	"blumn/internal/middleware"
	"blumn/internal/settings"
)

// RegisterRoutes wires every API endpoint onto the mux. Endpoints behind
// protect require a valid session when auth is enabled.
func RegisterRoutes(mux *http.ServeMux, api *API, hub *live.Hub) {
	cfg := api.Cfg
	protect := func(next http.HandlerFunc) http.HandlerFunc {
		return auth.Middleware(cfg, next)
	}

	// Public endpoints
	mux.HandleFunc("GET /health", Health)
	mux.HandleFunc("GET /api/version", GetVersion)

	// Auth
	loginLimiter := middleware.NewRateLimiter(5, time.Minute)
	mux.HandleFunc("GET /api/auth/status", auth.Status(cfg))
	mux.HandleFunc("POST /api/auth/login", loginLimiter.Limit(auth.Login(cfg)))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.HandleFunc("GET /api/auth/user", protect(auth.GetCurrentUser))
	mux.HandleFunc("POST /api/auth/change-password", protect(auth.ChangePassword))
	mux.HandleFunc("POST /api/auth/change-username", protect(auth.ChangeUsername))

	// Plants
	mux.HandleFunc("GET /api/plants", protect(api.ListPlants))
	mux.HandleFunc("POST /api/plants", protect(api.CreatePlant))
	mux.HandleFunc("GET /api/plants/{id}", protect(api.GetPlant))
	mux.HandleFunc("PUT /api/plants/{id}", protect(api.UpdatePlant))
	mux.HandleFunc("POST /api/plants/{id}/delete-token", protect(api.CreateDeleteToken))
	mux.HandleFunc("DELETE /api/plants/{id}", protect(api.DeletePlant))

	// Care history and forecast
	mux.HandleFunc("POST /api/plants/{id}/care", protect(api.RecordCare))
	mux.HandleFunc("GET /api/plants/{id}/care", protect(api.ListCare))
	mux.HandleFunc("GET /api/plants/{id}/periodicity", protect(api.GetPeriodicity))
	mux.HandleFunc("GET /api/plants/{id}/forecast", protect(api.GetForecast))

	// Excel import, capped at 16 MiB uploads
	mux.HandleFunc("POST /api/import/excel", protect(middleware.MaxBytes(16<<20, api.ImportExcel)))

	// Notifications
	mux.HandleFunc("GET /api/notifications/providers", protect(api.GetNotificationProviders))
	mux.HandleFunc("GET /api/notifications/services", protect(api.ListNotificationServices))
	mux.HandleFunc("GET /api/notifications/services/{id}", protect(api.GetNotificationService))
	mux.HandleFunc("POST /api/notifications/services", protect(api.CreateNotificationService))
	mux.HandleFunc("PUT /api/notifications/services/{id}", protect(api.UpdateNotificationService))
	mux.HandleFunc("DELETE /api/notifications/services/{id}", protect(api.DeleteNotificationService))
	mux.HandleFunc("POST /api/notifications/test", protect(api.TestNotification))
	mux.HandleFunc("GET /api/notifications/history", protect(api.GetNotificationHistory))

	// Settings
	settingsHandler := settings.NewHandler(api.DB)
	mux.HandleFunc("GET /api/settings", protect(settingsHandler.GetAll))
	mux.HandleFunc("GET /api/settings/{category}/{key}", protect(settingsHandler.GetOne))
	mux.HandleFunc("PUT /api/settings/{category}/{key}", protect(settingsHandler.UpdateOne))
	mux.HandleFunc("POST /api/settings/reset", protect(settingsHandler.ResetAllHandler))

	// Live event stream
	mux.HandleFunc("GET /ws", protect(hub.HandleConnection))

	// Frontend
	mux.HandleFunc("/", StaticFiles(cfg))
}
