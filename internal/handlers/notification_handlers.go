package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"blumn/internal/notify"
)

// NotifySender is set from main.go to enable test-fire.
// It uses the same Sender interface as the dispatcher.
var NotifySender notify.Sender

// GetNotificationProviders returns the provider field schemas for the frontend wizard.
// GET /api/notifications/providers
func (a *API) GetNotificationProviders(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, notify.GetProviderDefs())
}

// ─── Service CRUD ────────────────────────────────────────────────────────

// serviceRequest is the create/update payload for a notification service.
type serviceRequest struct {
	Name             string            `json:"name"`
	ServiceType      string            `json:"service_type"`
	ConfigFields     map[string]string `json:"config_fields"`
	Enabled          bool              `json:"enabled"`
	NotifyOnOverdue  bool              `json:"notify_on_overdue"`
	NotifyOnActivity bool              `json:"notify_on_activity"`
}

// ListNotificationServices returns all configured services.
// GET /api/notifications/services
func (a *API) ListNotificationServices(w http.ResponseWriter, r *http.Request) {
	services, err := notify.ListServices(a.DB)
	if err != nil {
		log.Printf("❌ List notification services: %v", err)
		JSONError(w, "Failed to list services", http.StatusInternalServerError)
		return
	}
	if services == nil {
		services = []notify.Service{}
	}
	for i := range services {
		services[i].ConfigJSON = maskConfigSecrets(services[i].ServiceType, services[i].ConfigJSON)
	}
	JSONResponse(w, services)
}

// GetNotificationService returns a single service. Password fields in
// config are masked.
// GET /api/notifications/services/{id}
func (a *API) GetNotificationService(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	svc, err := notify.GetService(a.DB, id)
	if err != nil {
		log.Printf("❌ Get notification service: %v", err)
		JSONError(w, "Failed to get service", http.StatusInternalServerError)
		return
	}
	if svc == nil {
		JSONError(w, "Service not found", http.StatusNotFound)
		return
	}

	svc.ConfigJSON = maskConfigSecrets(svc.ServiceType, svc.ConfigJSON)
	JSONResponse(w, svc)
}

// CreateNotificationService adds a new service from structured fields.
// POST /api/notifications/services
func (a *API) CreateNotificationService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.ServiceType == "" {
		JSONError(w, "name and service_type are required", http.StatusBadRequest)
		return
	}
	if req.ConfigFields == nil {
		JSONError(w, "config_fields is required", http.StatusBadRequest)
		return
	}

	configJSON, err := buildConfigJSON(req.ServiceType, req.ConfigFields)
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	svc := &notify.Service{
		Name:             req.Name,
		ServiceType:      req.ServiceType,
		ConfigJSON:       configJSON,
		Enabled:          req.Enabled,
		NotifyOnOverdue:  req.NotifyOnOverdue,
		NotifyOnActivity: req.NotifyOnActivity,
	}

	id, err := notify.CreateService(a.DB, svc)
	if err != nil {
		log.Printf("❌ Create notification service: %v", err)
		JSONError(w, "Failed to create service", http.StatusInternalServerError)
		return
	}

	svc.ID = id
	svc.ConfigJSON = maskConfigSecrets(svc.ServiceType, svc.ConfigJSON)
	log.Printf("🔔 Notification service created: %s (%s)", svc.Name, svc.ServiceType)
	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, svc)
}

// UpdateNotificationService modifies a service.
// PUT /api/notifications/services/{id}
func (a *API) UpdateNotificationService(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	existing, err := notify.GetService(a.DB, id)
	if err != nil {
		JSONError(w, "Failed to get service", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		JSONError(w, "Service not found", http.StatusNotFound)
		return
	}

	configJSON := existing.ConfigJSON
	if req.ConfigFields != nil {
		// Recover masked secrets from the stored config before rebuilding.
		mergeExistingSecrets(req.ServiceType, req.ConfigFields, existing.ConfigJSON)
		configJSON, err = buildConfigJSON(req.ServiceType, req.ConfigFields)
		if err != nil {
			JSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	svc := &notify.Service{
		ID:               id,
		Name:             req.Name,
		ServiceType:      req.ServiceType,
		ConfigJSON:       configJSON,
		Enabled:          req.Enabled,
		NotifyOnOverdue:  req.NotifyOnOverdue,
		NotifyOnActivity: req.NotifyOnActivity,
	}

	if err := notify.UpdateService(a.DB, svc); err != nil {
		log.Printf("❌ Update notification service: %v", err)
		JSONError(w, "Failed to update service", http.StatusInternalServerError)
		return
	}

	JSONResponse(w, map[string]string{"status": "updated"})
}

// DeleteNotificationService removes a service.
// DELETE /api/notifications/services/{id}
func (a *API) DeleteNotificationService(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	if err := notify.DeleteService(a.DB, id); err != nil {
		log.Printf("❌ Delete notification service: %v", err)
		JSONError(w, "Failed to delete service", http.StatusInternalServerError)
		return
	}

	log.Printf("🔔 Notification service deleted: id=%d", id)
	JSONResponse(w, map[string]string{"status": "deleted"})
}

// ─── Test Fire ───────────────────────────────────────────────────────────

// TestNotification sends a test message through the supplied provider
// configuration without saving it.
// POST /api/notifications/test
func (a *API) TestNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ServiceType  string            `json:"service_type"`
		ConfigFields map[string]string `json:"config_fields"`
		Message      string            `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.ServiceType == "" || req.ConfigFields == nil {
		JSONError(w, "service_type and config_fields are required", http.StatusBadRequest)
		return
	}

	testURL, err := notify.BuildShoutrrrURL(req.ServiceType, req.ConfigFields)
	if err != nil {
		JSONResponse(w, map[string]interface{}{
			"success": false,
			"error":   "Invalid configuration: " + err.Error(),
		})
		return
	}

	msg := req.Message
	if msg == "" {
		msg = "Blumn test notification"
	}

	sender := NotifySender
	if sender == nil {
		sender = notify.ShoutrrrSender{}
	}

	if err := sender.Send(testURL, msg); err != nil {
		log.Printf("🔔 Test fire failed: %v", err)
		JSONResponse(w, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	JSONResponse(w, map[string]interface{}{
		"success": true,
		"message": "Test notification sent",
	})
}

// ─── History ─────────────────────────────────────────────────────────────

// GetNotificationHistory returns recent notification records.
// GET /api/notifications/history?limit=50
func (a *API) GetNotificationHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	history, err := notify.RecentHistory(a.DB, limit)
	if err != nil {
		log.Printf("❌ Notification history: %v", err)
		JSONError(w, "Failed to get history", http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []notify.Record{}
	}

	JSONResponse(w, history)
}

// ── helpers ──────────────────────────────────────────────────────────────

func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// buildConfigJSON validates fields, builds the Shoutrrr URL, and returns
// the combined JSON string for config_json storage.
func buildConfigJSON(serviceType string, fields map[string]string) (string, error) {
	if err := notify.ValidateFields(serviceType, fields); err != nil {
		return "", err
	}
	shoutrrrURL, err := notify.BuildShoutrrrURL(serviceType, fields)
	if err != nil {
		return "", err
	}
	cfgData, _ := json.Marshal(map[string]interface{}{
		"shoutrrr_url": shoutrrrURL,
		"fields":       fields,
	})
	return string(cfgData), nil
}

// mergeExistingSecrets replaces masked password placeholder values in fields
// with the actual secrets from the stored config.
func mergeExistingSecrets(serviceType string, fields map[string]string, existingConfigJSON string) {
	var oldCfg struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal([]byte(existingConfigJSON), &oldCfg); err != nil || oldCfg.Fields == nil {
		return
	}

	def, ok := notify.GetProviderDef(serviceType)
	if !ok {
		return
	}
	for _, f := range def.Fields {
		if f.Type == notify.FieldPassword && fields[f.Key] == notify.SecretMask {
			if original, exists := oldCfg.Fields[f.Key]; exists {
				fields[f.Key] = original
			}
		}
	}
}

// maskConfigSecrets masks password fields in a config_json string for API responses.
func maskConfigSecrets(serviceType, configJSON string) string {
	var cfg struct {
		ShoutrrrURL string            `json:"shoutrrr_url"`
		Fields      map[string]string `json:"fields"`
	}
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil || cfg.Fields == nil {
		return configJSON
	}

	masked := notify.MaskSecrets(serviceType, cfg.Fields)
	newCfg, err := json.Marshal(map[string]interface{}{
		"shoutrrr_url": notify.SecretMask,
		"fields":       masked,
	})
	if err != nil {
		return configJSON
	}
	return string(newCfg)
}
