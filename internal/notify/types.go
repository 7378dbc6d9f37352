package notify

import "time"

// Service is a configured Shoutrrr destination.
type Service struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	ServiceType     string    `json:"service_type"`
	ConfigJSON      string    `json:"config_json"`
	Enabled         bool      `json:"enabled"`
	NotifyOnOverdue bool      `json:"notify_on_overdue"`  // missed/overdue care (warning)
	NotifyOnActivity bool     `json:"notify_on_activity"` // recorded care, imports (info)
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Record is one row of delivery history.
type Record struct {
	ID           int64     `json:"id"`
	ServiceID    int64     `json:"service_id"`
	EventType    string    `json:"event_type"`
	PlantName    string    `json:"plant_name,omitempty"`
	CareKind     string    `json:"care_kind,omitempty"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	SentAt       time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
