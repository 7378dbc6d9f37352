package events

import "time"

// EventType identifies the kind of event being published.
type EventType string

const (
	// Care lifecycle
	CareRecorded EventType = "care_recorded"
	PlantCreated EventType = "plant_created"
	PlantDeleted EventType = "plant_deleted"

	// Schedule state
	CareDue     EventType = "care_due"
	CareOverdue EventType = "care_overdue"

	// Data management
	ImportCompleted EventType = "import_completed"
)

// Severity indicates the urgency of an event.
type Severity int

const (
	SeverityInfo    Severity = 0
	SeverityWarning Severity = 1
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Event is the payload published through the bus.
type Event struct {
	Type      EventType         `json:"type"`
	Severity  Severity          `json:"severity"`
	PlantID   string            `json:"plant_id,omitempty"`
	PlantName string            `json:"plant_name,omitempty"`
	CareKind  string            `json:"care_kind,omitempty"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
