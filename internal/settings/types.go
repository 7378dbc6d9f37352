package settings

import "time"

// Setting is one tunable value stored in the database.
type Setting struct {
	ID          int64     `json:"id"`
	Category    string    `json:"category"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	ValueType   string    `json:"value_type"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SettingUpdate is the body of a settings update request.
type SettingUpdate struct {
	Value string `json:"value"`
}

// Grouped maps category → settings, for the settings page.
type Grouped map[string][]Setting
