package models

import "time"

// Plant is a tracked plant. IDs are UUIDs assigned at creation; names
// are unique because the Excel sheet keys everything on them.
type Plant struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	WateringSchedule   int       `json:"watering_schedule"`   // fallback interval in days
	FertilizingSchedule int      `json:"fertilizing_schedule"` // fallback interval in days
	Size               string    `json:"size,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CareEvent is one recorded care activity on one calendar day.
// Events are append-only history; they are never mutated.
type CareEvent struct {
	ID       int64     `json:"id"`
	PlantID  string    `json:"plant_id"`
	CareDate time.Time `json:"care_date"`
	Kind     string    `json:"kind"`
	AmountML int       `json:"amount_ml,omitempty"` // water volume, when recorded
	Note     string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PlantStatus is the roll-up the dashboard renders per plant.
type PlantStatus struct {
	Plant
	LastWatered         *time.Time `json:"last_watered,omitempty"`
	LastFertilized      *time.Time `json:"last_fertilized,omitempty"`
	DaysSinceWatering   *int       `json:"days_since_watering,omitempty"`
	DaysSinceFertilizing *int      `json:"days_since_fertilizing,omitempty"`
	NeedsWater          bool       `json:"needs_water"`
	NeedsFertilizer     bool       `json:"needs_fertilizer"`
}

// User is an account that can sign in to the web UI.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is an active login session.
type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}
