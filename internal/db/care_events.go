package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"blumn/internal/models"
)

// dateLayout is how care dates are stored: calendar days, no time part.
const dateLayout = "2006-01-02"

// RecordCareEvent appends one care event. A second event for the same
// (plant, day, kind) is collapsed silently: history is a set of days,
// and re-submitting a day is not an error.
func RecordCareEvent(db *sql.DB, e *models.CareEvent) (bool, error) {
	result, err := db.Exec(`
		INSERT OR IGNORE INTO care_events (plant_id, care_date, kind, amount_ml, note)
		VALUES (?, ?, ?, NULLIF(?, 0), NULLIF(?, ''))
	`, e.PlantID, e.CareDate.Format(dateLayout), e.Kind, e.AmountML, e.Note)
	if err != nil {
		return false, fmt.Errorf("failed to record care event: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}
	if id, err := result.LastInsertId(); err == nil {
		e.ID = id
	}
	return true, nil
}

// CareEventDates returns the distinct ascending calendar dates on which
// the given kind of care was recorded for a plant. This is exactly the
// series shape the periodicity estimator requires.
func CareEventDates(db *sql.DB, plantID, kind string) ([]time.Time, error) {
	rows, err := db.Query(`
		SELECT DISTINCT care_date
		FROM care_events
		WHERE plant_id = ? AND kind = ?
		ORDER BY care_date ASC
	`, plantID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query care dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan care date: %w", err)
		}
		d, err := parseCareDate(raw)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ListCareEvents returns a plant's full care history, newest first,
// optionally filtered by kind.
func ListCareEvents(db *sql.DB, plantID, kind string, limit int) ([]models.CareEvent, error) {
	query := `
		SELECT id, plant_id, care_date, kind,
			   COALESCE(amount_ml, 0), COALESCE(note, ''), created_at
		FROM care_events
		WHERE plant_id = ?`
	args := []interface{}{plantID}

	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY care_date DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query care events: %w", err)
	}
	defer rows.Close()

	var events []models.CareEvent
	for rows.Next() {
		var e models.CareEvent
		var careDate, createdAt string
		if err := rows.Scan(&e.ID, &e.PlantID, &careDate, &e.Kind, &e.AmountML, &e.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan care event: %w", err)
		}
		if e.CareDate, err = parseCareDate(careDate); err != nil {
			return nil, err
		}
		e.CreatedAt = parseSQLiteTime(createdAt)
		events = append(events, e)
	}
	return events, rows.Err()
}

// LastCareDate returns the most recent date of the given care kind for
// a plant, or nil when none is recorded.
func LastCareDate(db *sql.DB, plantID, kind string) (*time.Time, error) {
	var raw string
	err := db.QueryRow(`
		SELECT MAX(care_date) FROM care_events
		WHERE plant_id = ? AND kind = ?
	`, plantID, kind).Scan(&raw)
	if err == sql.ErrNoRows || raw == "" {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last care date: %w", err)
	}

	d, err := parseCareDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// PlantStatus assembles the dashboard roll-up for one plant: last care
// dates, day counts, and due flags against the plant's schedules.
func PlantStatus(db *sql.DB, p models.Plant, today time.Time) (*models.PlantStatus, error) {
	status := &models.PlantStatus{Plant: p}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	lastWatered, err := LastCareDate(db, p.ID, "water")
	if err != nil {
		return nil, err
	}
	if lastWatered != nil {
		status.LastWatered = lastWatered
		days := int(today.Sub(*lastWatered).Hours() / 24)
		status.DaysSinceWatering = &days
		status.NeedsWater = days >= p.WateringSchedule
	}

	lastFertilized, err := LastCareDate(db, p.ID, "fertilize")
	if err != nil {
		return nil, err
	}
	if lastFertilized != nil {
		status.LastFertilized = lastFertilized
		days := int(today.Sub(*lastFertilized).Hours() / 24)
		status.DaysSinceFertilizing = &days
		status.NeedsFertilizer = days >= p.FertilizingSchedule
	}

	return status, nil
}

func parseCareDate(raw string) (time.Time, error) {
	// Stored as YYYY-MM-DD, but tolerate a stray time part from older rows.
	if idx := strings.IndexByte(raw, ' '); idx > 0 {
		raw = raw[:idx]
	}
	if idx := strings.IndexByte(raw, 'T'); idx > 0 {
		raw = raw[:idx]
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse care date %q: %w", raw, err)
	}
	return d, nil
}
