package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"blumn/internal/models"
)

const plantColumns = `id, name, watering_schedule, fertilizing_schedule,
	COALESCE(size, ''), COALESCE(notes, ''), created_at, updated_at`

// CreatePlant inserts a new plant and returns it with its generated ID.
func CreatePlant(db *sql.DB, p *models.Plant) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("plant name cannot be empty")
	}
	if p.WateringSchedule <= 0 {
		p.WateringSchedule = 7
	}
	if p.FertilizingSchedule <= 0 {
		p.FertilizingSchedule = 14
	}
	p.ID = uuid.NewString()

	_, err := db.Exec(`
		INSERT INTO plants (id, name, watering_schedule, fertilizing_schedule, size, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, strings.TrimSpace(p.Name), p.WateringSchedule, p.FertilizingSchedule, p.Size, p.Notes)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("plant %q already exists", p.Name)
		}
		return fmt.Errorf("failed to create plant: %w", err)
	}
	return nil
}

// GetPlant retrieves a plant by ID. Returns nil when not found.
func GetPlant(db *sql.DB, id string) (*models.Plant, error) {
	row := db.QueryRow(`SELECT `+plantColumns+` FROM plants WHERE id = ?`, id)
	return scanPlant(row)
}

// GetPlantByName retrieves a plant by its unique name. Returns nil when
// not found.
func GetPlantByName(db *sql.DB, name string) (*models.Plant, error) {
	row := db.QueryRow(`SELECT `+plantColumns+` FROM plants WHERE name = ?`, strings.TrimSpace(name))
	return scanPlant(row)
}

// ListPlants returns all plants ordered by name.
func ListPlants(db *sql.DB) ([]models.Plant, error) {
	rows, err := db.Query(`SELECT ` + plantColumns + ` FROM plants ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query plants: %w", err)
	}
	defer rows.Close()

	var plants []models.Plant
	for rows.Next() {
		p, err := scanPlantRow(rows)
		if err != nil {
			return nil, err
		}
		plants = append(plants, *p)
	}
	return plants, rows.Err()
}

// UpdatePlant updates the mutable fields of a plant.
func UpdatePlant(db *sql.DB, p *models.Plant) error {
	result, err := db.Exec(`
		UPDATE plants
		SET name = ?, watering_schedule = ?, fertilizing_schedule = ?,
			size = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, strings.TrimSpace(p.Name), p.WateringSchedule, p.FertilizingSchedule, p.Size, p.Notes, p.ID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("plant %q already exists", p.Name)
		}
		return fmt.Errorf("failed to update plant: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("plant not found")
	}
	return nil
}

// DeletePlant removes a plant and, via cascade, its care history.
func DeletePlant(db *sql.DB, id string) error {
	result, err := db.Exec("DELETE FROM plants WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete plant: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("plant not found")
	}
	return nil
}

// EnsurePlant returns the named plant, creating it with default
// schedules when it does not exist yet. Used by the Excel importer.
func EnsurePlant(db *sql.DB, name string) (*models.Plant, bool, error) {
	existing, err := GetPlantByName(db, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	p := &models.Plant{Name: name}
	if err := CreatePlant(db, p); err != nil {
		return nil, false, err
	}
	created, err := GetPlant(db, p.ID)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlant(row *sql.Row) (*models.Plant, error) {
	p, err := scanPlantFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func scanPlantRow(rows *sql.Rows) (*models.Plant, error) {
	return scanPlantFrom(rows)
}

func scanPlantFrom(s rowScanner) (*models.Plant, error) {
	var p models.Plant
	var createdAt, updatedAt string

	err := s.Scan(&p.ID, &p.Name, &p.WateringSchedule, &p.FertilizingSchedule,
		&p.Size, &p.Notes, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan plant: %w", err)
	}

	p.CreatedAt = parseSQLiteTime(createdAt)
	p.UpdatedAt = parseSQLiteTime(updatedAt)
	return &p, nil
}

func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
