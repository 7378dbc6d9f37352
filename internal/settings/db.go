package settings

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Init creates the settings table and seeds any missing defaults.
func Init(db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		value_type TEXT DEFAULT 'string',
		description TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(category, key)
	);
	CREATE INDEX IF NOT EXISTS idx_settings_category ON settings(category);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}

	insertSQL := `
	INSERT OR IGNORE INTO settings (category, key, value, value_type, description)
	VALUES (?, ?, ?, ?, ?)
	`

	for _, s := range Defaults {
		if _, err := db.Exec(insertSQL, s.Category, s.Key, s.Value, s.ValueType, s.Description); err != nil {
			return fmt.Errorf("failed to insert default setting %s.%s: %w", s.Category, s.Key, err)
		}
	}

	return nil
}

// Get retrieves one setting. Returns nil when it does not exist.
func Get(db *sql.DB, category, key string) (*Setting, error) {
	query := `
	SELECT id, category, key, value, value_type, COALESCE(description, ''), updated_at
	FROM settings
	WHERE category = ? AND key = ?
	`

	var s Setting
	var updatedAt string
	err := db.QueryRow(query, category, key).Scan(
		&s.ID, &s.Category, &s.Key, &s.Value, &s.ValueType, &s.Description, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s.%s: %w", category, key, err)
	}
	s.UpdatedAt, _ = time.Parse("2006-01-02 15:04:05", updatedAt)
	return &s, nil
}

// All retrieves every setting, ordered by category and key.
func All(db *sql.DB) ([]Setting, error) {
	query := `
	SELECT id, category, key, value, value_type, COALESCE(description, ''), updated_at
	FROM settings
	ORDER BY category, key
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	var all []Setting
	for rows.Next() {
		var s Setting
		var updatedAt string
		if err := rows.Scan(&s.ID, &s.Category, &s.Key, &s.Value, &s.ValueType, &s.Description, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		s.UpdatedAt, _ = time.Parse("2006-01-02 15:04:05", updatedAt)
		all = append(all, s)
	}

	return all, rows.Err()
}

// AllGrouped retrieves every setting grouped by category.
func AllGrouped(db *sql.DB) (Grouped, error) {
	all, err := All(db)
	if err != nil {
		return nil, err
	}

	grouped := make(Grouped)
	for _, s := range all {
		grouped[s.Category] = append(grouped[s.Category], s)
	}
	return grouped, nil
}

// Update validates and writes a new value for an existing setting.
func Update(db *sql.DB, category, key, value string) error {
	existing, err := Get(db, category, key)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("setting %s.%s not found", category, key)
	}

	if err := validateValue(existing.ValueType, value); err != nil {
		return fmt.Errorf("invalid value for %s.%s: %w", category, key, err)
	}
	if category == "forecast" && key == "method" && value != "mean" && value != "moving_average" {
		return fmt.Errorf("invalid value for forecast.method: must be mean or moving_average")
	}

	_, err = db.Exec(`
	UPDATE settings
	SET value = ?, updated_at = CURRENT_TIMESTAMP
	WHERE category = ? AND key = ?
	`, value, category, key)
	if err != nil {
		return fmt.Errorf("failed to update setting %s.%s: %w", category, key, err)
	}
	return nil
}

// ResetAll restores every setting to its default value.
func ResetAll(db *sql.DB) error {
	for _, def := range Defaults {
		if err := Update(db, def.Category, def.Key, def.Value); err != nil {
			return fmt.Errorf("failed to reset %s.%s: %w", def.Category, def.Key, err)
		}
	}
	return nil
}

// GetInt retrieves a setting as an integer, falling back to def when
// missing or malformed.
func GetInt(db *sql.DB, category, key string, def int) int {
	s, err := Get(db, category, key)
	if err != nil || s == nil {
		return def
	}
	val, err := strconv.Atoi(s.Value)
	if err != nil {
		return def
	}
	return val
}

// GetString retrieves a setting as a string, falling back to def.
func GetString(db *sql.DB, category, key, def string) string {
	s, err := Get(db, category, key)
	if err != nil || s == nil {
		return def
	}
	return s.Value
}

// GetBool retrieves a setting as a boolean, falling back to def.
func GetBool(db *sql.DB, category, key string, def bool) bool {
	s, err := Get(db, category, key)
	if err != nil || s == nil {
		return def
	}
	return s.Value == "true"
}
