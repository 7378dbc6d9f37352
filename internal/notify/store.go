package notify

import (
	"database/sql"
	"fmt"
	"time"
)

const timeFormat = "2006-01-02 15:04:05"

// Init creates the notification tables.
func Init(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS notification_services (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		service_type TEXT NOT NULL,
		config_json TEXT NOT NULL,
		enabled INTEGER DEFAULT 1,
		notify_on_overdue INTEGER DEFAULT 1,
		notify_on_activity INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS notification_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		service_id INTEGER,
		event_type TEXT NOT NULL,
		plant_name TEXT,
		care_kind TEXT,
		message TEXT NOT NULL,
		status TEXT NOT NULL,
		error_message TEXT,
		sent_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_notification_history_created
		ON notification_history(created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create notification tables: %w", err)
	}
	return nil
}

// CreateService inserts a new notification destination.
func CreateService(db *sql.DB, svc *Service) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO notification_services
			(name, service_type, config_json, enabled, notify_on_overdue, notify_on_activity)
		VALUES (?, ?, ?, ?, ?, ?)`,
		svc.Name, svc.ServiceType, svc.ConfigJSON,
		boolInt(svc.Enabled), boolInt(svc.NotifyOnOverdue), boolInt(svc.NotifyOnActivity))
	if err != nil {
		return 0, fmt.Errorf("create notification service: %w", err)
	}
	return res.LastInsertId()
}

// GetService retrieves a notification service by ID, or nil.
func GetService(db *sql.DB, id int64) (*Service, error) {
	row := db.QueryRow(serviceSelect+` WHERE id = ?`, id)
	svc, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// ListServices returns all notification services.
func ListServices(db *sql.DB) ([]Service, error) {
	return queryServices(db, serviceSelect+` ORDER BY name`)
}

// ListEnabledServices returns only enabled notification services.
func ListEnabledServices(db *sql.DB) ([]Service, error) {
	return queryServices(db, serviceSelect+` WHERE enabled = 1 ORDER BY name`)
}

// UpdateService updates a notification service's configuration.
func UpdateService(db *sql.DB, svc *Service) error {
	res, err := db.Exec(`
		UPDATE notification_services SET
			name = ?, service_type = ?, config_json = ?, enabled = ?,
			notify_on_overdue = ?, notify_on_activity = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		svc.Name, svc.ServiceType, svc.ConfigJSON, boolInt(svc.Enabled),
		boolInt(svc.NotifyOnOverdue), boolInt(svc.NotifyOnActivity), svc.ID)
	if err != nil {
		return fmt.Errorf("update notification service: %w", err)
	}
	return expectOneRow(res, "update notification service")
}

// DeleteService removes a notification service.
func DeleteService(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM notification_services WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete notification service: %w", err)
	}
	return expectOneRow(res, "delete notification service")
}

// RecordNotification inserts a delivery-history row.
func RecordNotification(db *sql.DB, rec *Record) (int64, error) {
	var sentAt interface{}
	if !rec.SentAt.IsZero() {
		sentAt = rec.SentAt.UTC().Format(timeFormat)
	}

	res, err := db.Exec(`
		INSERT INTO notification_history
			(service_id, event_type, plant_name, care_kind, message, status, error_message, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ServiceID, rec.EventType, rec.PlantName, rec.CareKind,
		rec.Message, rec.Status, rec.ErrorMessage, sentAt)
	if err != nil {
		return 0, fmt.Errorf("record notification: %w", err)
	}
	return res.LastInsertId()
}

// RecentHistory returns the latest N delivery records.
func RecentHistory(db *sql.DB, limit int) ([]Record, error) {
	rows, err := db.Query(`
		SELECT id, COALESCE(service_id, 0), event_type,
		       COALESCE(plant_name, ''), COALESCE(care_kind, ''),
		       message, status, COALESCE(error_message, ''),
		       COALESCE(sent_at, ''), created_at
		FROM notification_history
		ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var sentAt, createdAt string
		if err := rows.Scan(&r.ID, &r.ServiceID, &r.EventType,
			&r.PlantName, &r.CareKind, &r.Message, &r.Status,
			&r.ErrorMessage, &sentAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		r.SentAt = parseTime(sentAt)
		r.CreatedAt = parseTime(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────

const serviceSelect = `
	SELECT id, name, service_type, config_json, enabled,
	       notify_on_overdue, notify_on_activity, created_at, updated_at
	FROM notification_services`

func queryServices(db *sql.DB, query string, args ...interface{}) ([]Service, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notification services: %w", err)
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanService(s scannable) (Service, error) {
	var svc Service
	var enabled, overdue, activity int
	var createdAt, updatedAt string

	err := s.Scan(&svc.ID, &svc.Name, &svc.ServiceType, &svc.ConfigJSON,
		&enabled, &overdue, &activity, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return svc, err
	}
	if err != nil {
		return svc, fmt.Errorf("scan notification service: %w", err)
	}
	svc.Enabled = enabled == 1
	svc.NotifyOnOverdue = overdue == 1
	svc.NotifyOnActivity = activity == 1
	svc.CreatedAt = parseTime(createdAt)
	svc.UpdatedAt = parseTime(updatedAt)
	return svc, nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: not found", op)
	}
	return nil
}
