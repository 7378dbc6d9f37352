package auth

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConfirmToken is a single-use, time-limited token that authorises
// deleting a plant. Deleting a plant also drops its entire care history,
// so the API requires an explicit confirmation step.
type ConfirmToken struct {
	Token     string    `json:"token"`
	PlantID   string    `json:"plant_id"`
	SessionID string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfirmTokenService manages confirmation tokens backed by SQLite.
type ConfirmTokenService struct {
	db *sql.DB
}

// NewConfirmTokenService creates a new service and ensures the schema exists.
func NewConfirmTokenService(db *sql.DB) (*ConfirmTokenService, error) {
	svc := &ConfirmTokenService{db: db}
	if err := svc.migrate(); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *ConfirmTokenService) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS confirm_tokens (
			token      TEXT PRIMARY KEY,
			plant_id   TEXT NOT NULL,
			session_id TEXT NOT NULL,
			used       INTEGER DEFAULT 0,
			expires_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_confirm_tokens_expires ON confirm_tokens(expires_at);
	`)
	return err
}

// Create generates a confirmation token for deleting the given plant,
// bound to the requesting session. The token expires after ttl.
func (s *ConfirmTokenService) Create(sessionToken, plantID string, ttl time.Duration) (*ConfirmToken, error) {
	if sessionToken == "" {
		return nil, fmt.Errorf("session token is required")
	}
	if plantID == "" {
		return nil, fmt.Errorf("plant id is required")
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	expiresAt := time.Now().UTC().Add(ttl)

	_, err := s.db.Exec(`
		INSERT INTO confirm_tokens (token, plant_id, session_id, expires_at)
		VALUES (?, ?, ?, ?)`,
		token, plantID, sessionToken,
		expiresAt.Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, fmt.Errorf("store confirm token: %w", err)
	}

	return &ConfirmToken{
		Token:     token,
		PlantID:   plantID,
		SessionID: sessionToken,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate checks that the token is valid, unused, not expired, bound to
// the correct session, and issued for the plant being deleted. On success
// the token is consumed and cannot be reused.
func (s *ConfirmTokenService) Validate(token, sessionToken, plantID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var storedPlant, storedSession string
	var used, expired int

	err = tx.QueryRow(`
		SELECT plant_id, session_id, used,
		       CASE WHEN expires_at < datetime('now') THEN 1 ELSE 0 END
		FROM confirm_tokens WHERE token = ?`, token).
		Scan(&storedPlant, &storedSession, &used, &expired)
	if err == sql.ErrNoRows {
		return fmt.Errorf("invalid confirmation token")
	}
	if err != nil {
		return fmt.Errorf("lookup token: %w", err)
	}

	if used != 0 {
		return fmt.Errorf("confirmation token already consumed")
	}

	if expired != 0 {
		return fmt.Errorf("confirmation token expired")
	}

	if storedSession != sessionToken {
		return fmt.Errorf("confirmation token not bound to this session")
	}

	if storedPlant != plantID {
		return fmt.Errorf("confirmation token was issued for a different plant")
	}

	// Consume the token (single-use)
	if _, err := tx.Exec(`UPDATE confirm_tokens SET used = 1 WHERE token = ?`, token); err != nil {
		return fmt.Errorf("consume token: %w", err)
	}

	return tx.Commit()
}

// Revoke deletes a confirmation token (e.g. user cancelled the delete).
func (s *ConfirmTokenService) Revoke(token string) error {
	_, err := s.db.Exec(`DELETE FROM confirm_tokens WHERE token = ?`, token)
	return err
}

// CleanupExpired removes tokens that have expired.
func (s *ConfirmTokenService) CleanupExpired() {
	s.db.Exec(`DELETE FROM confirm_tokens WHERE expires_at < datetime('now')`)
}
