package auth

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTokenTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConfirmTokenCreateAndValidate(t *testing.T) {
	db := setupTokenTestDB(t)
	svc, err := NewConfirmTokenService(db)
	if err != nil {
		t.Fatal(err)
	}

	tok, err := svc.Create("session-abc", "plant-1", 5*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if tok.Token == "" {
		t.Fatal("expected non-empty token")
	}
	if tok.PlantID != "plant-1" {
		t.Errorf("plant id = %q", tok.PlantID)
	}

	if err := svc.Validate(tok.Token, "session-abc", "plant-1"); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
}

func TestConfirmTokenSingleUse(t *testing.T) {
	db := setupTokenTestDB(t)
	svc, _ := NewConfirmTokenService(db)

	tok, _ := svc.Create("session-abc", "plant-1", 5*time.Minute)

	// First use succeeds
	if err := svc.Validate(tok.Token, "session-abc", "plant-1"); err != nil {
		t.Fatal(err)
	}

	// Second use fails
	err := svc.Validate(tok.Token, "session-abc", "plant-1")
	if err == nil || !strings.Contains(err.Error(), "already consumed") {
		t.Errorf("expected consumed error, got: %v", err)
	}
}

func TestConfirmTokenExpired(t *testing.T) {
	db := setupTokenTestDB(t)
	svc, _ := NewConfirmTokenService(db)

	// Create with already-expired TTL
	tok, _ := svc.Create("session-abc", "plant-1", -1*time.Second)

	err := svc.Validate(tok.Token, "session-abc", "plant-1")
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Errorf("expected expired error, got: %v", err)
	}
}

func TestConfirmTokenWrongSession(t *testing.T) {
	db := setupTokenTestDB(t)
	svc, _ := NewConfirmTokenService(db)

	tok, _ := svc.Create("session-abc", "plant-1", 5*time.Minute)

	err := svc.Validate(tok.Token, "session-other", "plant-1")
	if err == nil || !strings.Contains(err.Error(), "not bound to this session") {
		t.Errorf("expected session mismatch error, got: %v", err)
	}
}

func TestConfirmTokenWrongPlant(t *testing.T) {
	db := setupTokenTestDB(t)
	svc, _ := NewConfirmTokenService(db)

	tok, _ := svc.Create("session-abc", "plant-1", 5*time.Minute)

	err := svc.Validate(tok.Token, "session-abc", "plant-2")
	if err == nil || !strings.Contains(err.Error(), "different plant") {
		t.Errorf("expected plant mismatch error, got: %v", err)
	}
}

func TestConfirmTokenInvalid(t *testing.T) {
	db := setupTokenTestDB(t)
	svc, _ := NewConfirmTokenService(db)

	err := svc.Validate("nonexistent", "session-abc", "plant-1")
	if err == nil || !strings.Contains(err.Error(), "invalid confirmation token") {
		t.Errorf("expected invalid token error, got: %v", err)
	}
}

func TestConfirmTokenRevoke(t *testing.T) {
	db := setupTokenTestDB(t)
	svc, _ := NewConfirmTokenService(db)

	tok, _ := svc.Create("session-abc", "plant-1", 5*time.Minute)

	if err := svc.Revoke(tok.Token); err != nil {
		t.Fatal(err)
	}

	if err := svc.Validate(tok.Token, "session-abc", "plant-1"); err == nil {
		t.Error("expected error after revoke")
	}
}

func TestConfirmTokenMissingInputs(t *testing.T) {
	db := setupTokenTestDB(t)
	svc, _ := NewConfirmTokenService(db)

	if _, err := svc.Create("", "plant-1", time.Minute); err == nil {
		t.Error("expected error for empty session")
	}
	if _, err := svc.Create("sess", "", time.Minute); err == nil {
		t.Error("expected error for empty plant id")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("expected password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}
