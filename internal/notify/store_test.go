package notify

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"blumn/internal/settings"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := Init(db); err != nil {
		t.Fatal(err)
	}
	if err := settings.Init(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestService(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	svc := &Service{
		Name:             "test-telegram",
		ServiceType:      "telegram",
		ConfigJSON:       `{"shoutrrr_url":"telegram://token@telegram?chats=42"}`,
		Enabled:          true,
		NotifyOnOverdue:  true,
		NotifyOnActivity: false,
	}
	id, err := CreateService(db, svc)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestCreateAndGetService(t *testing.T) {
	db := setupTestDB(t)
	id := createTestService(t, db)

	svc, err := GetService(db, id)
	if err != nil {
		t.Fatal(err)
	}
	if svc == nil {
		t.Fatal("expected service, got nil")
	}
	if svc.Name != "test-telegram" {
		t.Errorf("name = %q, want %q", svc.Name, "test-telegram")
	}
	if !svc.Enabled {
		t.Error("expected enabled")
	}
	if !svc.NotifyOnOverdue {
		t.Error("expected notify_on_overdue")
	}
	if svc.NotifyOnActivity {
		t.Error("expected no notify_on_activity")
	}
}

func TestGetServiceMissing(t *testing.T) {
	db := setupTestDB(t)

	svc, err := GetService(db, 999)
	if err != nil {
		t.Fatal(err)
	}
	if svc != nil {
		t.Error("expected nil for missing service")
	}
}

func TestListServices(t *testing.T) {
	db := setupTestDB(t)
	createTestService(t, db)
	CreateService(db, &Service{
		Name: "discord", ServiceType: "discord", ConfigJSON: `{}`, Enabled: true,
	})

	list, err := ListServices(db)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 services, got %d", len(list))
	}
}

func TestListEnabledServices(t *testing.T) {
	db := setupTestDB(t)
	id := createTestService(t, db)

	svc, _ := GetService(db, id)
	svc.Enabled = false
	if err := UpdateService(db, svc); err != nil {
		t.Fatal(err)
	}

	CreateService(db, &Service{
		Name: "enabled-one", ServiceType: "email", ConfigJSON: `{}`, Enabled: true,
	})

	list, err := ListEnabledServices(db)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 enabled service, got %d", len(list))
	}
	if list[0].Name != "enabled-one" {
		t.Errorf("name = %q, want %q", list[0].Name, "enabled-one")
	}
}

func TestUpdateService(t *testing.T) {
	db := setupTestDB(t)
	id := createTestService(t, db)

	svc, _ := GetService(db, id)
	svc.Name = "renamed"
	svc.NotifyOnActivity = true

	if err := UpdateService(db, svc); err != nil {
		t.Fatal(err)
	}

	updated, _ := GetService(db, id)
	if updated.Name != "renamed" {
		t.Errorf("name = %q, want %q", updated.Name, "renamed")
	}
	if !updated.NotifyOnActivity {
		t.Error("expected notify_on_activity after update")
	}
}

func TestUpdateMissingService(t *testing.T) {
	db := setupTestDB(t)

	err := UpdateService(db, &Service{ID: 999, Name: "ghost", ServiceType: "generic", ConfigJSON: `{}`})
	if err == nil {
		t.Error("expected error updating missing service")
	}
}

func TestDeleteService(t *testing.T) {
	db := setupTestDB(t)
	id := createTestService(t, db)

	if err := DeleteService(db, id); err != nil {
		t.Fatal(err)
	}

	svc, _ := GetService(db, id)
	if svc != nil {
		t.Error("expected nil after delete")
	}
}

func TestRecordAndRecentHistory(t *testing.T) {
	db := setupTestDB(t)
	svcID := createTestService(t, db)

	rec := &Record{
		ServiceID: svcID,
		EventType: "care_overdue",
		PlantName: "Monstera",
		CareKind:  "water",
		Message:   "Monstera is overdue for watering",
		Status:    "sent",
	}
	if _, err := RecordNotification(db, rec); err != nil {
		t.Fatal(err)
	}

	history, err := RecentHistory(db, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 record, got %d", len(history))
	}
	if history[0].PlantName != "Monstera" {
		t.Errorf("plant = %q, want %q", history[0].PlantName, "Monstera")
	}
	if history[0].CareKind != "water" {
		t.Errorf("kind = %q, want %q", history[0].CareKind, "water")
	}
}

func TestRecentHistoryLimit(t *testing.T) {
	db := setupTestDB(t)
	svcID := createTestService(t, db)

	for i := 0; i < 5; i++ {
		RecordNotification(db, &Record{
			ServiceID: svcID,
			EventType: "care_overdue",
			Message:   "overdue",
			Status:    "sent",
		})
	}

	history, err := RecentHistory(db, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 records, got %d", len(history))
	}
}
