package db

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"blumn/internal/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := CreateSchema(database); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return database
}

func testPlant(t *testing.T, database *sql.DB, name string) *models.Plant {
	t.Helper()
	p := &models.Plant{Name: name}
	if err := CreatePlant(database, p); err != nil {
		t.Fatalf("Failed to create plant %q: %v", name, err)
	}
	return p
}

func careDay(n int) time.Time {
	return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func record(t *testing.T, database *sql.DB, plantID string, d time.Time, kind string) {
	t.Helper()
	inserted, err := RecordCareEvent(database, &models.CareEvent{
		PlantID:  plantID,
		CareDate: d,
		Kind:     kind,
	})
	if err != nil {
		t.Fatalf("RecordCareEvent failed: %v", err)
	}
	if !inserted {
		t.Fatalf("expected event for %s to be inserted", d.Format("2006-01-02"))
	}
}

func TestRecordCareEvent_CollapsesDuplicateDays(t *testing.T) {
	database := setupTestDB(t)
	plant := testPlant(t, database, "Monstera")

	record(t, database, plant.ID, careDay(0), "water")

	inserted, err := RecordCareEvent(database, &models.CareEvent{
		PlantID:  plant.ID,
		CareDate: careDay(0),
		Kind:     "water",
	})
	if err != nil {
		t.Fatalf("RecordCareEvent failed: %v", err)
	}
	if inserted {
		t.Error("duplicate (plant, day, kind) should not insert a second row")
	}

	dates, err := CareEventDates(database, plant.ID, "water")
	if err != nil {
		t.Fatalf("CareEventDates failed: %v", err)
	}
	if len(dates) != 1 {
		t.Errorf("got %d dates, want 1", len(dates))
	}
}

func TestCareEventDates_AscendingDistinct(t *testing.T) {
	database := setupTestDB(t)
	plant := testPlant(t, database, "Ficus")

	// Insert out of order, with another kind mixed in.
	record(t, database, plant.ID, careDay(9), "water")
	record(t, database, plant.ID, careDay(2), "water")
	record(t, database, plant.ID, careDay(5), "water")
	record(t, database, plant.ID, careDay(3), "fertilize")

	dates, err := CareEventDates(database, plant.ID, "water")
	if err != nil {
		t.Fatalf("CareEventDates failed: %v", err)
	}

	want := []time.Time{careDay(2), careDay(5), careDay(9)}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, dates[i], want[i])
		}
	}
}

func TestLastCareDate(t *testing.T) {
	database := setupTestDB(t)
	plant := testPlant(t, database, "Pothos")

	last, err := LastCareDate(database, plant.ID, "water")
	if err != nil {
		t.Fatalf("LastCareDate failed: %v", err)
	}
	if last != nil {
		t.Errorf("expected nil for unwatered plant, got %v", last)
	}

	record(t, database, plant.ID, careDay(1), "water")
	record(t, database, plant.ID, careDay(8), "water")

	last, err = LastCareDate(database, plant.ID, "water")
	if err != nil {
		t.Fatalf("LastCareDate failed: %v", err)
	}
	if last == nil || !last.Equal(careDay(8)) {
		t.Errorf("last care date = %v, want %v", last, careDay(8))
	}
}

func TestListCareEvents_FilterAndOrder(t *testing.T) {
	database := setupTestDB(t)
	plant := testPlant(t, database, "Calathea")

	record(t, database, plant.ID, careDay(1), "water")
	record(t, database, plant.ID, careDay(4), "water")
	record(t, database, plant.ID, careDay(4), "fertilize")

	all, err := ListCareEvents(database, plant.ID, "", 0)
	if err != nil {
		t.Fatalf("ListCareEvents failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d events, want 3", len(all))
	}
	if len(all) > 0 && !all[0].CareDate.Equal(careDay(4)) {
		t.Errorf("events not newest-first: first = %v", all[0].CareDate)
	}

	watering, err := ListCareEvents(database, plant.ID, "water", 0)
	if err != nil {
		t.Fatalf("ListCareEvents failed: %v", err)
	}
	if len(watering) != 2 {
		t.Errorf("got %d watering events, want 2", len(watering))
	}
}

func TestPlantStatus_DueFlags(t *testing.T) {
	database := setupTestDB(t)
	plant := testPlant(t, database, "Basil")
	today := careDay(20)

	// Watered 10 days ago against a 7-day schedule → needs water.
	record(t, database, plant.ID, careDay(10), "water")
	// Fertilized 5 days ago against a 14-day schedule → fine.
	record(t, database, plant.ID, careDay(15), "fertilize")

	status, err := PlantStatus(database, *plant, today)
	if err != nil {
		t.Fatalf("PlantStatus failed: %v", err)
	}

	if !status.NeedsWater {
		t.Error("expected needs_water after 10 days on a 7-day schedule")
	}
	if status.NeedsFertilizer {
		t.Error("did not expect needs_fertilizer after 5 days on a 14-day schedule")
	}
	if status.DaysSinceWatering == nil || *status.DaysSinceWatering != 10 {
		t.Errorf("days since watering = %v, want 10", status.DaysSinceWatering)
	}
}

func TestPlantStatus_NeverCared(t *testing.T) {
	database := setupTestDB(t)
	plant := testPlant(t, database, "Cactus")

	status, err := PlantStatus(database, *plant, careDay(0))
	if err != nil {
		t.Fatalf("PlantStatus failed: %v", err)
	}

	if status.LastWatered != nil || status.DaysSinceWatering != nil {
		t.Error("expected no watering info for an untouched plant")
	}
	if status.NeedsWater || status.NeedsFertilizer {
		t.Error("untouched plant should not be flagged as due")
	}
}

func TestDeletePlant_CascadesHistory(t *testing.T) {
	database := setupTestDB(t)
	if _, err := database.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	plant := testPlant(t, database, "Ivy")
	record(t, database, plant.ID, careDay(0), "water")

	if err := DeletePlant(database, plant.ID); err != nil {
		t.Fatalf("DeletePlant failed: %v", err)
	}

	dates, err := CareEventDates(database, plant.ID, "water")
	if err != nil {
		t.Fatalf("CareEventDates failed: %v", err)
	}
	if len(dates) != 0 {
		t.Errorf("expected care history to cascade on delete, got %d rows", len(dates))
	}
}
