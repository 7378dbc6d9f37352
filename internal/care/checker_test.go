package care

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"blumn/internal/db"
	"blumn/internal/events"
	"blumn/internal/models"
	"blumn/internal/settings"

	_ "modernc.org/sqlite"
)

var checkToday = time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

type eventCollector struct {
	mu   sync.Mutex
	seen []events.Event
}

func (c *eventCollector) collect(e events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, e)
}

func (c *eventCollector) byType(t events.EventType) []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []events.Event
	for _, e := range c.seen {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func setupCheckerTest(t *testing.T) (*sql.DB, *eventCollector, *Checker) {
	t.Helper()
	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.CreateSchema(database); err != nil {
		t.Fatal(err)
	}
	if err := settings.Init(database); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })

	bus := events.NewBus()
	col := &eventCollector{}
	bus.Subscribe(col.collect)

	return database, col, NewChecker(database, bus)
}

func checkerPlant(t *testing.T, database *sql.DB, name string) *models.Plant {
	t.Helper()
	p := &models.Plant{Name: name, WateringSchedule: 7, FertilizingSchedule: 14}
	if err := db.CreatePlant(database, p); err != nil {
		t.Fatal(err)
	}
	return p
}

func recordOn(t *testing.T, database *sql.DB, plantID string, kind Kind, daysAgo int) {
	t.Helper()
	_, err := db.RecordCareEvent(database, &models.CareEvent{
		PlantID:  plantID,
		CareDate: checkToday.AddDate(0, 0, -daysAgo),
		Kind:     string(kind),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCheckerPublishesOverdue(t *testing.T) {
	database, col, checker := setupCheckerTest(t)
	p := checkerPlant(t, database, "Monstera")

	// Weekly cadence, last event 13 days ago: next was due 6 days ago.
	recordOn(t, database, p.ID, KindWater, 20)
	recordOn(t, database, p.ID, KindWater, 13)

	if err := checker.Run(checkToday); err != nil {
		t.Fatal(err)
	}

	overdue := col.byType(events.CareOverdue)
	if len(overdue) != 1 {
		t.Fatalf("overdue events = %d, want 1", len(overdue))
	}
	e := overdue[0]
	if e.PlantName != "Monstera" || e.CareKind != "water" {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.Severity != events.SeverityWarning {
		t.Errorf("severity = %v, want warning", e.Severity)
	}
	if e.Metadata["days_overdue"] != "6" {
		t.Errorf("days_overdue = %q, want %q", e.Metadata["days_overdue"], "6")
	}
}

func TestCheckerPublishesDueToday(t *testing.T) {
	database, col, checker := setupCheckerTest(t)
	p := checkerPlant(t, database, "Ficus")

	// Weekly cadence, last event exactly 7 days ago.
	recordOn(t, database, p.ID, KindWater, 14)
	recordOn(t, database, p.ID, KindWater, 7)

	if err := checker.Run(checkToday); err != nil {
		t.Fatal(err)
	}

	due := col.byType(events.CareDue)
	if len(due) != 1 {
		t.Fatalf("due events = %d, want 1", len(due))
	}
	if len(col.byType(events.CareOverdue)) != 0 {
		t.Error("due-today must not also be overdue")
	}
}

func TestCheckerQuietWhenNotDue(t *testing.T) {
	database, col, checker := setupCheckerTest(t)
	p := checkerPlant(t, database, "Pilea")

	// Weekly cadence, last event 2 days ago: nothing due for 5 days.
	recordOn(t, database, p.ID, KindWater, 9)
	recordOn(t, database, p.ID, KindWater, 2)

	if err := checker.Run(checkToday); err != nil {
		t.Fatal(err)
	}

	if n := len(col.seen); n != 0 {
		t.Errorf("events published = %d, want 0", n)
	}
}

func TestCheckerSingleEventFallsBackToSchedule(t *testing.T) {
	database, col, checker := setupCheckerTest(t)
	p := checkerPlant(t, database, "Calathea")

	// One event 10 days ago with a 7-day watering schedule: 3 days overdue.
	recordOn(t, database, p.ID, KindWater, 10)

	if err := checker.Run(checkToday); err != nil {
		t.Fatal(err)
	}

	overdue := col.byType(events.CareOverdue)
	if len(overdue) != 1 {
		t.Fatalf("overdue events = %d, want 1", len(overdue))
	}
	if overdue[0].Metadata["days_overdue"] != "3" {
		t.Errorf("days_overdue = %q, want %q", overdue[0].Metadata["days_overdue"], "3")
	}
	if overdue[0].Metadata["method"] != string(MethodDefault) {
		t.Errorf("method = %q, want %q", overdue[0].Metadata["method"], MethodDefault)
	}
}

func TestCheckerIgnoresUntrackedKinds(t *testing.T) {
	database, col, checker := setupCheckerTest(t)
	p := checkerPlant(t, database, "Hoya")

	// Only watering has history; no fertilize/wash/neem/pest events ever.
	recordOn(t, database, p.ID, KindWater, 2)
	recordOn(t, database, p.ID, KindWater, 9)

	if err := checker.Run(checkToday); err != nil {
		t.Fatal(err)
	}

	if n := len(col.seen); n != 0 {
		t.Errorf("events published = %d, want 0", n)
	}
}

func TestCheckerUsesSettingsForTreatmentKinds(t *testing.T) {
	database, col, checker := setupCheckerTest(t)
	p := checkerPlant(t, database, "Alocasia")

	// One wash 40 days ago; the default wash interval is 30 days.
	recordOn(t, database, p.ID, KindWash, 40)

	if err := checker.Run(checkToday); err != nil {
		t.Fatal(err)
	}

	overdue := col.byType(events.CareOverdue)
	if len(overdue) != 1 {
		t.Fatalf("overdue events = %d, want 1", len(overdue))
	}
	if overdue[0].CareKind != "wash" {
		t.Errorf("kind = %q, want %q", overdue[0].CareKind, "wash")
	}
	if overdue[0].Metadata["days_overdue"] != "10" {
		t.Errorf("days_overdue = %q, want %q", overdue[0].Metadata["days_overdue"], "10")
	}
}

func TestCheckerMultiplePlants(t *testing.T) {
	database, col, checker := setupCheckerTest(t)

	overduePlant := checkerPlant(t, database, "Overdue")
	recordOn(t, database, overduePlant.ID, KindWater, 20)
	recordOn(t, database, overduePlant.ID, KindWater, 13)

	finePlant := checkerPlant(t, database, "Fine")
	recordOn(t, database, finePlant.ID, KindWater, 8)
	recordOn(t, database, finePlant.ID, KindWater, 1)

	if err := checker.Run(checkToday); err != nil {
		t.Fatal(err)
	}

	overdue := col.byType(events.CareOverdue)
	if len(overdue) != 1 {
		t.Fatalf("overdue events = %d, want 1", len(overdue))
	}
	if overdue[0].PlantName != "Overdue" {
		t.Errorf("plant = %q, want %q", overdue[0].PlantName, "Overdue")
	}
}
