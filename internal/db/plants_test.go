package db

import (
	"strings"
	"testing"

	"blumn/internal/models"
)

func TestCreatePlant_Defaults(t *testing.T) {
	database := setupTestDB(t)

	p := &models.Plant{Name: "  Monstera  "}
	if err := CreatePlant(database, p); err != nil {
		t.Fatalf("CreatePlant failed: %v", err)
	}
	if p.ID == "" {
		t.Error("expected a generated ID")
	}

	got, err := GetPlant(database, p.ID)
	if err != nil {
		t.Fatalf("GetPlant failed: %v", err)
	}
	if got == nil {
		t.Fatal("plant not found after create")
	}
	if got.Name != "Monstera" {
		t.Errorf("name = %q, want trimmed %q", got.Name, "Monstera")
	}
	if got.WateringSchedule != 7 || got.FertilizingSchedule != 14 {
		t.Errorf("schedules = %d/%d, want defaults 7/14", got.WateringSchedule, got.FertilizingSchedule)
	}
}

func TestCreatePlant_RejectsDuplicateName(t *testing.T) {
	database := setupTestDB(t)
	testPlant(t, database, "Ficus")

	err := CreatePlant(database, &models.Plant{Name: "Ficus"})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected duplicate-name error, got %v", err)
	}
}

func TestCreatePlant_RejectsEmptyName(t *testing.T) {
	database := setupTestDB(t)

	if err := CreatePlant(database, &models.Plant{Name: "   "}); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestGetPlantByName(t *testing.T) {
	database := setupTestDB(t)
	created := testPlant(t, database, "Pothos")

	got, err := GetPlantByName(database, "Pothos")
	if err != nil {
		t.Fatalf("GetPlantByName failed: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Errorf("lookup by name returned %+v, want ID %s", got, created.ID)
	}

	missing, err := GetPlantByName(database, "Triffid")
	if err != nil {
		t.Fatalf("GetPlantByName failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown plant, got %+v", missing)
	}
}

func TestListPlants_OrderedByName(t *testing.T) {
	database := setupTestDB(t)
	testPlant(t, database, "Zamioculcas")
	testPlant(t, database, "Aloe")
	testPlant(t, database, "Monstera")

	plants, err := ListPlants(database)
	if err != nil {
		t.Fatalf("ListPlants failed: %v", err)
	}

	want := []string{"Aloe", "Monstera", "Zamioculcas"}
	if len(plants) != len(want) {
		t.Fatalf("got %d plants, want %d", len(plants), len(want))
	}
	for i, name := range want {
		if plants[i].Name != name {
			t.Errorf("plants[%d] = %q, want %q", i, plants[i].Name, name)
		}
	}
}

func TestUpdatePlant(t *testing.T) {
	database := setupTestDB(t)
	p := testPlant(t, database, "Basil")

	p.Name = "Sweet Basil"
	p.WateringSchedule = 3
	if err := UpdatePlant(database, p); err != nil {
		t.Fatalf("UpdatePlant failed: %v", err)
	}

	got, err := GetPlant(database, p.ID)
	if err != nil {
		t.Fatalf("GetPlant failed: %v", err)
	}
	if got.Name != "Sweet Basil" || got.WateringSchedule != 3 {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestUpdatePlant_NotFound(t *testing.T) {
	database := setupTestDB(t)

	err := UpdatePlant(database, &models.Plant{ID: "nope", Name: "Ghost"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestEnsurePlant(t *testing.T) {
	database := setupTestDB(t)

	first, created, err := EnsurePlant(database, "Fern")
	if err != nil {
		t.Fatalf("EnsurePlant failed: %v", err)
	}
	if !created {
		t.Error("expected first EnsurePlant to create")
	}

	second, created, err := EnsurePlant(database, "Fern")
	if err != nil {
		t.Fatalf("EnsurePlant failed: %v", err)
	}
	if created {
		t.Error("expected second EnsurePlant to reuse")
	}
	if second.ID != first.ID {
		t.Errorf("EnsurePlant returned different IDs: %s vs %s", second.ID, first.ID)
	}
}
