package ingest

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"blumn/internal/db"
	"blumn/internal/models"
)

// Legacy spreadsheet layout, one row per plant per day:
//
//	A date | B plant name | C days without water | D water (ml) |
//	E fertilizer | F days without fertilizer | G wash | H neem oil |
//	I pest mix | J size | K condition
//
// Columns C and F are derived values and are skipped on import.
const (
	colDate = iota
	colPlantName
	colDaysWithoutWater
	colWater
	colFertilizer
	colDaysWithoutFertilizer
	colWash
	colNeemOil
	colPestMix
	colSize
	colCondition
)

// Stats summarises one import run.
type Stats struct {
	PlantsCreated int      `json:"plants_created"`
	EventsCreated int      `json:"events_created"`
	RowsProcessed int      `json:"rows_processed"`
	RowsSkipped   int      `json:"rows_skipped"`
	Errors        []string `json:"errors,omitempty"`
}

// dateLayouts are the formats seen in legacy spreadsheets, plus the
// short forms excelize produces for native date cells.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
}

// ImportExcel reads a legacy care spreadsheet and loads it into the
// database. Plants are created on first sight; duplicate care rows are
// collapsed by the store's uniqueness constraint.
func ImportExcel(database *sql.DB, r io.Reader) (*Stats, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return &Stats{}, nil
	}

	stats := &Stats{}
	plantCache := make(map[string]*models.Plant)

	// Skip the header row.
	for i, row := range rows[1:] {
		rowNum := i + 2

		careDate, ok := parseDate(cell(row, colDate))
		name := strings.TrimSpace(cell(row, colPlantName))
		if !ok || name == "" {
			stats.RowsSkipped++
			continue
		}

		plant, cached := plantCache[name]
		if !cached {
			var created bool
			plant, created, err = db.EnsurePlant(database, name)
			if err != nil {
				stats.RowsSkipped++
				stats.Errors = append(stats.Errors, fmt.Sprintf("row %d: plant %q: %v", rowNum, name, err))
				continue
			}
			if created {
				stats.PlantsCreated++
			}
			plantCache[name] = plant
		}

		// Remember the plant's size if the sheet carries one.
		if size := strings.TrimSpace(cell(row, colSize)); size != "" && plant.Size == "" {
			plant.Size = size
			if err := db.UpdatePlant(database, plant); err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("row %d: update size: %v", rowNum, err))
			}
		}

		recorded := 0
		recorded += importEvent(database, stats, rowNum, plant.ID, careDate, "water", cell(row, colWater), true)
		recorded += importEvent(database, stats, rowNum, plant.ID, careDate, "fertilize", cell(row, colFertilizer), false)
		recorded += importEvent(database, stats, rowNum, plant.ID, careDate, "wash", cell(row, colWash), false)
		recorded += importEvent(database, stats, rowNum, plant.ID, careDate, "neem_oil", cell(row, colNeemOil), false)
		recorded += importEvent(database, stats, rowNum, plant.ID, careDate, "pest_mix", cell(row, colPestMix), false)

		if recorded > 0 {
			stats.RowsProcessed++
		} else {
			stats.RowsSkipped++
		}
	}

	log.Printf("📥 Import: %d plants created, %d events from %d rows (%d skipped)",
		stats.PlantsCreated, stats.EventsCreated, stats.RowsProcessed, stats.RowsSkipped)
	return stats, nil
}

// importEvent records a single care event if the cell is non-empty.
// For the water column the cell value is the amount in millilitres;
// other columns carry free-text markers kept as the note.
func importEvent(database *sql.DB, stats *Stats, rowNum int, plantID string, careDate time.Time, kind, raw string, isAmount bool) int {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0
	}

	e := &models.CareEvent{
		PlantID:  plantID,
		CareDate: careDate,
		Kind:     kind,
	}

	if isAmount {
		if ml, err := strconv.ParseFloat(value, 64); err == nil {
			e.AmountML = int(ml)
		}
	} else if !isMarker(value) {
		e.Note = value
	}

	inserted, err := db.RecordCareEvent(database, e)
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("row %d: %s: %v", rowNum, kind, err))
		return 0
	}
	if !inserted {
		// Duplicate (plant, day, kind), already imported.
		return 0
	}

	stats.EventsCreated++
	return 1
}

// isMarker reports whether a cell is a bare "done" marker rather than a
// meaningful note.
func isMarker(v string) bool {
	switch strings.ToLower(v) {
	case "x", "xx", "yes", "y", "1", "true", "✓":
		return true
	}
	return false
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
