package care

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"time"

	"blumn/internal/db"
	"blumn/internal/events"
	"blumn/internal/models"
	"blumn/internal/settings"
)

// Checker walks every plant's care history, estimates each kind's
// periodicity, and publishes due/overdue events. It runs on a cron
// schedule and after imports.
type Checker struct {
	db  *sql.DB
	bus *events.Bus
}

// NewChecker creates a checker wired to the given database and bus.
func NewChecker(database *sql.DB, bus *events.Bus) *Checker {
	return &Checker{db: database, bus: bus}
}

// Run performs one full pass over all plants as of the given day.
func (c *Checker) Run(today time.Time) error {
	plants, err := db.ListPlants(c.db)
	if err != nil {
		return fmt.Errorf("list plants: %w", err)
	}

	method := Method(settings.GetString(c.db, "forecast", "method", string(MethodMovingAverage)))
	window := settings.GetInt(c.db, "forecast", "moving_average_window", DefaultMovingAverageWindow)

	due, overdue := 0, 0
	for _, plant := range plants {
		for _, kind := range Kinds {
			state, err := c.checkOne(plant, kind, today, method, window)
			if err != nil {
				log.Printf("⚠️  Check %s/%s: %v", plant.Name, kind, err)
				continue
			}
			switch state {
			case stateDue:
				due++
			case stateOverdue:
				overdue++
			}
		}
	}

	log.Printf("🔍 Care check: %d plants, %d due, %d overdue", len(plants), due, overdue)
	return nil
}

type checkState int

const (
	stateQuiet checkState = iota
	stateDue
	stateOverdue
)

// checkOne evaluates a single (plant, kind) pair and publishes at most
// one event for it.
func (c *Checker) checkOne(plant models.Plant, kind Kind, today time.Time, method Method, window int) (checkState, error) {
	dates, err := db.CareEventDates(c.db, plant.ID, string(kind))
	if err != nil {
		return stateQuiet, err
	}
	// A plant that has never received this kind of care is not tracked
	// for it. Due state starts with the first recorded event.
	if len(dates) == 0 {
		return stateQuiet, nil
	}

	p, err := ResolvePeriodicity(dates, method, window, DefaultDays(c.db, plant, kind))
	if err != nil {
		return stateQuiet, err
	}

	last := Day(dates[len(dates)-1])
	next := last.AddDate(0, 0, int(math.Round(p.Days)))
	offset := DaysBetween(Day(today), next)

	switch {
	case offset < 0:
		c.bus.Publish(events.Event{
			Type:      events.CareOverdue,
			Severity:  events.SeverityWarning,
			PlantID:   plant.ID,
			PlantName: plant.Name,
			CareKind:  string(kind),
			Message:   fmt.Sprintf("%s %s (%d days overdue)", plant.Name, kindPhrase(kind), -offset),
			Metadata: map[string]string{
				"days_overdue": fmt.Sprintf("%d", -offset),
				"periodicity":  fmt.Sprintf("%.1f", p.Days),
				"method":       string(p.Method),
			},
		})
		return stateOverdue, nil

	case offset == 0:
		c.bus.Publish(events.Event{
			Type:      events.CareDue,
			Severity:  events.SeverityWarning,
			PlantID:   plant.ID,
			PlantName: plant.Name,
			CareKind:  string(kind),
			Message:   fmt.Sprintf("%s %s today", plant.Name, kindPhrase(kind)),
			Metadata: map[string]string{
				"periodicity": fmt.Sprintf("%.1f", p.Days),
				"method":      string(p.Method),
			},
		})
		return stateDue, nil
	}

	return stateQuiet, nil
}

// DefaultDays picks the fallback interval used when a plant has too
// little history for an estimate. Water and fertilizer come from the
// plant record; the remaining kinds from global settings.
func DefaultDays(database *sql.DB, plant models.Plant, kind Kind) int {
	switch kind {
	case KindWater:
		if plant.WateringSchedule > 0 {
			return plant.WateringSchedule
		}
	case KindFertilize:
		if plant.FertilizingSchedule > 0 {
			return plant.FertilizingSchedule
		}
	}
	return settings.GetInt(database, "schedules", string(kind), 7)
}

func kindPhrase(kind Kind) string {
	switch kind {
	case KindWater:
		return "needs water"
	case KindFertilize:
		return "needs fertilizer"
	case KindWash:
		return "needs a leaf wash"
	case KindNeemOil:
		return "needs neem oil treatment"
	case KindPestMix:
		return "needs pest mix treatment"
	default:
		return "needs care"
	}
}
