package care

import (
	"fmt"
	"math"
	"time"
)

// NoNextEvent is the sentinel NextEventIndex when no prediction exists
// or the predicted day falls outside the visible window.
const NoNextEvent = -1

// Window is the day-indexed forecast consumed by the frontend timeline.
// Index AnchorIndex represents "today"; indices below it are history,
// indices above it are the future portion of the view.
type Window struct {
	// Start is the calendar date of index 0.
	Start time.Time `json:"start"`
	// Days flags, per index, whether a care event fell on that day.
	// Multiple same-day events collapse to a single flag.
	Days []bool `json:"days"`
	// AnchorIndex is the index representing today (pastDays - 1).
	AnchorIndex int `json:"anchor_index"`
	// NextEventIndex is the index of the predicted next event, or
	// NoNextEvent when there is no prediction or it lies outside the
	// window.
	NextEventIndex int `json:"next_event_index"`
	// Missed reports that the predicted day has already passed without
	// a new event. It is set from the prediction's offset alone, so it
	// stays true even when the predicted day scrolled out of view.
	Missed bool `json:"missed"`
}

// Forecast builds the day-indexed window for one care-event series.
//
// It is a pure function: today is an explicit parameter, never read from
// the wall clock, so identical inputs always produce identical output.
// The predicted next event is the most recent event date plus the
// rounded periodicity. An empty series produces no prediction.
func Forecast(dates []time.Time, periodicityDays float64, today time.Time, pastDays, futureDays int) (*Window, error) {
	if pastDays <= 0 || futureDays <= 0 {
		return nil, fmt.Errorf("%w: window sizes must be positive, got past=%d future=%d", ErrInvalidInput, pastDays, futureDays)
	}
	if periodicityDays <= 0 {
		return nil, fmt.Errorf("%w: periodicity must be positive, got %g", ErrInvalidInput, periodicityDays)
	}

	today = Day(today)
	total := pastDays + futureDays
	anchor := pastDays - 1

	w := &Window{
		Start:          today.AddDate(0, 0, -anchor),
		Days:           make([]bool, total),
		AnchorIndex:    anchor,
		NextEventIndex: NoNextEvent,
	}

	var last time.Time
	for _, d := range dates {
		day := Day(d)
		if day.After(last) {
			last = day
		}
		if idx := anchor + DaysBetween(today, day); idx >= 0 && idx < total {
			w.Days[idx] = true
		}
	}

	if last.IsZero() {
		return w, nil
	}

	next := last.AddDate(0, 0, int(math.Round(periodicityDays)))
	offset := DaysBetween(today, next)
	w.Missed = offset < 0
	if idx := anchor + offset; idx >= 0 && idx < total {
		w.NextEventIndex = idx
	}

	return w, nil
}
