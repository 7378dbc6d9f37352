package care

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInsufficientHistory means fewer than two care dates were
	// recorded, so no interval can be computed. Callers substitute the
	// configured per-kind default schedule (see ResolvePeriodicity).
	ErrInsufficientHistory = errors.New("fewer than two care dates recorded")

	// ErrInvalidInput means the caller broke the contract: an unsorted
	// or non-distinct date list, an unknown method, or non-positive
	// window sizes. These are rejected rather than silently corrected
	// so data-quality bugs surface at the boundary.
	ErrInvalidInput = errors.New("invalid input")
)

// DefaultMovingAverageWindow is the number of most recent gaps averaged
// by the moving_average method when no window is configured.
const DefaultMovingAverageWindow = 5

// EstimatePeriodicity computes the recurrence interval, in days, from an
// ascending list of distinct care dates.
//
// The mean method averages every gap between consecutive dates; the
// moving_average method averages only the last `window` gaps (all gaps
// when fewer exist). A window <= 0 selects DefaultMovingAverageWindow.
// The result is fractional; round before adding it to a date.
func EstimatePeriodicity(dates []time.Time, method Method, window int) (float64, error) {
	if !ascendingDistinct(dates) {
		return 0, fmt.Errorf("%w: care dates must be ascending and distinct", ErrInvalidInput)
	}
	if len(dates) < 2 {
		return 0, ErrInsufficientHistory
	}

	gaps := make([]float64, len(dates)-1)
	for i := range gaps {
		gaps[i] = float64(DaysBetween(dates[i], dates[i+1]))
	}

	switch method {
	case MethodMean:
		return mean(gaps), nil
	case MethodMovingAverage:
		if window <= 0 {
			window = DefaultMovingAverageWindow
		}
		if len(gaps) > window {
			gaps = gaps[len(gaps)-window:]
		}
		return mean(gaps), nil
	default:
		return 0, fmt.Errorf("%w: unknown estimation method %q", ErrInvalidInput, method)
	}
}

// ResolvePeriodicity estimates from history and falls back to the
// configured default schedule when there is not enough of it. The
// returned Method tag tells the display layer whether the value was
// computed or defaulted.
func ResolvePeriodicity(dates []time.Time, method Method, window, defaultDays int) (Periodicity, error) {
	days, err := EstimatePeriodicity(dates, method, window)
	if err == nil {
		return Periodicity{Days: days, Method: method}, nil
	}
	if !errors.Is(err, ErrInsufficientHistory) {
		return Periodicity{}, err
	}
	if defaultDays <= 0 {
		return Periodicity{}, fmt.Errorf("%w: default schedule must be positive, got %d", ErrInvalidInput, defaultDays)
	}
	return Periodicity{Days: float64(defaultDays), Method: MethodDefault}, nil
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
