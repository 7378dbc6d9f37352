package settings

import (
	"fmt"
	"strconv"
)

// Defaults defines every known setting and its initial value.
//
// The schedules category holds the fallback intervals used when a plant
// has fewer than two recorded events of a kind; forecast holds the
// estimator and timeline-window parameters.
var Defaults = []Setting{
	// Fallback schedules, in days, per care kind
	{Category: "schedules", Key: "water", Value: "7", ValueType: "int", Description: "Default watering interval in days"},
	{Category: "schedules", Key: "fertilize", Value: "14", ValueType: "int", Description: "Default fertilizing interval in days"},
	{Category: "schedules", Key: "wash", Value: "30", ValueType: "int", Description: "Default leaf-washing interval in days"},
	{Category: "schedules", Key: "neem_oil", Value: "60", ValueType: "int", Description: "Default neem oil treatment interval in days"},
	{Category: "schedules", Key: "pest_mix", Value: "30", ValueType: "int", Description: "Default pest mix treatment interval in days"},

	// Periodicity estimation and forecast window
	{Category: "forecast", Key: "method", Value: "moving_average", ValueType: "string", Description: "Periodicity estimation method (mean or moving_average)"},
	{Category: "forecast", Key: "moving_average_window", Value: "5", ValueType: "int", Description: "Number of recent intervals averaged by moving_average"},
	{Category: "forecast", Key: "past_days", Value: "30", ValueType: "int", Description: "Days of history shown in the forecast timeline"},
	{Category: "forecast", Key: "future_days", Value: "10", ValueType: "int", Description: "Days of future shown in the forecast timeline"},

	// Overdue alerting
	{Category: "alerts", Key: "enabled", Value: "true", ValueType: "bool", Description: "Enable overdue-care notifications"},
	{Category: "alerts", Key: "cooldown_hours", Value: "24", ValueType: "int", Description: "Hours between repeated alerts for the same plant and kind"},
}

// validateValue checks a value against its declared type before it is
// written.
func validateValue(valueType, value string) error {
	switch valueType {
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("value must be an integer")
		}
		if n <= 0 {
			return fmt.Errorf("value must be positive")
		}
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("value must be 'true' or 'false'")
		}
	}
	return nil
}
