package progress

import "fmt"

// ConfigurationError reports a habit definition the evaluator cannot work with.
// It usually means the stored record is corrupt and must be surfaced, not defaulted.
type ConfigurationError struct {
	HabitID uint
	Field   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("habit %d: invalid %s: %s", e.HabitID, e.Field, e.Reason)
}

func configErr(h Habit, field, format string, args ...any) error {
	return &ConfigurationError{HabitID: h.ID, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the invariants of a habit definition.
func Validate(h Habit) error {
	h = h.normalized()

	switch h.Direction {
	case DirectionIncrease, DirectionDecrease, DirectionMaintain:
	default:
		return configErr(h, "direction", "unknown value %q", h.Direction)
	}

	switch h.TrackingFrequency {
	case FrequencyDaily, FrequencyWeekly:
	default:
		return configErr(h, "tracking_frequency", "unknown value %q", h.TrackingFrequency)
	}

	switch h.EntryMode {
	case EntryReplace, EntryCumulative:
	default:
		return configErr(h, "entry_mode", "unknown value %q", h.EntryMode)
	}

	switch h.TrackingMode {
	case TrackingSimple, TrackingDetailed, TrackingCounter:
	default:
		return configErr(h, "tracking_mode", "unknown value %q", h.TrackingMode)
	}

	if h.TrackingFrequency == FrequencyWeekly {
		switch h.WeeklyAggregation {
		case AggregateCountDays, AggregateSumUnits:
		default:
			return configErr(h, "weekly_aggregation", "unknown value %q", h.WeeklyAggregation)
		}
	}

	if h.StartValue < 0 {
		return configErr(h, "start_value", "must not be negative, got %s", FormatValue(h.StartValue))
	}

	if h.Direction == DirectionMaintain {
		return nil
	}

	p := h.Progression
	if p == nil {
		return configErr(h, "progression", "required for direction %s", h.Direction)
	}
	if p.Period != ProgressionWeekly {
		return configErr(h, "progression.period", "unsupported value %q", p.Period)
	}
	if p.Value <= 0 {
		return configErr(h, "progression.value", "must be positive, got %s", FormatValue(p.Value))
	}
	switch p.Mode {
	case ProgressionAbsolute:
	case ProgressionPercentage:
		if h.Direction == DirectionDecrease && p.Value >= 100 {
			return configErr(h, "progression.value", "percentage decrease must be below 100, got %s", FormatValue(p.Value))
		}
	default:
		return configErr(h, "progression.mode", "unknown value %q", p.Mode)
	}

	if h.TargetValue != nil {
		target := *h.TargetValue
		if target < 0 {
			return configErr(h, "target_value", "must not be negative, got %s", FormatValue(target))
		}
		if h.Direction == DirectionIncrease && target < h.StartValue {
			return configErr(h, "target_value", "%s is below start value %s", FormatValue(target), FormatValue(h.StartValue))
		}
		if h.Direction == DirectionDecrease && target > h.StartValue {
			return configErr(h, "target_value", "%s is above start value %s", FormatValue(target), FormatValue(h.StartValue))
		}
	}

	return nil
}
