package progress

import (
	"math"
	"time"
)

// ComputeTarget returns the expected dose for the period containing ref.
func ComputeTarget(h Habit, ref time.Time) (float64, error) {
	if err := Validate(h); err != nil {
		return 0, err
	}
	return targetForPeriod(h, ElapsedPeriods(h, ref)), nil
}

// TargetForPeriod returns the dose after p progression steps.
func TargetForPeriod(h Habit, p int) (float64, error) {
	if err := Validate(h); err != nil {
		return 0, err
	}
	return targetForPeriod(h, p), nil
}

func targetForPeriod(h Habit, p int) float64 {
	if p < 0 {
		p = 0
	}

	start := h.StartValue
	if h.countsDays() {
		return math.Min(start, daysPerWeek)
	}
	if h.Direction == DirectionMaintain || h.Progression == nil || p == 0 {
		return start
	}

	steps := float64(p)
	value := h.Progression.Value
	var target float64

	switch h.Progression.Mode {
	case ProgressionPercentage:
		factor := 1 + value/100
		if h.Direction == DirectionDecrease {
			factor = 1 - value/100
		}
		target = roundDose(start * math.Pow(factor, steps))
	default:
		if h.Direction == DirectionDecrease {
			target = start - steps*value
		} else {
			target = start + steps*value
		}
	}

	return clampTarget(h, target)
}

// countsDays reports a weekly habit whose start value is a days-per-week goal.
func (h Habit) countsDays() bool {
	return h.TrackingFrequency == FrequencyWeekly && h.WeeklyAggregation == AggregateCountDays
}

// clampTarget pins the dose to the goal once progression would cross it.
func clampTarget(h Habit, target float64) float64 {
	if h.TargetValue != nil {
		goal := *h.TargetValue
		if h.Direction == DirectionIncrease && target > goal {
			target = goal
		}
		if h.Direction == DirectionDecrease && target < goal {
			target = goal
		}
	}
	if target < 0 {
		return 0
	}
	return target
}

func roundDose(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeNextTarget previews the dose of the following progression week and
// reports whether that step lands on the goal for the first time.
func ComputeNextTarget(h Habit, ref time.Time) (Step, error) {
	if err := Validate(h); err != nil {
		return Step{}, err
	}

	p := ElapsedPeriods(h, ref)
	step := Step{
		CurrentTarget: targetForPeriod(h, p),
		NextTarget:    targetForPeriod(h, p+1),
	}

	if h.TargetValue != nil {
		goal := *h.TargetValue
		step.GoalJustReached = !sameDose(step.CurrentTarget, goal) && sameDose(step.NextTarget, goal)
	}

	return step, nil
}
