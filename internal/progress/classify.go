package progress

import (
	"math"
	"time"
)

const doseEpsilon = 1e-9

func sameDose(a, b float64) bool {
	return math.Abs(a-b) < doseEpsilon
}

// ClassifyEntry evaluates the entries recorded in the period containing ref
// against that period's target. Entries of other habits are ignored.
//
// A weekly count-days habit reads StartValue as "N days per week" (see
// targetForPeriod), so progression never moves its goal. A day counts when
// it is marked done in simple mode, or when its value reaches one unit in
// detailed and counter modes, since StartValue leaves no other daily dose.
func ClassifyEntry(h Habit, entries []Entry, ref time.Time) (Evaluation, error) {
	if err := Validate(h); err != nil {
		return Evaluation{}, err
	}
	h = h.normalized()

	start, end := PeriodBounds(h, ref)
	target := targetForPeriod(h, ElapsedPeriods(h, ref))
	days, count := dailyValues(h, entries, start, end)

	var actual float64
	switch {
	case h.TrackingFrequency == FrequencyDaily:
		actual = days[0]
	case h.WeeklyAggregation == AggregateCountDays:
		for _, v := range days {
			if qualifyingDay(h, v) {
				actual++
			}
		}
	default:
		for _, v := range days {
			actual += v
		}
	}

	return Evaluation{
		HabitID:     h.ID,
		Direction:   h.Direction,
		Target:      target,
		Actual:      actual,
		Status:      classify(h.Direction, target, actual, count > 0),
		PeriodStart: start,
		PeriodEnd:   end,
		Paused:      h.Paused(ref),
		EntryCount:  count,
	}, nil
}

func qualifyingDay(h Habit, value float64) bool {
	if h.TrackingMode == TrackingSimple {
		return value > 0
	}
	return value >= 1-doseEpsilon
}

// classify maps actual against target. Decrease habits read "exceeded" as
// staying further under the ceiling than required.
func classify(dir Direction, target, actual float64, hasEntries bool) Status {
	if !hasEntries {
		return StatusEmpty
	}

	if dir == DirectionDecrease {
		switch {
		case sameDose(actual, target):
			return StatusCompleted
		case actual < target:
			return StatusExceeded
		default:
			return StatusPartial
		}
	}

	switch {
	case actual <= 0 && target > 0:
		return StatusEmpty
	case sameDose(actual, target):
		return StatusCompleted
	case actual > target:
		return StatusExceeded
	default:
		return StatusPartial
	}
}

// dailyValues folds the habit's entries between start and end into one value
// per day offset, honoring the entry mode. It also returns how many entries fell in range.
func dailyValues(h Habit, entries []Entry, start, end time.Time) (map[int]float64, int) {
	span := daysBetween(start, end)
	values := make(map[int]float64)
	latest := make(map[int]time.Time)
	count := 0

	for _, e := range entries {
		if e.HabitID != h.ID {
			continue
		}
		offset := daysBetween(start, e.Date)
		if offset < 0 || offset > span {
			continue
		}
		count++

		if h.EntryMode == EntryCumulative {
			values[offset] += e.Value
			continue
		}

		seen, ok := latest[offset]
		if !ok || !e.RecordedAt.Before(seen) {
			latest[offset] = e.RecordedAt
			values[offset] = e.Value
		}
	}

	return values, count
}
