package progress

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// DefaultNeglectThresholdDays is the gap after which a habit counts as neglected.
const DefaultNeglectThresholdDays = 2

// DetectNeglected lists active, non-paused habits whose latest entry is at
// least thresholdDays old. Habits without entries count from their creation,
// and a planned pause that ended since the last entry restarts the count.
func DetectNeglected(habits []Habit, entries []Entry, today time.Time, thresholdDays int) []Neglected {
	if thresholdDays <= 0 {
		thresholdDays = DefaultNeglectThresholdDays
	}

	latest := make(map[uint]time.Time)
	for _, e := range entries {
		if daysBetween(e.Date, today) < 0 {
			continue
		}
		if seen, ok := latest[e.HabitID]; !ok || daysBetween(seen, e.Date) > 0 {
			latest[e.HabitID] = e.Date
		}
	}

	result := make([]Neglected, 0)
	for _, h := range habits {
		if h.Archived(today) || h.Paused(today) {
			continue
		}

		baseline, ok := latest[h.ID]
		if !ok {
			baseline = h.CreatedAt
		}
		if p := h.PlannedPause; p != nil && daysBetween(baseline, p.End) > 0 && daysBetween(p.End, today) > 0 {
			baseline = p.End
		}

		days := daysBetween(baseline, today)
		if days >= thresholdDays {
			result = append(result, Neglected{Habit: h, DaysSinceLastEntry: days})
		}
	}

	slices.SortFunc(result, func(a, b Neglected) int {
		if diff := cmp.Compare(b.DaysSinceLastEntry, a.DaysSinceLastEntry); diff != 0 {
			return diff
		}
		if diff := cmp.Compare(strings.ToLower(a.Habit.Name), strings.ToLower(b.Habit.Name)); diff != 0 {
			return diff
		}
		return cmp.Compare(a.Habit.ID, b.Habit.ID)
	})

	return result
}
