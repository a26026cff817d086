package progress

import "time"

// Summary aggregates the evaluations of every tracking period in a range.
type Summary struct {
	RangeStart        time.Time
	RangeEnd          time.Time
	Periods           []Evaluation
	Empty             int
	Partial           int
	Completed         int
	Exceeded          int
	PausedPeriods     int
	ActivePeriods     int
	SuccessfulPeriods int
	CompletionRate    float64
	CurrentStreak     int
	LongestStreak     int
}

// Summarize evaluates each day (daily habits) or ISO week (weekly habits)
// between start and end. Periods that end before the habit existed are skipped,
// paused periods neither count nor break a streak, and an empty final period is
// treated as still in progress.
func Summarize(h Habit, entries []Entry, start, end time.Time) (Summary, error) {
	summary := Summary{RangeStart: civilDay(start), RangeEnd: civilDay(end)}
	if err := Validate(h); err != nil {
		return summary, err
	}
	if daysBetween(start, end) < 0 {
		return summary, nil
	}

	own := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.HabitID == h.ID {
			own = append(own, e)
		}
	}

	cursor, _ := PeriodBounds(h, start)
	for daysBetween(cursor, end) >= 0 {
		eval, err := ClassifyEntry(h, own, cursor)
		if err != nil {
			return summary, err
		}
		cursor = eval.PeriodEnd.AddDate(0, 0, 1)

		if daysBetween(h.CreatedAt, eval.PeriodEnd) < 0 {
			continue
		}
		summary.Periods = append(summary.Periods, eval)
	}

	streak := 0
	for i, eval := range summary.Periods {
		if eval.Paused {
			summary.PausedPeriods++
			continue
		}
		summary.ActivePeriods++

		switch eval.Status {
		case StatusEmpty:
			summary.Empty++
		case StatusPartial:
			summary.Partial++
		case StatusCompleted:
			summary.Completed++
		case StatusExceeded:
			summary.Exceeded++
		}

		if eval.Successful() {
			summary.SuccessfulPeriods++
			streak++
			if streak > summary.LongestStreak {
				summary.LongestStreak = streak
			}
			continue
		}

		last := i == len(summary.Periods)-1
		if !(last && eval.Status == StatusEmpty) {
			streak = 0
		}
	}

	summary.CurrentStreak = streak
	if summary.ActivePeriods > 0 {
		summary.CompletionRate = float64(summary.SuccessfulPeriods) / float64(summary.ActivePeriods)
	}

	return summary, nil
}
