package progress

import "time"

const daysPerWeek = 7

// civilDay truncates t to midnight in its own location.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// WeekStart returns the Monday of t's ISO week.
func WeekStart(t time.Time) time.Time {
	day := civilDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// PeriodBounds returns the first and last day of the tracking period containing ref.
func PeriodBounds(h Habit, ref time.Time) (time.Time, time.Time) {
	if h.normalized().TrackingFrequency == FrequencyWeekly {
		start := WeekStart(ref)
		return start, start.AddDate(0, 0, daysPerWeek-1)
	}
	day := civilDay(ref)
	return day, day
}

// ElapsedPeriods counts whole progression weeks between the habit's creation
// and the start of ref's tracking period. Dates before creation yield 0.
func ElapsedPeriods(h Habit, ref time.Time) int {
	start, _ := PeriodBounds(h, ref)
	days := daysBetween(h.CreatedAt, start)
	if days <= 0 {
		return 0
	}
	return days / daysPerWeek
}

// normalized fills zero-valued enums with the defaults of the creation form.
func (h Habit) normalized() Habit {
	if h.TrackingMode == "" {
		h.TrackingMode = TrackingDetailed
	}
	if h.TrackingFrequency == "" {
		h.TrackingFrequency = FrequencyDaily
	}
	if h.EntryMode == "" {
		h.EntryMode = EntryReplace
	}
	if h.TrackingFrequency == FrequencyWeekly && h.WeeklyAggregation == "" {
		h.WeeklyAggregation = AggregateSumUnits
	}
	return h
}
