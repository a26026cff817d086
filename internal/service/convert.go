package service

import (
	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/progress"
)

// ToProgressHabit 将持久化模型转换为评估所需的快照，不做校验
func ToProgressHabit(h db.Habit) progress.Habit {
	habit := progress.Habit{
		ID:                h.ID,
		Name:              h.Name,
		Emoji:             h.Emoji,
		Unit:              h.Unit,
		Direction:         progress.Direction(h.Direction),
		StartValue:        h.StartValue,
		TargetValue:       h.TargetValue,
		TrackingMode:      progress.TrackingMode(h.TrackingMode),
		TrackingFrequency: progress.TrackingFrequency(h.TrackingFrequency),
		EntryMode:         progress.EntryMode(h.EntryMode),
		WeeklyAggregation: progress.WeeklyAggregation(h.WeeklyAggregation),
		CreatedAt:         h.CreatedAt,
		ArchivedAt:        h.ArchivedAt,
		AnchorHabitID:     h.AnchorHabitID,
	}

	if h.HasProgression() {
		habit.Progression = &progress.Progression{
			Mode:   progress.ProgressionMode(h.ProgressionMode),
			Value:  h.ProgressionValue,
			Period: progress.ProgressionPeriod(h.ProgressionPeriod),
		}
	}

	if h.PauseStart != nil && h.PauseEnd != nil {
		habit.PlannedPause = &progress.Pause{Start: *h.PauseStart, End: *h.PauseEnd}
	}

	return habit
}

// ToProgressEntries 转换打卡记录
func ToProgressEntries(entries []db.Entry) []progress.Entry {
	result := make([]progress.Entry, 0, len(entries))
	for _, e := range entries {
		result = append(result, progress.Entry{
			HabitID:    e.HabitID,
			Date:       e.EntryDate,
			Value:      e.Value,
			RecordedAt: e.RecordedAt,
		})
	}
	return result
}
