package service

import (
	"errors"
	"testing"
	"time"

	"github.com/gentlehabits/internal/progress"
)

func newTestHabitService(t *testing.T) *HabitService {
	t.Helper()
	svc := NewHabitService(setupServiceTestDB(t))
	svc.SetClock(fixedClock(time.Date(2026, 10, 5, 8, 0, 0, 0, time.UTC)))
	return svc
}

func TestHabitServiceCreateAndList(t *testing.T) {
	svc := newTestHabitService(t)

	habit, err := svc.Create(HabitInput{
		Name:             "晨跑",
		Unit:             "min",
		Notes:            "每天慢慢加量",
		Direction:        "Increase",
		StartValue:       floatPtr(10),
		ProgressionMode:  "absolute",
		ProgressionValue: 2,
		TargetValue:      floatPtr(30),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if habit.ID == 0 {
		t.Fatal("expected habit to have ID")
	}
	if habit.Direction != string(progress.DirectionIncrease) {
		t.Fatalf("unexpected direction: %s", habit.Direction)
	}
	if habit.TrackingMode != string(progress.TrackingDetailed) || habit.TrackingFrequency != string(progress.FrequencyDaily) || habit.EntryMode != string(progress.EntryReplace) {
		t.Fatalf("unexpected defaults: %s/%s/%s", habit.TrackingMode, habit.TrackingFrequency, habit.EntryMode)
	}
	if habit.ProgressionPeriod != string(progress.ProgressionWeekly) {
		t.Fatalf("expected weekly progression period, got %q", habit.ProgressionPeriod)
	}
	if habit.WeeklyAggregation != "" {
		t.Fatalf("daily habit should not carry weekly aggregation, got %q", habit.WeeklyAggregation)
	}

	if _, err := svc.Create(HabitInput{Name: "冥想", Direction: "maintain", StartValue: floatPtr(5)}); err != nil {
		t.Fatalf("Create maintain habit returned error: %v", err)
	}

	habits, err := svc.List(HabitFilter{Status: HabitStatusActive})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("expected 2 habits, got %d", len(habits))
	}

	found, err := svc.List(HabitFilter{Search: "加量"})
	if err != nil {
		t.Fatalf("List with search returned error: %v", err)
	}
	if len(found) != 1 || found[0].ID != habit.ID {
		t.Fatalf("expected search to match the first habit, got %+v", found)
	}
}

func TestHabitServiceCreateRejectsInvalidConfiguration(t *testing.T) {
	svc := newTestHabitService(t)

	cases := []struct {
		name  string
		input HabitInput
		field string
	}{
		{
			name:  "missing name",
			input: HabitInput{Direction: "increase", StartValue: floatPtr(1), ProgressionMode: "absolute", ProgressionValue: 1},
		},
		{
			name:  "missing direction",
			input: HabitInput{Name: "阅读", StartValue: floatPtr(1)},
		},
		{
			name:  "missing start value",
			input: HabitInput{Name: "阅读", Direction: "increase"},
		},
		{
			name:  "increase without progression",
			input: HabitInput{Name: "阅读", Direction: "increase", StartValue: floatPtr(1)},
			field: "progression",
		},
		{
			name:  "percentage decrease of 100",
			input: HabitInput{Name: "咖啡", Direction: "decrease", StartValue: floatPtr(4), ProgressionMode: "percentage", ProgressionValue: 100},
			field: "progression.value",
		},
		{
			name:  "unknown direction",
			input: HabitInput{Name: "阅读", Direction: "sideways", StartValue: floatPtr(1)},
			field: "direction",
		},
		{
			name:  "pause without end",
			input: HabitInput{Name: "阅读", Direction: "maintain", StartValue: floatPtr(1), PauseStart: &time.Time{}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(tc.input)
			if !errors.Is(err, ErrHabitInvalid) {
				t.Fatalf("expected ErrHabitInvalid, got %v", err)
			}
			if tc.field == "" {
				return
			}
			var cfgErr *progress.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, cfgErr.Field)
			}
		})
	}
}

func TestHabitServiceMaintainDropsProgression(t *testing.T) {
	svc := newTestHabitService(t)

	habit, err := svc.Create(HabitInput{
		Name:             "喝水",
		Direction:        "maintain",
		StartValue:       floatPtr(8),
		ProgressionMode:  "absolute",
		ProgressionValue: 1,
		TargetValue:      floatPtr(12),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if habit.HasProgression() {
		t.Fatalf("maintain habit should not keep progression, got %q", habit.ProgressionMode)
	}
	if habit.TargetValue != nil {
		t.Fatalf("maintain habit should not keep a target value, got %v", *habit.TargetValue)
	}
}

func TestHabitServiceUpdate(t *testing.T) {
	svc := newTestHabitService(t)

	habit, err := svc.Create(HabitInput{
		Name:             "俯卧撑",
		Direction:        "increase",
		StartValue:       floatPtr(5),
		ProgressionMode:  "absolute",
		ProgressionValue: 1,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.Update(habit.ID, HabitInput{
		Name:             "<b>Push-ups & planks</b>",
		ProgressionMode:  "absolute",
		ProgressionValue: 2,
		TargetValue:      floatPtr(40),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "Push-ups & planks" {
		t.Fatalf("expected markup to be stripped, got %q", updated.Name)
	}
	if updated.ProgressionValue != 2 {
		t.Fatalf("expected progression value 2, got %v", updated.ProgressionValue)
	}
	if updated.StartValue != 5 || updated.Direction != string(progress.DirectionIncrease) {
		t.Fatalf("immutable fields changed: %v %s", updated.StartValue, updated.Direction)
	}

	if _, err := svc.Update(habit.ID, HabitInput{Name: "俯卧撑", Direction: "decrease", ProgressionMode: "absolute", ProgressionValue: 1}); !errors.Is(err, ErrHabitImmutableField) {
		t.Fatalf("expected ErrHabitImmutableField for direction, got %v", err)
	}
	if _, err := svc.Update(habit.ID, HabitInput{Name: "俯卧撑", StartValue: floatPtr(6), ProgressionMode: "absolute", ProgressionValue: 1}); !errors.Is(err, ErrHabitImmutableField) {
		t.Fatalf("expected ErrHabitImmutableField for start value, got %v", err)
	}
	if _, err := svc.Update(9999, HabitInput{Name: "不存在"}); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestHabitServiceAnchorHabit(t *testing.T) {
	svc := newTestHabitService(t)

	anchor, err := svc.Create(HabitInput{Name: "刷牙", Direction: "maintain", StartValue: floatPtr(1), TrackingMode: "simple"})
	if err != nil {
		t.Fatalf("Create anchor returned error: %v", err)
	}

	missing := uint(4242)
	if _, err := svc.Create(HabitInput{Name: "用牙线", Direction: "maintain", StartValue: floatPtr(1), AnchorHabitID: &missing}); !errors.Is(err, ErrHabitInvalid) {
		t.Fatalf("expected ErrHabitInvalid for missing anchor, got %v", err)
	}

	stacked, err := svc.Create(HabitInput{Name: "用牙线", Direction: "maintain", StartValue: floatPtr(1), AnchorHabitID: &anchor.ID})
	if err != nil {
		t.Fatalf("Create stacked habit returned error: %v", err)
	}

	if _, err := svc.Update(stacked.ID, HabitInput{Name: "用牙线", AnchorHabitID: &stacked.ID}); !errors.Is(err, ErrHabitInvalid) {
		t.Fatalf("expected ErrHabitInvalid for self anchor, got %v", err)
	}
}

func TestHabitServiceArchiveAndRestore(t *testing.T) {
	svc := newTestHabitService(t)

	habit, err := svc.Create(HabitInput{Name: "拉伸", Direction: "maintain", StartValue: floatPtr(10)})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	archived, err := svc.Archive(habit.ID)
	if err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}
	if archived.ArchivedAt == nil {
		t.Fatal("expected ArchivedAt to be set")
	}

	active, err := svc.Active()
	if err != nil {
		t.Fatalf("Active returned error: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active habits, got %d", len(active))
	}

	archivedList, err := svc.List(HabitFilter{Status: HabitStatusArchived})
	if err != nil {
		t.Fatalf("List archived returned error: %v", err)
	}
	if len(archivedList) != 1 {
		t.Fatalf("expected 1 archived habit, got %d", len(archivedList))
	}

	restored, err := svc.Restore(habit.ID)
	if err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if restored.ArchivedAt != nil {
		t.Fatal("expected ArchivedAt to be cleared")
	}

	reloaded, err := svc.Get(habit.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if reloaded.ArchivedAt != nil {
		t.Fatal("expected restored habit to stay active after reload")
	}
}
