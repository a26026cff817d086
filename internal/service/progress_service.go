package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/progress"
)

// HabitSource 提供评估所需的习惯快照
type HabitSource interface {
	Get(id uint) (*db.Habit, error)
	Active() ([]db.Habit, error)
}

// EntrySource 提供评估所需的打卡记录
type EntrySource interface {
	ListBetween(filter EntryFilter) ([]db.Entry, error)
	LatestPerHabit(habitIDs []uint, until time.Time) ([]db.Entry, error)
}

// HabitProgress 汇总一个习惯在某个周期的评估结果与下一周期预览
// Problem 非空时表示该习惯配置损坏，Evaluation/Step 无意义
type HabitProgress struct {
	Habit      db.Habit
	Evaluation progress.Evaluation
	Step       progress.Step
	Problem    error
}

// ProgressService 从仓储读取快照并调用纯函数评估，自身不写任何数据
type ProgressService struct {
	habits  HabitSource
	entries EntrySource
}

// NewProgressService 构造 ProgressService
func NewProgressService(habits HabitSource, entries EntrySource) *ProgressService {
	return &ProgressService{habits: habits, entries: entries}
}

// Evaluate 计算习惯在 date 所在周期的状态；配置错误直接返回
func (s *ProgressService) Evaluate(habitID uint, date time.Time) (*HabitProgress, error) {
	habit, err := s.habits.Get(habitID)
	if err != nil {
		return nil, err
	}

	result := s.evaluate(*habit, date)
	if result.Problem != nil {
		return nil, result.Problem
	}
	return &result, nil
}

// Today 评估全部未归档习惯，单个习惯的配置错误记录在 Problem 中而不中断其它习惯
func (s *ProgressService) Today(date time.Time) ([]HabitProgress, error) {
	habits, err := s.habits.Active()
	if err != nil {
		return nil, err
	}

	results := make([]HabitProgress, 0, len(habits))
	for _, habit := range habits {
		result := s.evaluate(habit, date)
		if result.Problem != nil && !isConfigurationError(result.Problem) {
			return nil, result.Problem
		}
		results = append(results, result)
	}
	return results, nil
}

// Neglected 返回连续 thresholdDays 天以上未打卡的习惯
func (s *ProgressService) Neglected(today time.Time, thresholdDays int) ([]progress.Neglected, error) {
	habits, err := s.habits.Active()
	if err != nil {
		return nil, err
	}

	snapshots := make([]progress.Habit, 0, len(habits))
	ids := make([]uint, 0, len(habits))
	for _, habit := range habits {
		snapshots = append(snapshots, ToProgressHabit(habit))
		ids = append(ids, habit.ID)
	}

	latest, err := s.entries.LatestPerHabit(ids, today)
	if err != nil {
		return nil, err
	}

	return progress.DetectNeglected(snapshots, ToProgressEntries(latest), normalizeToDate(today), thresholdDays), nil
}

// Stats 计算区间内每个周期的状态、连胜与完成率
func (s *ProgressService) Stats(habitID uint, start, end time.Time) (*progress.Summary, error) {
	habit, err := s.habits.Get(habitID)
	if err != nil {
		return nil, err
	}

	snapshot := ToProgressHabit(*habit)
	rangeStart, _ := progress.PeriodBounds(snapshot, start)
	_, rangeEnd := progress.PeriodBounds(snapshot, end)

	entries, err := s.entries.ListBetween(EntryFilter{HabitID: habit.ID, Start: rangeStart, End: rangeEnd})
	if err != nil {
		return nil, err
	}

	summary, err := progress.Summarize(snapshot, ToProgressEntries(entries), normalizeToDate(start), normalizeToDate(end))
	if err != nil {
		return nil, fmt.Errorf("summarize habit %d: %w", habit.ID, err)
	}
	return &summary, nil
}

func (s *ProgressService) evaluate(habit db.Habit, date time.Time) HabitProgress {
	result := HabitProgress{Habit: habit}
	snapshot := ToProgressHabit(habit)
	day := normalizeToDate(date)

	start, end := progress.PeriodBounds(snapshot, day)
	entries, err := s.entries.ListBetween(EntryFilter{HabitID: habit.ID, Start: start, End: end})
	if err != nil {
		result.Problem = err
		return result
	}

	evaluation, err := progress.ClassifyEntry(snapshot, ToProgressEntries(entries), day)
	if err != nil {
		result.Problem = fmt.Errorf("evaluate habit %d: %w", habit.ID, err)
		return result
	}

	step, err := progress.ComputeNextTarget(snapshot, day)
	if err != nil {
		result.Problem = fmt.Errorf("next target for habit %d: %w", habit.ID, err)
		return result
	}

	result.Evaluation = evaluation
	result.Step = step
	return result
}

func isConfigurationError(err error) bool {
	var cfgErr *progress.ConfigurationError
	return errors.As(err, &cfgErr)
}
