package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/progress"
	"gorm.io/gorm"
)

// ErrEntryInvalid 当打卡数据不合法时返回
var ErrEntryInvalid = errors.New("invalid entry")

const (
	EntrySourceManual  = "manual"
	EntrySourceCounter = "counter"
	EntrySourceImport  = "import"
)

// EntryService 负责打卡记录的写入与查询
// 记录只追加：replace 模式靠 RecordedAt 决定当天的有效值，cumulative 模式逐条累加
type EntryService struct {
	db  *gorm.DB
	now func() time.Time
}

// EntryInput 定义一次打卡
// Value 为 nil 时仅 simple 模式可用，视为“完成”记 1
type EntryInput struct {
	HabitID uint
	Date    time.Time
	Value   *float64
	Source  string
	Note    string
}

// EntryFilter 指定查询区间
type EntryFilter struct {
	HabitID uint
	Start   time.Time
	End     time.Time
}

// NewEntryService 构造 EntryService
func NewEntryService(gdb *gorm.DB) *EntryService {
	return &EntryService{db: gdb, now: time.Now}
}

// SetClock 替换时间来源，主要面向测试场景。
func (s *EntryService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Record 写入一条打卡记录
func (s *EntryService) Record(input EntryInput) (*db.Entry, error) {
	habit, err := s.activeHabit(input.HabitID)
	if err != nil {
		return nil, err
	}

	value, err := entryValue(*habit, input.Value)
	if err != nil {
		return nil, err
	}

	return s.insert(*habit, input.Date, value, defaultSource(input.Source, EntrySourceManual), input.Note)
}

// Increment 计数器模式下的一次点击
// cumulative 模式追加 delta（只能为正）；replace 模式在当天当前值的基础上加 delta 后写入新值
func (s *EntryService) Increment(habitID uint, date time.Time, delta float64) (*db.Entry, error) {
	habit, err := s.activeHabit(habitID)
	if err != nil {
		return nil, err
	}
	if delta == 0 {
		delta = 1
	}

	if delta < 0 && habit.EntryMode == string(progress.EntryCumulative) {
		return nil, fmt.Errorf("%w: cumulative entries can only grow", ErrEntryInvalid)
	}

	day := normalizeToDate(date)
	entries, err := s.ListBetween(EntryFilter{HabitID: habitID, Start: day, End: day})
	if err != nil {
		return nil, err
	}
	current := dayTotal(*habit, entries)

	if current+delta < 0 {
		return nil, fmt.Errorf("%w: value cannot drop below zero", ErrEntryInvalid)
	}

	value := current + delta
	if habit.EntryMode == string(progress.EntryCumulative) {
		value = delta
	}

	return s.insert(*habit, day, value, EntrySourceCounter, "")
}

// ListBetween 返回指定区间内的打卡记录，按日期与记录时间排序
func (s *EntryService) ListBetween(filter EntryFilter) ([]db.Entry, error) {
	var entries []db.Entry

	if filter.HabitID == 0 {
		return nil, fmt.Errorf("habit id is required")
	}

	start := normalizeToDate(filter.Start)
	end := normalizeToDate(filter.End)

	if err := s.db.Where("habit_id = ?", filter.HabitID).
		Where("entry_date BETWEEN ? AND ?", start, end).
		Order("entry_date ASC, recorded_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return entries, nil
}

// LatestPerHabit 返回每个习惯在 until 当天及之前的最后一条记录
func (s *EntryService) LatestPerHabit(habitIDs []uint, until time.Time) ([]db.Entry, error) {
	day := normalizeToDate(until)
	result := make([]db.Entry, 0, len(habitIDs))

	for _, id := range habitIDs {
		var entry db.Entry
		err := s.db.Where("habit_id = ? AND entry_date <= ?", id, day).
			Order("entry_date DESC, recorded_at DESC").
			First(&entry).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("latest entry for habit %d: %w", id, err)
		}
		result = append(result, entry)
	}

	return result, nil
}

func (s *EntryService) activeHabit(id uint) (*db.Habit, error) {
	var habit db.Habit
	if err := s.db.First(&habit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	if habit.ArchivedAt != nil {
		return nil, ErrHabitArchived
	}
	return &habit, nil
}

func (s *EntryService) insert(habit db.Habit, date time.Time, value float64, source, note string) (*db.Entry, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrEntryInvalid)
	}

	now := s.now()
	day := normalizeToDate(date)
	if day.After(normalizeToDate(now)) {
		return nil, fmt.Errorf("%w: date %s is in the future", ErrEntryInvalid, day.Format(time.DateOnly))
	}

	entry := db.Entry{
		HabitID:    habit.ID,
		EntryDate:  day,
		Value:      value,
		RecordedAt: now,
		Source:     source,
		Note:       strings.TrimSpace(note),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("record entry: %w", err)
	}
	return &entry, nil
}

func entryValue(habit db.Habit, value *float64) (float64, error) {
	if value == nil {
		if habit.TrackingMode == string(progress.TrackingSimple) {
			return 1, nil
		}
		return 0, fmt.Errorf("%w: value is required", ErrEntryInvalid)
	}
	if *value < 0 {
		return 0, fmt.Errorf("%w: value must not be negative", ErrEntryInvalid)
	}
	return *value, nil
}

// dayTotal 按入账模式折算一天的有效值；entries 需按记录时间升序
func dayTotal(habit db.Habit, entries []db.Entry) float64 {
	if habit.EntryMode == string(progress.EntryCumulative) {
		var sum float64
		for _, e := range entries {
			sum += e.Value
		}
		return sum
	}
	if len(entries) == 0 {
		return 0
	}
	return entries[len(entries)-1].Value
}

func defaultSource(source, fallback string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return fallback
	}
	return source
}
