package service

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/progress"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitInvalid 当习惯配置不满足约束时返回
	ErrHabitInvalid = errors.New("invalid habit configuration")
	// ErrHabitImmutableField 尝试修改 direction/start_value 时返回
	ErrHabitImmutableField = errors.New("habit field cannot change after creation")
	// ErrHabitArchived 对已归档习惯打卡时返回
	ErrHabitArchived = errors.New("habit is archived")
)

const (
	HabitStatusActive   = "active"
	HabitStatusArchived = "archived"
)

var plainText = bluemonday.StrictPolicy()

// HabitService 负责 Habit 数据的增改查与归档
// Direction 与 StartValue 在创建后保持不变
// 归档只写 ArchivedAt，不删除任何打卡记录
type HabitService struct {
	db  *gorm.DB
	now func() time.Time
}

// HabitFilter 描述列表过滤条件
type HabitFilter struct {
	Status string
	Search string
}

// HabitInput 定义创建/更新习惯时可配置字段
// 更新时 Direction 为空、StartValue 为 nil 表示沿用原值
type HabitInput struct {
	Name              string
	Emoji             string
	Unit              string
	Notes             string
	Direction         string
	StartValue        *float64
	ProgressionMode   string
	ProgressionValue  float64
	TargetValue       *float64
	TrackingMode      string
	TrackingFrequency string
	EntryMode         string
	WeeklyAggregation string
	PauseStart        *time.Time
	PauseEnd          *time.Time
	AnchorHabitID     *uint
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB) *HabitService {
	return &HabitService{db: gdb, now: time.Now}
}

// SetClock 替换时间来源，主要面向测试场景。
func (s *HabitService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// List 返回习惯集合，支持状态与关键字筛选
func (s *HabitService) List(filter HabitFilter) ([]db.Habit, error) {
	var habits []db.Habit

	query := s.db.Model(&db.Habit{})

	switch strings.ToLower(strings.TrimSpace(filter.Status)) {
	case HabitStatusActive:
		query = query.Where("archived_at IS NULL")
	case HabitStatusArchived:
		query = query.Where("archived_at IS NOT NULL")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := fmt.Sprintf("%%%s%%", search)
		query = query.Where("name LIKE ? OR notes LIKE ?", like, like)
	}

	if err := query.Order("created_at ASC, id ASC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	return habits, nil
}

// Active 返回全部未归档的习惯
func (s *HabitService) Active() ([]db.Habit, error) {
	return s.List(HabitFilter{Status: HabitStatusActive})
}

// Get 根据 ID 获取习惯
func (s *HabitService) Get(id uint) (*db.Habit, error) {
	var habit db.Habit
	if err := s.db.First(&habit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &habit, nil
}

// Create 新建习惯
func (s *HabitService) Create(input HabitInput) (*db.Habit, error) {
	direction := normalizeEnum(input.Direction, "")
	if direction == "" {
		return nil, fmt.Errorf("%w: direction is required", ErrHabitInvalid)
	}
	if input.StartValue == nil {
		return nil, fmt.Errorf("%w: start value is required", ErrHabitInvalid)
	}

	habit := db.Habit{
		Direction:  direction,
		StartValue: *input.StartValue,
	}
	habit.CreatedAt = s.now()
	applyHabitInput(&habit, input)

	if err := s.validate(habit); err != nil {
		return nil, err
	}

	if err := s.db.Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &habit, nil
}

// Update 更新习惯，方向与起始值不可变
func (s *HabitService) Update(id uint, input HabitInput) (*db.Habit, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if direction := normalizeEnum(input.Direction, ""); direction != "" && direction != existing.Direction {
		return nil, fmt.Errorf("%w: direction", ErrHabitImmutableField)
	}
	if input.StartValue != nil && *input.StartValue != existing.StartValue {
		return nil, fmt.Errorf("%w: start_value", ErrHabitImmutableField)
	}

	applyHabitInput(existing, input)

	if err := s.validate(*existing); err != nil {
		return nil, err
	}

	if err := s.db.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return existing, nil
}

// Archive 软删除习惯
func (s *HabitService) Archive(id uint) (*db.Habit, error) {
	habit, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if habit.ArchivedAt != nil {
		return habit, nil
	}

	now := s.now()
	habit.ArchivedAt = &now
	if err := s.db.Model(habit).Update("archived_at", now).Error; err != nil {
		return nil, fmt.Errorf("archive habit: %w", err)
	}
	return habit, nil
}

// Restore 取消归档
func (s *HabitService) Restore(id uint) (*db.Habit, error) {
	habit, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	habit.ArchivedAt = nil
	if err := s.db.Model(habit).Update("archived_at", nil).Error; err != nil {
		return nil, fmt.Errorf("restore habit: %w", err)
	}
	return habit, nil
}

func applyHabitInput(habit *db.Habit, input HabitInput) {
	habit.Name = stripMarkup(input.Name)
	habit.Emoji = stripMarkup(input.Emoji)
	habit.Unit = stripMarkup(input.Unit)
	habit.Notes = strings.TrimSpace(input.Notes)
	habit.TrackingMode = normalizeEnum(input.TrackingMode, string(progress.TrackingDetailed))
	habit.TrackingFrequency = normalizeEnum(input.TrackingFrequency, string(progress.FrequencyDaily))
	habit.EntryMode = normalizeEnum(input.EntryMode, string(progress.EntryReplace))
	habit.WeeklyAggregation = ""
	if habit.TrackingFrequency == string(progress.FrequencyWeekly) {
		habit.WeeklyAggregation = normalizeEnum(input.WeeklyAggregation, string(progress.AggregateSumUnits))
	}
	habit.TargetValue = input.TargetValue
	habit.PauseStart = normalizeDatePtr(input.PauseStart)
	habit.PauseEnd = normalizeDatePtr(input.PauseEnd)
	habit.AnchorHabitID = input.AnchorHabitID

	habit.ProgressionMode = ""
	habit.ProgressionValue = 0
	habit.ProgressionPeriod = ""
	if mode := normalizeEnum(input.ProgressionMode, ""); mode != "" && habit.Direction != string(progress.DirectionMaintain) {
		habit.ProgressionMode = mode
		habit.ProgressionValue = input.ProgressionValue
		habit.ProgressionPeriod = string(progress.ProgressionWeekly)
	}
	if habit.Direction == string(progress.DirectionMaintain) {
		habit.TargetValue = nil
	}
}

func (s *HabitService) validate(habit db.Habit) error {
	if habit.Name == "" {
		return fmt.Errorf("%w: name is required", ErrHabitInvalid)
	}

	if (habit.PauseStart == nil) != (habit.PauseEnd == nil) {
		return fmt.Errorf("%w: pause needs both start and end", ErrHabitInvalid)
	}
	if habit.PauseStart != nil && habit.PauseEnd.Before(*habit.PauseStart) {
		return fmt.Errorf("%w: pause ends before it starts", ErrHabitInvalid)
	}

	if habit.AnchorHabitID != nil {
		if habit.ID != 0 && *habit.AnchorHabitID == habit.ID {
			return fmt.Errorf("%w: habit cannot anchor itself", ErrHabitInvalid)
		}
		var count int64
		if err := s.db.Model(&db.Habit{}).Where("id = ?", *habit.AnchorHabitID).Count(&count).Error; err != nil {
			return fmt.Errorf("check anchor habit: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("%w: anchor habit %d does not exist", ErrHabitInvalid, *habit.AnchorHabitID)
		}
	}

	if err := progress.Validate(ToProgressHabit(habit)); err != nil {
		return fmt.Errorf("%w: %w", ErrHabitInvalid, err)
	}
	return nil
}

// stripMarkup 去除名称类字段中的 HTML，保留原始字符
func stripMarkup(value string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(value)))
}

func normalizeEnum(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}

// normalizeToDate 将时间截断为 UTC 零点的日历日期，数据库内日期统一按此存储
func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := normalizeToDate(*t)
	return &d
}
