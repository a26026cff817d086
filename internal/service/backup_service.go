package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/progress"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupVersion 为当前导出文档的格式版本
const BackupVersion = 1

// ErrBackupInvalid 导入文档不合法时返回
var ErrBackupInvalid = errors.New("invalid backup document")

// BackupDocument 是全部习惯与打卡记录的 JSON 快照
type BackupDocument struct {
	Version    int           `json:"version"`
	ExportID   string        `json:"export_id"`
	ExportedAt time.Time     `json:"exported_at"`
	Habits     []BackupHabit `json:"habits"`
	Entries    []BackupEntry `json:"entries"`
}

type BackupProgression struct {
	Mode   string  `json:"mode"`
	Value  float64 `json:"value"`
	Period string  `json:"period"`
}

type BackupPause struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type BackupHabit struct {
	ID                uint               `json:"id"`
	Name              string             `json:"name"`
	Emoji             string             `json:"emoji,omitempty"`
	Unit              string             `json:"unit,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	Direction         string             `json:"direction"`
	StartValue        float64            `json:"start_value"`
	Progression       *BackupProgression `json:"progression"`
	TargetValue       *float64           `json:"target_value"`
	TrackingMode      string             `json:"tracking_mode"`
	TrackingFrequency string             `json:"tracking_frequency"`
	EntryMode         string             `json:"entry_mode"`
	WeeklyAggregation string             `json:"weekly_aggregation,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	ArchivedAt        *time.Time         `json:"archived_at,omitempty"`
	PlannedPause      *BackupPause       `json:"planned_pause,omitempty"`
	AnchorHabitID     *uint              `json:"anchor_habit_id,omitempty"`
}

type BackupEntry struct {
	HabitID    uint      `json:"habit_id"`
	Date       string    `json:"date"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
	Source     string    `json:"source,omitempty"`
	Note       string    `json:"note,omitempty"`
}

// ImportResult 统计导入数量
type ImportResult struct {
	Habits  int
	Entries int
}

// BackupService 负责导出/导入 JSON 文档，导入总是追加为新习惯
type BackupService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBackupService 构造 BackupService
func NewBackupService(gdb *gorm.DB) *BackupService {
	return &BackupService{db: gdb, now: time.Now}
}

// SetClock 替换时间来源，主要面向测试场景。
func (s *BackupService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Export 导出全部习惯（含归档）与打卡记录
func (s *BackupService) Export() (*BackupDocument, error) {
	var habits []db.Habit
	if err := s.db.Order("id ASC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("export habits: %w", err)
	}

	var entries []db.Entry
	if err := s.db.Order("habit_id ASC, entry_date ASC, recorded_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("export entries: %w", err)
	}

	doc := &BackupDocument{
		Version:    BackupVersion,
		ExportID:   uuid.NewString(),
		ExportedAt: s.now().UTC(),
		Habits:     make([]BackupHabit, 0, len(habits)),
		Entries:    make([]BackupEntry, 0, len(entries)),
	}

	for _, h := range habits {
		item := BackupHabit{
			ID:                h.ID,
			Name:              h.Name,
			Emoji:             h.Emoji,
			Unit:              h.Unit,
			Notes:             h.Notes,
			Direction:         h.Direction,
			StartValue:        h.StartValue,
			TargetValue:       h.TargetValue,
			TrackingMode:      h.TrackingMode,
			TrackingFrequency: h.TrackingFrequency,
			EntryMode:         h.EntryMode,
			WeeklyAggregation: h.WeeklyAggregation,
			CreatedAt:         h.CreatedAt,
			ArchivedAt:        h.ArchivedAt,
			AnchorHabitID:     h.AnchorHabitID,
		}
		if h.HasProgression() {
			item.Progression = &BackupProgression{Mode: h.ProgressionMode, Value: h.ProgressionValue, Period: h.ProgressionPeriod}
		}
		if h.PauseStart != nil && h.PauseEnd != nil {
			item.PlannedPause = &BackupPause{
				StartDate: h.PauseStart.Format(time.DateOnly),
				EndDate:   h.PauseEnd.Format(time.DateOnly),
			}
		}
		doc.Habits = append(doc.Habits, item)
	}

	for _, e := range entries {
		doc.Entries = append(doc.Entries, BackupEntry{
			HabitID:    e.HabitID,
			Date:       e.EntryDate.Format(time.DateOnly),
			Value:      e.Value,
			RecordedAt: e.RecordedAt,
			Source:     e.Source,
			Note:       e.Note,
		})
	}

	return doc, nil
}

// Import 将文档中的习惯作为新记录写入，并按映射后的 ID 写入打卡；任一记录不合法则整体回滚
func (s *BackupService) Import(doc *BackupDocument) (*ImportResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrBackupInvalid)
	}
	if doc.Version != BackupVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBackupInvalid, doc.Version)
	}

	habits := make([]db.Habit, 0, len(doc.Habits))
	for _, item := range doc.Habits {
		habit, err := habitFromBackup(item)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}

	result := &ImportResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ids := make(map[uint]uint, len(habits))
		for i := range habits {
			oldID := doc.Habits[i].ID
			if _, dup := ids[oldID]; dup {
				return fmt.Errorf("%w: duplicate habit id %d", ErrBackupInvalid, oldID)
			}
			anchor := habits[i].AnchorHabitID
			habits[i].AnchorHabitID = nil
			if err := tx.Create(&habits[i]).Error; err != nil {
				return fmt.Errorf("import habit %d: %w", oldID, err)
			}
			habits[i].AnchorHabitID = anchor
			ids[oldID] = habits[i].ID
		}

		for i := range habits {
			if habits[i].AnchorHabitID == nil {
				continue
			}
			mapped, ok := ids[*habits[i].AnchorHabitID]
			if !ok {
				continue
			}
			if err := tx.Model(&habits[i]).Update("anchor_habit_id", mapped).Error; err != nil {
				return fmt.Errorf("link anchor habit: %w", err)
			}
		}
		result.Habits = len(habits)

		for _, item := range doc.Entries {
			habitID, ok := ids[item.HabitID]
			if !ok {
				return fmt.Errorf("%w: entry references unknown habit %d", ErrBackupInvalid, item.HabitID)
			}
			date, err := time.Parse(time.DateOnly, item.Date)
			if err != nil {
				return fmt.Errorf("%w: entry date %q", ErrBackupInvalid, item.Date)
			}
			if item.Value < 0 {
				return fmt.Errorf("%w: negative entry value", ErrBackupInvalid)
			}
			recorded := item.RecordedAt
			if recorded.IsZero() {
				recorded = date
			}
			entry := db.Entry{
				HabitID:    habitID,
				EntryDate:  normalizeToDate(date),
				Value:      item.Value,
				RecordedAt: recorded,
				Source:     defaultSource(item.Source, EntrySourceImport),
				Note:       item.Note,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("import entry: %w", err)
			}
			result.Entries++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// EncodeBackup 以缩进 JSON 写出文档
func EncodeBackup(w io.Writer, doc *BackupDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// DecodeBackup 解析 JSON 文档
func DecodeBackup(r io.Reader) (*BackupDocument, error) {
	var doc BackupDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackupInvalid, err)
	}
	return &doc, nil
}

func habitFromBackup(item BackupHabit) (db.Habit, error) {
	habit := db.Habit{
		Name:              stripMarkup(item.Name),
		Emoji:             stripMarkup(item.Emoji),
		Unit:              stripMarkup(item.Unit),
		Notes:             item.Notes,
		Direction:         normalizeEnum(item.Direction, ""),
		StartValue:        item.StartValue,
		TargetValue:       item.TargetValue,
		TrackingMode:      normalizeEnum(item.TrackingMode, string(progress.TrackingDetailed)),
		TrackingFrequency: normalizeEnum(item.TrackingFrequency, string(progress.FrequencyDaily)),
		EntryMode:         normalizeEnum(item.EntryMode, string(progress.EntryReplace)),
		WeeklyAggregation: normalizeEnum(item.WeeklyAggregation, ""),
		ArchivedAt:        item.ArchivedAt,
		AnchorHabitID:     item.AnchorHabitID,
	}
	habit.CreatedAt = item.CreatedAt

	if habit.Name == "" {
		return db.Habit{}, fmt.Errorf("%w: habit %d has no name", ErrBackupInvalid, item.ID)
	}
	if habit.CreatedAt.IsZero() {
		return db.Habit{}, fmt.Errorf("%w: habit %d has no created_at", ErrBackupInvalid, item.ID)
	}

	if p := item.Progression; p != nil {
		habit.ProgressionMode = normalizeEnum(p.Mode, "")
		habit.ProgressionValue = p.Value
		habit.ProgressionPeriod = normalizeEnum(p.Period, string(progress.ProgressionWeekly))
	}

	if pause := item.PlannedPause; pause != nil {
		start, err := time.Parse(time.DateOnly, pause.StartDate)
		if err != nil {
			return db.Habit{}, fmt.Errorf("%w: habit %d pause start %q", ErrBackupInvalid, item.ID, pause.StartDate)
		}
		end, err := time.Parse(time.DateOnly, pause.EndDate)
		if err != nil {
			return db.Habit{}, fmt.Errorf("%w: habit %d pause end %q", ErrBackupInvalid, item.ID, pause.EndDate)
		}
		habit.PauseStart = &start
		habit.PauseEnd = &end
	}

	snapshot := ToProgressHabit(habit)
	snapshot.ID = item.ID
	if err := progress.Validate(snapshot); err != nil {
		return db.Habit{}, fmt.Errorf("%w: %w", ErrBackupInvalid, err)
	}

	return habit, nil
}
