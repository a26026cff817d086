package db

import (
	"time"

	"gorm.io/gorm"
)

// Habit 定义了习惯模型
// Direction 与 StartValue 创建后不可修改，由 service 层保证
// Progression* 三个字段为空表示不随时间递进，仅 maintain 方向允许
// TargetValue 为最终目标，nil 表示不设上限/下限
// ArchivedAt 非空即视为归档（软删除），打卡记录保留
// PauseStart/PauseEnd 为计划暂停区间，首尾均包含
// AnchorHabitID 仅记录习惯叠加关系，不做级联
type Habit struct {
	gorm.Model
	Name              string `gorm:"not null"`
	Emoji             string
	Unit              string
	Notes             string `gorm:"type:text"`
	Direction         string `gorm:"size:16;not null"`
	StartValue        float64
	ProgressionMode   string `gorm:"size:16"`
	ProgressionValue  float64
	ProgressionPeriod string `gorm:"size:16"`
	TargetValue       *float64
	TrackingMode      string `gorm:"size:16;not null"`
	TrackingFrequency string `gorm:"size:16;not null"`
	EntryMode         string `gorm:"size:16;not null"`
	WeeklyAggregation string `gorm:"size:16"`
	PauseStart        *time.Time
	PauseEnd          *time.Time
	AnchorHabitID     *uint
	ArchivedAt        *time.Time `gorm:"index"`
}

// HasProgression 判断是否配置了递进规则
func (h Habit) HasProgression() bool {
	return h.ProgressionMode != ""
}

// Entry 记录一次打卡数值
// replace 模式下同一天以 RecordedAt 最新的一条为准，cumulative 模式下同一天累加
// 记录只追加不删除
type Entry struct {
	gorm.Model
	HabitID    uint      `gorm:"index:idx_entries_habit_date"`
	Habit      Habit     `gorm:"constraint:OnDelete:CASCADE"`
	EntryDate  time.Time `gorm:"index:idx_entries_habit_date"`
	Value      float64
	RecordedAt time.Time
	Source     string `gorm:"size:16"`
	Note       string
}

// TableName 固定表名，保证索引命名稳定
func (Entry) TableName() string {
	return "entries"
}
