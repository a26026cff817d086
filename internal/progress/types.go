package progress

import (
	"fmt"
	"strconv"
	"time"
)

// Direction 决定成功的方向：增加、减少或保持。
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
	DirectionMaintain Direction = "maintain"
)

// ProgressionMode 描述每个周期目标的变化方式。
type ProgressionMode string

const (
	ProgressionAbsolute   ProgressionMode = "absolute"
	ProgressionPercentage ProgressionMode = "percentage"
)

// ProgressionPeriod 目前只有 weekly。
type ProgressionPeriod string

const ProgressionWeekly ProgressionPeriod = "weekly"

type TrackingMode string

const (
	TrackingSimple   TrackingMode = "simple"
	TrackingDetailed TrackingMode = "detailed"
	TrackingCounter  TrackingMode = "counter"
)

type TrackingFrequency string

const (
	FrequencyDaily  TrackingFrequency = "daily"
	FrequencyWeekly TrackingFrequency = "weekly"
)

type EntryMode string

const (
	EntryReplace    EntryMode = "replace"
	EntryCumulative EntryMode = "cumulative"
)

// WeeklyAggregation 只在 FrequencyWeekly 时生效。
type WeeklyAggregation string

const (
	AggregateCountDays WeeklyAggregation = "count-days"
	AggregateSumUnits  WeeklyAggregation = "sum-units"
)

// Status 是一条记录相对目标的完成状态，没有“失败”这一档。
type Status string

const (
	StatusEmpty     Status = "empty"
	StatusPartial   Status = "partial"
	StatusCompleted Status = "completed"
	StatusExceeded  Status = "exceeded"
)

// Progression 定义目标随周期的变化规则。
type Progression struct {
	Mode   ProgressionMode
	Value  float64
	Period ProgressionPeriod
}

// Pause 表示计划中的暂停区间，首尾日期都包含在内。
type Pause struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether day falls inside the pause window.
func (p Pause) Contains(day time.Time) bool {
	d := civilDay(day)
	return !d.Before(civilDay(p.Start)) && !d.After(civilDay(p.End))
}

// Habit is the immutable snapshot of a habit configuration the evaluator works on.
type Habit struct {
	ID                uint
	Name              string
	Emoji             string
	Unit              string
	Direction         Direction
	StartValue        float64
	Progression       *Progression
	TargetValue       *float64
	TrackingMode      TrackingMode
	TrackingFrequency TrackingFrequency
	EntryMode         EntryMode
	WeeklyAggregation WeeklyAggregation
	CreatedAt         time.Time
	ArchivedAt        *time.Time
	PlannedPause      *Pause
	AnchorHabitID     *uint
}

// Archived reports whether the habit was archived on or before day.
func (h Habit) Archived(day time.Time) bool {
	return h.ArchivedAt != nil && !civilDay(*h.ArchivedAt).After(civilDay(day))
}

// Paused reports whether day is inside the habit's planned pause.
func (h Habit) Paused(day time.Time) bool {
	return h.PlannedPause != nil && h.PlannedPause.Contains(day)
}

// Entry 是某个习惯在某一天的一次记录。
type Entry struct {
	HabitID    uint
	Date       time.Time
	Value      float64
	RecordedAt time.Time
}

// Evaluation is the derived result of classifying a period; it is never persisted.
type Evaluation struct {
	HabitID     uint
	Direction   Direction
	Target      float64
	Actual      float64
	Status      Status
	PeriodStart time.Time
	PeriodEnd   time.Time
	Paused      bool
	EntryCount  int
}

// Successful reports whether the period met its target.
func (e Evaluation) Successful() bool {
	return e.Status == StatusCompleted || e.Status == StatusExceeded
}

// Display renders the actual/target pair, e.g. "5 / 14".
func (e Evaluation) Display() string {
	return fmt.Sprintf("%s / %s", FormatValue(e.Actual), FormatValue(e.Target))
}

// Step 描述下一周期的目标预览。
type Step struct {
	CurrentTarget   float64
	NextTarget      float64
	GoalJustReached bool
}

// Neglected 描述一个连续多天未记录的习惯。
type Neglected struct {
	Habit              Habit
	DaysSinceLastEntry int
}

// FormatValue prints a dose without trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
