package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type progressionPayload struct {
	Mode  string  `json:"mode"`
	Value float64 `json:"value"`
}

type habitPayload struct {
	Name              string              `json:"name"`
	Emoji             string              `json:"emoji"`
	Unit              string              `json:"unit"`
	Notes             string              `json:"notes"`
	Direction         string              `json:"direction"`
	StartValue        *float64            `json:"start_value"`
	Progression       *progressionPayload `json:"progression"`
	TargetValue       *float64            `json:"target_value"`
	TrackingMode      string              `json:"tracking_mode"`
	TrackingFrequency string              `json:"tracking_frequency"`
	EntryMode         string              `json:"entry_mode"`
	WeeklyAggregation string              `json:"weekly_aggregation"`
	PauseStart        string              `json:"pause_start"`
	PauseEnd          string              `json:"pause_end"`
	AnchorHabitID     *uint               `json:"anchor_habit_id"`
}

// ListHabits 返回习惯列表 JSON
func (a *API) ListHabits(c *gin.Context) {
	filter := service.HabitFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	habits, err := a.habits.List(filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, habitToPayload(habit))
	}

	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// GetHabit 返回单个习惯详情
func (a *API) GetHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	habit, err := a.habits.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// CreateHabit 创建习惯
func (a *API) CreateHabit(c *gin.Context) {
	input, ok := parseHabitInput(c)
	if !ok {
		return
	}

	habit, err := a.habits.Create(input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	a.logger.Info("habit created", zap.Uint("habit_id", habit.ID), zap.String("direction", habit.Direction))
	c.JSON(http.StatusCreated, gin.H{"habit": habitToPayload(*habit)})
}

// UpdateHabit 更新习惯
func (a *API) UpdateHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	input, ok := parseHabitInput(c)
	if !ok {
		return
	}

	habit, err := a.habits.Update(id, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// ArchiveHabit 归档习惯，保留全部打卡记录
func (a *API) ArchiveHabit(c *gin.Context) {
	a.changeArchiveState(c, a.habits.Archive)
}

// RestoreHabit 取消归档
func (a *API) RestoreHabit(c *gin.Context) {
	a.changeArchiveState(c, a.habits.Restore)
}

func (a *API) changeArchiveState(c *gin.Context, apply func(uint) (*db.Habit, error)) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	habit, err := apply(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

func parseHabitInput(c *gin.Context) (service.HabitInput, bool) {
	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return service.HabitInput{}, false
	}

	pauseStart, ok := parseOptionalDate(payload.PauseStart)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return service.HabitInput{}, false
	}
	pauseEnd, ok := parseOptionalDate(payload.PauseEnd)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return service.HabitInput{}, false
	}

	input := service.HabitInput{
		Name:              payload.Name,
		Emoji:             payload.Emoji,
		Unit:              payload.Unit,
		Notes:             payload.Notes,
		Direction:         payload.Direction,
		StartValue:        payload.StartValue,
		TargetValue:       payload.TargetValue,
		TrackingMode:      payload.TrackingMode,
		TrackingFrequency: payload.TrackingFrequency,
		EntryMode:         payload.EntryMode,
		WeeklyAggregation: payload.WeeklyAggregation,
		PauseStart:        pauseStart,
		PauseEnd:          pauseEnd,
		AnchorHabitID:     payload.AnchorHabitID,
	}
	if payload.Progression != nil {
		input.ProgressionMode = payload.Progression.Mode
		input.ProgressionValue = payload.Progression.Value
	}

	return input, true
}

func habitToPayload(habit db.Habit) gin.H {
	item := gin.H{
		"id":                 habit.ID,
		"name":               habit.Name,
		"emoji":              habit.Emoji,
		"unit":               habit.Unit,
		"notes":              habit.Notes,
		"notes_html":         renderNotes(habit.Notes),
		"direction":          habit.Direction,
		"start_value":        habit.StartValue,
		"progression":        nil,
		"target_value":       habit.TargetValue,
		"tracking_mode":      habit.TrackingMode,
		"tracking_frequency": habit.TrackingFrequency,
		"entry_mode":         habit.EntryMode,
		"anchor_habit_id":    habit.AnchorHabitID,
		"created_at":         habit.CreatedAt.Format(time.RFC3339),
		"status":             service.HabitStatusActive,
	}

	if habit.WeeklyAggregation != "" {
		item["weekly_aggregation"] = habit.WeeklyAggregation
	}
	if habit.HasProgression() {
		item["progression"] = gin.H{
			"mode":   habit.ProgressionMode,
			"value":  habit.ProgressionValue,
			"period": habit.ProgressionPeriod,
		}
	}
	if habit.PauseStart != nil && habit.PauseEnd != nil {
		item["planned_pause"] = gin.H{
			"start_date": habit.PauseStart.Format(dateFormat),
			"end_date":   habit.PauseEnd.Format(dateFormat),
		}
	}
	if habit.ArchivedAt != nil {
		item["status"] = service.HabitStatusArchived
		item["archived_at"] = habit.ArchivedAt.Format(time.RFC3339)
	}

	return item
}

// renderNotes 渲染 Markdown 备注并做 XSS 过滤，渲染失败时返回空串
func renderNotes(content string) string {
	if content == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return string(sanitizer.SanitizeBytes(buf.Bytes()))
}
