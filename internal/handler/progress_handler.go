package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gentlehabits/internal/locale"
	"github.com/gentlehabits/internal/progress"
	"github.com/gentlehabits/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultRangeView = "weekly"

// GetHabitProgress 返回习惯在 ?date= 所在周期的评估、下一周期目标与鼓励文案
func (a *API) GetHabitProgress(c *gin.Context) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	date, ok := a.dateQuery(c, "date")
	if !ok {
		return
	}

	result, err := a.progress.Evaluate(habitID, date)
	if err != nil {
		a.logger.Warn("evaluate habit", zap.Uint("habit_id", habitID), zap.Error(err))
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, habitProgressPayload(a.language(c), *result))
}

// GetToday 评估全部未归档习惯，配置损坏的习惯单独列出问题
func (a *API) GetToday(c *gin.Context) {
	date, ok := a.dateQuery(c, "date")
	if !ok {
		return
	}

	results, err := a.progress.Today(date)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	language := a.language(c)
	items := make([]gin.H, 0, len(results))
	for _, result := range results {
		if result.Problem != nil {
			a.logger.Warn("habit configuration problem", zap.Uint("habit_id", result.Habit.ID), zap.Error(result.Problem))
		}
		items = append(items, habitProgressPayload(language, result))
	}

	c.JSON(http.StatusOK, gin.H{"date": date.Format(dateFormat), "habits": items})
}

// GetNeglected 返回需要“欢迎回来”提示的习惯
func (a *API) GetNeglected(c *gin.Context) {
	date, ok := a.dateQuery(c, "date")
	if !ok {
		return
	}

	threshold := 0
	if raw := strings.TrimSpace(c.Query("threshold")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, http.StatusBadRequest, "无效的阈值")
			return
		}
		threshold = parsed
	} else {
		settings, err := a.settings.GetSettings()
		if err != nil {
			handleServiceError(c, err)
			return
		}
		threshold = settings.NeglectThresholdDays
	}

	neglected, err := a.progress.Neglected(date, threshold)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	language := a.language(c)
	items := make([]gin.H, 0, len(neglected))
	for _, item := range neglected {
		items = append(items, gin.H{
			"habit_id":              item.Habit.ID,
			"name":                  item.Habit.Name,
			"emoji":                 item.Habit.Emoji,
			"days_since_last_entry": item.DaysSinceLastEntry,
			"message":               locale.WelcomeBack(language, item.Habit.Name, item.DaysSinceLastEntry),
		})
	}

	c.JSON(http.StatusOK, gin.H{"date": date.Format(dateFormat), "threshold_days": threshold, "habits": items})
}

// GetHabitStats 返回 view（weekly/monthly）区间内的周期统计
func (a *API) GetHabitStats(c *gin.Context) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	start, end, ok := a.queryRange(c)
	if !ok {
		return
	}

	summary, err := a.progress.Stats(habitID, start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	periods := make([]gin.H, 0, len(summary.Periods))
	for _, eval := range summary.Periods {
		periods = append(periods, evaluationPayload(eval))
	}

	c.JSON(http.StatusOK, gin.H{
		"range": gin.H{"start": summary.RangeStart.Format(dateFormat), "end": summary.RangeEnd.Format(dateFormat)},
		"stats": gin.H{
			"empty":              summary.Empty,
			"partial":            summary.Partial,
			"completed":          summary.Completed,
			"exceeded":           summary.Exceeded,
			"paused_periods":     summary.PausedPeriods,
			"active_periods":     summary.ActivePeriods,
			"successful_periods": summary.SuccessfulPeriods,
			"completion_rate":    summary.CompletionRate,
			"current_streak":     summary.CurrentStreak,
			"longest_streak":     summary.LongestStreak,
		},
		"periods": periods,
	})
}

func habitProgressPayload(language string, result service.HabitProgress) gin.H {
	payload := gin.H{"habit": habitToPayload(result.Habit)}
	if result.Problem != nil {
		payload["problem"] = problemPayload(result.Problem)
		return payload
	}

	payload["evaluation"] = evaluationPayload(result.Evaluation)
	payload["next"] = gin.H{
		"current_target":    result.Step.CurrentTarget,
		"next_target":       result.Step.NextTarget,
		"goal_just_reached": result.Step.GoalJustReached,
	}
	payload["feedback"] = locale.Feedback(language, result.Evaluation)
	if result.Step.GoalJustReached {
		payload["goal_message"] = locale.GoalReached(language, result.Habit.Name)
	}
	return payload
}

func evaluationPayload(eval progress.Evaluation) gin.H {
	return gin.H{
		"target":       eval.Target,
		"actual":       eval.Actual,
		"status":       eval.Status,
		"display":      eval.Display(),
		"successful":   eval.Successful(),
		"paused":       eval.Paused,
		"entry_count":  eval.EntryCount,
		"period_start": eval.PeriodStart.Format(dateFormat),
		"period_end":   eval.PeriodEnd.Format(dateFormat),
	}
}

func problemPayload(err error) gin.H {
	var cfgErr *progress.ConfigurationError
	if errors.As(err, &cfgErr) {
		return gin.H{"field": cfgErr.Field, "reason": cfgErr.Reason}
	}
	return gin.H{"reason": err.Error()}
}

// resolveRange 以 anchor 所在的自然周（周一至周日）或自然月为区间
func resolveRange(anchor time.Time, view string) (time.Time, time.Time) {
	start := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)

	switch strings.ToLower(strings.TrimSpace(view)) {
	case "monthly":
		start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	default:
		start = progress.WeekStart(start)
		return start, start.AddDate(0, 0, 6)
	}
}
