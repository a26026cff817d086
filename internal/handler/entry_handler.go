package handler

import (
	"net/http"
	"time"

	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/service"
	"github.com/gin-gonic/gin"
)

type entryPayload struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
	Note  string   `json:"note"`
}

type incrementPayload struct {
	Date  string  `json:"date"`
	Delta float64 `json:"delta"`
}

// ListEntries 返回区间内的打卡记录，支持 start/end 或 view/start
func (a *API) ListEntries(c *gin.Context) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	start, end, ok := a.queryRange(c)
	if !ok {
		return
	}

	if _, err := a.habits.Get(habitID); err != nil {
		handleServiceError(c, err)
		return
	}

	entries, err := a.entries.ListBetween(service.EntryFilter{HabitID: habitID, Start: start, End: end})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": serializeEntries(entries),
		"range":   gin.H{"start": start.Format(dateFormat), "end": end.Format(dateFormat)},
	})
}

// RecordEntry 打卡；simple 模式可省略 value
func (a *API) RecordEntry(c *gin.Context) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var payload entryPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, ok := a.payloadDate(c, payload.Date)
	if !ok {
		return
	}

	entry, err := a.entries.Record(service.EntryInput{
		HabitID: habitID,
		Date:    date,
		Value:   payload.Value,
		Source:  service.EntrySourceManual,
		Note:    payload.Note,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": serializeEntry(*entry)})
}

// IncrementEntry 计数器模式的一次点击，delta 缺省为 1
func (a *API) IncrementEntry(c *gin.Context) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var payload incrementPayload
	if c.Request.ContentLength > 0 && !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, ok := a.payloadDate(c, payload.Date)
	if !ok {
		return
	}

	entry, err := a.entries.Increment(habitID, date, payload.Delta)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": serializeEntry(*entry)})
}

func (a *API) payloadDate(c *gin.Context, raw string) (time.Time, bool) {
	parsed, ok := parseOptionalDate(raw)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return time.Time{}, false
	}
	if parsed == nil {
		return a.today(), true
	}
	return *parsed, true
}

// queryRange 解析 ?start=&end=；只给 start 或都不给时按 view（weekly/monthly）推算
func (a *API) queryRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, ok := parseOptionalDate(c.Query("start"))
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return time.Time{}, time.Time{}, false
	}
	end, ok := parseOptionalDate(c.Query("end"))
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return time.Time{}, time.Time{}, false
	}

	if start != nil && end != nil {
		if end.Before(*start) {
			respondError(c, http.StatusBadRequest, "无效的日期")
			return time.Time{}, time.Time{}, false
		}
		return *start, *end, true
	}

	anchor := a.today()
	if start != nil {
		anchor = *start
	}
	rangeStart, rangeEnd := resolveRange(anchor, c.DefaultQuery("view", defaultRangeView))
	return rangeStart, rangeEnd, true
}

func serializeEntries(entries []db.Entry) []gin.H {
	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		items = append(items, serializeEntry(entry))
	}
	return items
}

func serializeEntry(entry db.Entry) gin.H {
	return gin.H{
		"id":          entry.ID,
		"habit_id":    entry.HabitID,
		"date":        entry.EntryDate.Format(dateFormat),
		"value":       entry.Value,
		"recorded_at": entry.RecordedAt.Format(time.RFC3339),
		"source":      entry.Source,
		"note":        entry.Note,
	}
}
