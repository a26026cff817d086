package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCreateHabitAndFetch(t *testing.T) {
	api := setupTestAPI(t, "")
	r := newTestEngine(api)

	id := createHabitAt(t, api, r, testToday, map[string]any{
		"name":        "晨跑",
		"unit":        "min",
		"notes":       "**慢慢来**<script>alert(1)</script>",
		"direction":   "increase",
		"start_value": 10,
		"progression": map[string]any{"mode": "absolute", "value": 2},
		"target_value": 30,
	})

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/habits/%d", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	habit := decodeBody(t, w)["habit"].(map[string]any)

	if habit["direction"] != "increase" {
		t.Fatalf("unexpected direction: %v", habit["direction"])
	}
	progression := habit["progression"].(map[string]any)
	if progression["period"] != "weekly" {
		t.Fatalf("expected weekly progression, got %v", progression["period"])
	}
	notes := habit["notes_html"].(string)
	if !strings.Contains(notes, "<strong>慢慢来</strong>") {
		t.Fatalf("expected rendered markdown, got %q", notes)
	}
	if strings.Contains(notes, "<script>") {
		t.Fatalf("expected script to be sanitized, got %q", notes)
	}
}

func TestCreateHabitConfigurationErrorIs422(t *testing.T) {
	api := setupTestAPI(t, "")
	r := newTestEngine(api)

	w := doJSON(t, r, http.MethodPost, "/api/habits", map[string]any{
		"name":        "少糖",
		"direction":   "decrease",
		"start_value": 4,
		"progression": map[string]any{"mode": "percentage", "value": 120},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["field"] != "progression.value" {
		t.Fatalf("expected progression.value field, got %v", body["field"])
	}
}

func TestCreateHabitValidationMessagesFollowLanguage(t *testing.T) {
	api := setupTestAPI(t, "")
	r := newTestEngine(api)

	w := doJSON(t, r, http.MethodPost, "/api/habits?lang=en", map[string]any{"name": "", "direction": "maintain", "start_value": 1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != "Invalid habit configuration" {
		t.Fatalf("expected english message, got %v", got)
	}

	w = doJSON(t, r, http.MethodPost, "/api/habits", map[string]any{"name": "阅读", "direction": "maintain", "start_value": 1}, "Accept-Language", "zh-CN")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
}

func TestUpdateHabitRejectsImmutableFields(t *testing.T) {
	api := setupTestAPI(t, "")
	r := newTestEngine(api)

	id := createHabitAt(t, api, r, testToday, map[string]any{"name": "冥想", "direction": "maintain", "start_value": 10})

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/habits/%d", id), map[string]any{"name": "冥想", "start_value": 20})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/habits/%d", id), map[string]any{"name": "静坐", "unit": "min"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["habit"].(map[string]any)["name"]; got != "静坐" {
		t.Fatalf("unexpected name: %v", got)
	}
}

func TestArchiveAndRestoreHabit(t *testing.T) {
	api := setupTestAPI(t, "")
	r := newTestEngine(api)

	id := createHabitAt(t, api, r, testToday, map[string]any{"name": "拉伸", "direction": "maintain", "start_value": 5})

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/habits/%d/archive", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got := decodeBody(t, w)["habit"].(map[string]any)["status"]; got != "archived" {
		t.Fatalf("expected archived status, got %v", got)
	}

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/habits/%d/entries", id), map[string]any{"value": 5})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for archived habit, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/habits?status=active", nil)
	if habits := decodeBody(t, w)["habits"].([]any); len(habits) != 0 {
		t.Fatalf("expected no active habits, got %d", len(habits))
	}

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/habits/%d/restore", id), nil)
	if got := decodeBody(t, w)["habit"].(map[string]any)["status"]; got != "active" {
		t.Fatalf("expected active status, got %v", got)
	}
}

func TestGetHabitInvalidAndMissingID(t *testing.T) {
	api := setupTestAPI(t, "")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/habits/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	api.GetHabit(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/habits/42", nil)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	api.GetHabit(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}
