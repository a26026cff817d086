package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/handler"
	"github.com/gentlehabits/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

const e2eBaseURL = "http://example.test"

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(t *testing.T, handler http.Handler) *localClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, e2eBaseURL+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	c.jar.SetCookies(req.URL, resp.Cookies())

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (c *localClient) doJSON(t *testing.T, method, path string, body any, wantStatus int) map[string]any {
	t.Helper()
	status, data := c.do(t, method, path, body)
	require.Equalf(t, wantStatus, status, "%s %s: %s", method, path, data)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestE2E_HabitLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(sqlite.Open("file:e2e_lifecycle?mode=memory&cache=shared"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	api, err := handler.NewAPI(gdb, handler.Options{Passcode: "e2e-secret"})
	require.NoError(t, err)
	api.SetClock(func() time.Time { return time.Date(2026, 10, 5, 8, 0, 0, 0, time.UTC) })

	client := newLocalClient(t, SetupRouter(api, "test-session-secret"))

	status, _ := client.do(t, http.MethodGet, "/api/habits", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = client.do(t, http.MethodPost, "/login", map[string]string{"passcode": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)

	client.doJSON(t, http.MethodPost, "/login", map[string]string{"passcode": "e2e-secret"}, http.StatusOK)

	created := client.doJSON(t, http.MethodPost, "/api/habits", map[string]any{
		"name":         "晨跑",
		"unit":         "min",
		"direction":    "increase",
		"start_value":  10,
		"progression":  map[string]any{"mode": "absolute", "value": 2},
		"target_value": 20,
	}, http.StatusCreated)
	habit := created["habit"].(map[string]any)
	habitPath := "/api/habits/" + jsonID(habit["id"])

	// 两周之后
	api.SetClock(func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) })

	client.doJSON(t, http.MethodPost, habitPath+"/entries", map[string]any{"date": "2026-10-19", "value": 14}, http.StatusCreated)
	client.doJSON(t, http.MethodPost, habitPath+"/entries", map[string]any{"date": "2026-10-20", "value": 14}, http.StatusBadRequest)

	progressBody := client.doJSON(t, http.MethodGet, habitPath+"/progress?date=2026-10-19", nil, http.StatusOK)
	evaluation := progressBody["evaluation"].(map[string]any)
	assert.Equal(t, "completed", evaluation["status"])
	assert.Equal(t, 14.0, evaluation["target"])
	assert.Equal(t, 16.0, progressBody["next"].(map[string]any)["next_target"])
	assert.NotEmpty(t, progressBody["feedback"])

	today := client.doJSON(t, http.MethodGet, "/api/today", nil, http.StatusOK)
	assert.Len(t, today["habits"], 1)

	_, exported := client.do(t, http.MethodGet, "/api/backup", nil)
	doc, err := service.DecodeBackup(bytes.NewReader(exported))
	require.NoError(t, err)
	require.Len(t, doc.Habits, 1)
	require.Len(t, doc.Entries, 1)

	imported := client.doJSON(t, http.MethodPost, "/api/backup", doc, http.StatusOK)
	assert.Equal(t, map[string]any{"habits": 1.0, "entries": 1.0}, imported["imported"])

	listed := client.doJSON(t, http.MethodGet, "/api/habits", nil, http.StatusOK)
	assert.Len(t, listed["habits"], 2)

	client.doJSON(t, http.MethodPost, "/logout", nil, http.StatusOK)
	status, _ = client.do(t, http.MethodGet, "/api/habits", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func jsonID(v any) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}
