package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

var (
	testToday = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	dbCounter atomic.Int64
)

func setupTestAPI(t *testing.T, passcode string) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))
	gdb, err := db.Open(sqlite.Open(dsn), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	api, err := NewAPI(gdb, Options{Passcode: passcode, Defaults: service.Settings{Language: "zh"}})
	if err != nil {
		t.Fatalf("NewAPI returned error: %v", err)
	}
	api.SetClock(func() time.Time { return testToday })
	return api
}

// newTestEngine 注册与线上一致的中间件顺序，便于端到端验证
func newTestEngine(api *API) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(api.LocaleMiddleware())

	r.POST("/login", api.Login)
	r.POST("/logout", api.Logout)

	g := r.Group("/api")
	g.Use(api.AuthRequired())
	g.GET("/habits", api.ListHabits)
	g.POST("/habits", api.CreateHabit)
	g.GET("/habits/:id", api.GetHabit)
	g.PUT("/habits/:id", api.UpdateHabit)
	g.POST("/habits/:id/archive", api.ArchiveHabit)
	g.POST("/habits/:id/restore", api.RestoreHabit)
	g.GET("/habits/:id/entries", api.ListEntries)
	g.POST("/habits/:id/entries", api.RecordEntry)
	g.POST("/habits/:id/entries/increment", api.IncrementEntry)
	g.GET("/habits/:id/progress", api.GetHabitProgress)
	g.GET("/habits/:id/stats", api.GetHabitStats)
	g.GET("/today", api.GetToday)
	g.GET("/neglected", api.GetNeglected)
	g.GET("/settings", api.GetSettings)
	g.PUT("/settings", api.UpdateSettings)
	g.GET("/backup", api.ExportBackup)
	g.POST("/backup", api.ImportBackup)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return payload
}

// createHabitAt 以指定创建时间新建习惯，返回 ID
func createHabitAt(t *testing.T, api *API, r http.Handler, created time.Time, body map[string]any) uint {
	t.Helper()
	api.SetClock(func() time.Time { return created })
	defer api.SetClock(func() time.Time { return testToday })

	w := doJSON(t, r, http.MethodPost, "/api/habits", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	habit := decodeBody(t, w)["habit"].(map[string]any)
	return uint(habit["id"].(float64))
}
