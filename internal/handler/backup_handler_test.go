package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBackupExportImport(t *testing.T) {
	source := setupTestAPI(t, "")
	sr := newTestEngine(source)

	id := createHabitAt(t, source, sr, testToday, map[string]any{"name": "阅读", "direction": "maintain", "start_value": 20, "unit": "pages"})
	if w := doJSON(t, sr, http.MethodPost, fmt.Sprintf("/api/habits/%d/entries", id), map[string]any{"value": 25}); w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	w := doJSON(t, sr, http.MethodGet, "/api/backup", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if disposition := w.Header().Get("Content-Disposition"); !strings.Contains(disposition, "attachment") {
		t.Fatalf("expected attachment disposition, got %q", disposition)
	}
	exported := w.Body.Bytes()

	target := setupTestAPI(t, "")
	tr := newTestEngine(target)

	req := httptest.NewRequest(http.MethodPost, "/api/backup", bytes.NewReader(exported))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	tr.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	imported := decodeBody(t, rec)["imported"].(map[string]any)
	if imported["habits"] != float64(1) || imported["entries"] != float64(1) {
		t.Fatalf("unexpected import result: %v", imported)
	}

	rec = httptest.NewRecorder()
	tr.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/backup", strings.NewReader(`{"version": 7}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unsupported version, got %d", rec.Code)
	}
}
