package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arengifoc/logsort/internal/aggregator"
	"github.com/arengifoc/logsort/internal/hub"
	"github.com/arengifoc/logsort/internal/pipeline"
	"github.com/arengifoc/logsort/internal/report"
)

func testServer(t *testing.T, reportPath string) *Server {
	t.Helper()
	h := hub.New()
	agg := aggregator.New(h.Subscribe(), h.Dropped)
	return New(h, agg, reportPath, "0")
}

func TestHealthz(t *testing.T) {
	s := testServer(t, "")

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s := testServer(t, "")

	// Before any run: idle.
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	var idle map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &idle); err != nil {
		t.Fatal(err)
	}
	if idle["state"] != "idle" {
		t.Errorf("expected idle state, got %v", idle["state"])
	}

	s.SetLastRun(&pipeline.Result{State: pipeline.StateDone, Moved: 2, Audited: 2})

	rec = httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	var got pipeline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.State != pipeline.StateDone || got.Moved != 2 {
		t.Errorf("unexpected summary: %+v", got)
	}
}

func TestReportEndpoint(t *testing.T) {
	reportPath := filepath.Join(t.TempDir(), "reporte.txt")
	if err := report.Write([]report.Line{{Name: "a.log", Count: 2}}, reportPath); err != nil {
		t.Fatal(err)
	}

	s := testServer(t, reportPath)

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var lines []report.Line
	if err := json.Unmarshal(rec.Body.Bytes(), &lines); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0].Name != "a.log" || lines[0].Count != 2 {
		t.Errorf("unexpected report lines: %v", lines)
	}
}

func TestReportEndpointMissingFile(t *testing.T) {
	s := testServer(t, filepath.Join(t.TempDir(), "missing.txt"))

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestDashboardServed(t *testing.T) {
	s := testServer(t, "")

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "logsort") {
		t.Error("expected dashboard HTML in response")
	}
}
