package router

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arengifoc/logsort/internal/classify"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRouteMovesFile(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	logPath := filepath.Join(src, "auth_2024-01-01.log")
	writeFile(t, logPath, "hello\n")

	r := New(classify.Default(), dest)
	svc, outcome, err := r.Route(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if svc != "auth" {
		t.Errorf("expected service 'auth', got %q", svc)
	}
	if outcome != Moved {
		t.Errorf("expected Moved, got %v", outcome)
	}

	moved := filepath.Join(dest, "auth", "auth_2024-01-01.log")
	data, err := os.ReadFile(moved)
	if err != nil {
		t.Fatalf("file not at destination: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("destination content mismatch: %q", data)
	}

	if _, err := os.Stat(logPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("source file should be gone after move")
	}
}

func TestRoutePreservesModTime(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	logPath := filepath.Join(src, "api_2024-06-15.log")
	writeFile(t, logPath, "x")

	old := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	if err := os.Chtimes(logPath, old, old); err != nil {
		t.Fatal(err)
	}

	r := New(classify.Default(), dest)
	if _, _, err := r.Route(logPath); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(dest, "api", "api_2024-06-15.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("mtime not preserved: got %v, want %v", info.ModTime(), old)
	}
}

func TestRouteCollisionSkips(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	logPath := filepath.Join(src, "auth_2024-01-01.log")
	writeFile(t, logPath, "new content\n")

	// Pre-occupy the destination.
	if err := os.MkdirAll(filepath.Join(dest, "auth"), 0o755); err != nil {
		t.Fatal(err)
	}
	occupied := filepath.Join(dest, "auth", "auth_2024-01-01.log")
	writeFile(t, occupied, "original\n")

	r := New(classify.Default(), dest)
	_, outcome, err := r.Route(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != Skipped {
		t.Errorf("expected Skipped, got %v", outcome)
	}

	// Destination untouched, source still in place.
	data, _ := os.ReadFile(occupied)
	if string(data) != "original\n" {
		t.Errorf("destination was overwritten: %q", data)
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("source should remain after skip: %v", err)
	}
}

func TestRouteUnclassifiableName(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	logPath := filepath.Join(src, "notes.log")
	writeFile(t, logPath, "x")

	r := New(classify.Default(), dest)
	_, _, err := r.Route(logPath)
	if !errors.Is(err, classify.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}

	// File stays where it was.
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("source should remain after classification failure: %v", err)
	}
}

func TestRouteSourceVanished(t *testing.T) {
	dest := t.TempDir()

	r := New(classify.Default(), dest)
	_, _, err := r.Route(filepath.Join(t.TempDir(), "gone_2024-01-01.log"))
	if err == nil {
		t.Error("expected error for missing source file")
	}
}

func TestRouteIdempotentSecondRun(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	logPath := filepath.Join(src, "db_2024-03-03.log")
	writeFile(t, logPath, "run one\n")

	r := New(classify.Default(), dest)
	if _, outcome, err := r.Route(logPath); err != nil || outcome != Moved {
		t.Fatalf("first run: outcome=%v err=%v", outcome, err)
	}

	// Second run with a fresh file of the same name must skip.
	writeFile(t, logPath, "run two\n")
	_, outcome, err := r.Route(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != Skipped {
		t.Errorf("expected Skipped on second run, got %v", outcome)
	}

	data, _ := os.ReadFile(filepath.Join(dest, "db", "db_2024-03-03.log"))
	if string(data) != "run one\n" {
		t.Errorf("first run's content was overwritten: %q", data)
	}
}
