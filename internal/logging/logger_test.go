package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", "k", "v")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info line to be filtered, got %q", out)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", out, err)
	}
	if rec["msg"] != "shown" || rec["k"] != "v" {
		t.Fatalf("unexpected record: %#v", rec)
	}
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug").With("component", "client")
	l.Debug("request")
	if !strings.Contains(buf.String(), `"component":"client"`) {
		t.Fatalf("expected component attr, got %q", buf.String())
	}
}

func TestNew_CreatesFileAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "issuetrack.log")
	l, err := New(path, "info")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("hello")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "hello") {
		t.Fatalf("expected log line in file, got %q", string(b))
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Info("ignored")
	if l.With("a", 1) != nil {
		t.Fatalf("expected nil child from nil logger")
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close on nil: %v", err)
	}
}
