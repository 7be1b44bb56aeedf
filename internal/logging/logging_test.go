package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := LevelFromString(c.in); got != c.want {
			t.Errorf("%q gave %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{LogLevel: "warn"})
	logger.Info("dropped")
	logger.Warn("evaluated", slog.String("expression", "1 + 2"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("wanted one line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line %q is not JSON: %v", lines[0], err)
	}
	if rec["msg"] != "evaluated" || rec["expression"] != "1 + 2" || rec["level"] != "WARN" {
		t.Errorf("wrong record %v", rec)
	}
	if _, ok := rec[slog.SourceKey]; ok {
		t.Errorf("record has source without include_src: %v", rec)
	}
}

func TestNewSource(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{IncludeSrc: true})
	logger.Info("here")
	var rec struct {
		Source struct {
			File     string `json:"file"`
			Function string `json:"function"`
		} `json:"source"`
	}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Source.File != "logging_test.go" {
		t.Errorf("source file not trimmed: %q", rec.Source.File)
	}
	if strings.HasPrefix(rec.Source.Function, modulePath) {
		t.Errorf("source function not trimmed: %q", rec.Source.Function)
	}
}

func TestNewFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "mathexpr.log")
	var buf bytes.Buffer
	logger := New(&buf, Config{LogToFile: true, Filename: name, MaxSize: 1})
	logger.Info("to both")
	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("couldn't read log file: %v", err)
	}
	if !bytes.Equal(b, buf.Bytes()) {
		t.Errorf("file has %q, stdout has %q", b, buf.Bytes())
	}
}
