package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "WARN")

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected INFO to be filtered at WARN, got %q", buf.String())
	}

	l.Warn("kept", "source", "test")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if rec["msg"] != "kept" || rec["source"] != "test" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestGormLogLevel(t *testing.T) {
	if GormLogLevel("DEBUG") != gormlogger.Info {
		t.Error("DEBUG should trace SQL")
	}
	if GormLogLevel("INFO") != gormlogger.Warn {
		t.Error("INFO should only log slow queries and warnings")
	}
	if GormLogLevel("ERROR") != gormlogger.Error {
		t.Error("ERROR should only log errors")
	}
}
