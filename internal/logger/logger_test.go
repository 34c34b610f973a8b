package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&Config{
		Level:       "debug",
		Format:      TEXT,
		Output:      &buf,
		NoColor:     true,
		DefaultTags: map[string]any{"test": true},
	})

	logger.Debug("This is a debug message")
	if !strings.Contains(buf.String(), "DBG") || !strings.Contains(buf.String(), "This is a debug message") {
		t.Errorf("Expected debug message in log output, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "test=true") {
		t.Errorf("Expected default tag in log output, got: %s", buf.String())
	}

	buf.Reset()
	logger.With("customField", "value").Error("This is an error")
	if !strings.Contains(buf.String(), "ERR") ||
		!strings.Contains(buf.String(), "This is an error") ||
		!strings.Contains(buf.String(), "customField=value") {
		t.Errorf("Expected error with field in log output, got: %s", buf.String())
	}

	// JSON format
	buf.Reset()
	jsonLogger := New(&Config{
		Level:  "info",
		Format: JSON,
		Output: &buf,
	})
	jsonLogger.Info("JSON message", "sentences", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected JSON formatted log, got: %s (%v)", buf.String(), err)
	}
	if record["level"] != "INFO" || record["msg"] != "JSON message" || record["sentences"] != float64(3) {
		t.Errorf("Unexpected JSON record: %v", record)
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&Config{
		Level:   "info",
		Format:  TEXT,
		Output:  &buf,
		NoColor: true,
	})

	logger.Debug("Should not appear")
	if buf.Len() > 0 {
		t.Errorf("DEBUG message should not have been logged, got: %s", buf.String())
	}

	logger.Info("Should appear")
	if buf.Len() == 0 {
		t.Errorf("INFO message should have been logged")
	}

	buf.Reset()
	New(&Config{Level: "disabled", Output: &buf, NoColor: true}).Error("hidden")
	if buf.Len() > 0 {
		t.Errorf("disabled logger wrote: %s", buf.String())
	}

	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != JSON {
		t.Errorf("ParseFormat(JSON) should be JSON")
	}
	if ParseFormat("pretty") != TEXT {
		t.Errorf("unknown formats should fall back to text")
	}
}

func ExampleNew() {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: JSON, Output: &buf})

	logger.With("component", "textrank").Info("summarized text")

	fmt.Println("Contains component:", strings.Contains(buf.String(), `"component":"textrank"`))
	// Output: Contains component: true
}
