package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"ERROR", LevelError},
		{"gibberish", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != FormatJSON {
		t.Error("json format not parsed")
	}
	if ParseFormat("JSON") != FormatJSON {
		t.Error("format parsing not case-insensitive")
	}
	if ParseFormat("text") != FormatText || ParseFormat("") != FormatText {
		t.Error("text is not the default format")
	}
}

func TestSlogLoggerWrites(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewSlogLogger(Config{
		Level:   LevelDebug,
		Format:  FormatJSON,
		Outputs: []OutputConfig{{Type: OutputStdout, Writer: &buf}},
	})
	if err != nil {
		t.Fatalf("NewSlogLogger: %v", err)
	}
	defer log.Shutdown()

	log.Info("planning modifications", "account_id", "me@example.com")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["msg"] != "planning modifications" {
		t.Errorf("msg = %v", line["msg"])
	}
	if line["account_id"] != "me@example.com" {
		t.Errorf("account_id = %v", line["account_id"])
	}
}

func TestSlogLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewSlogLogger(Config{
		Level:   LevelWarn,
		Format:  FormatText,
		Outputs: []OutputConfig{{Type: OutputStdout, Writer: &buf}},
	})
	if err != nil {
		t.Fatalf("NewSlogLogger: %v", err)
	}
	defer log.Shutdown()

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("visible")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("suppressed levels leaked: %q", output)
	}
	if !strings.Contains(output, "visible") {
		t.Errorf("warn line missing: %q", output)
	}
}

func TestWithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewSlogLogger(Config{
		Level:   LevelInfo,
		Format:  FormatText,
		Outputs: []OutputConfig{{Type: OutputStdout, Writer: &buf}},
	})
	if err != nil {
		t.Fatalf("NewSlogLogger: %v", err)
	}
	defer log.Shutdown()

	child := log.With("action", "plan")
	child.Info("started")

	if !strings.Contains(buf.String(), "action=plan") {
		t.Errorf("child field missing: %q", buf.String())
	}
}

func TestGlobalLoggerFallsBackToNull(t *testing.T) {
	// before Init the global logger must be safe to use
	Get().Info("no global logger installed")
}
