package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "info")

	log.Named("scan").Info("receipt parsed", zap.Int("items", 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	for _, key := range []string{"timestamp", "message", "level", "caller"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("expected key %q in %v", key, entry)
		}
	}
	if entry["message"] != "receipt parsed" || entry["logger"] != "scan" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewWithWriterLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "warn")

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestGetInitializesOnce(t *testing.T) {
	if Get() == nil {
		t.Fatal("expected global logger")
	}
	if Get() != Get() {
		t.Fatal("expected the same global logger")
	}
}
