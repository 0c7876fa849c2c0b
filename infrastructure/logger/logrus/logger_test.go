package logrus

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func captureOutput(l *Logger) *bytes.Buffer {
	buf := &bytes.Buffer{}
	l.log.SetOutput(buf)
	return buf
}

func TestNewLogger_ParsesLevel(t *testing.T) {
	l := NewLogger("debug")
	if l.log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", l.log.GetLevel())
	}
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	l := NewLogger("chatty")
	if l.log.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info", l.log.GetLevel())
	}
}

func TestLogger_EmitsJSONWithFields(t *testing.T) {
	l := NewLogger("info")
	buf := captureOutput(l)

	l.Info("Scored text", map[string]interface{}{
		"provider": "mock",
		"chunks":   3,
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "Scored text" {
		t.Errorf("msg = %v, want 'Scored text'", entry["msg"])
	}
	if entry["provider"] != "mock" {
		t.Errorf("provider field = %v, want mock", entry["provider"])
	}
}

func TestLogger_DebugSuppressedAtInfoLevel(t *testing.T) {
	l := NewLogger("info")
	buf := captureOutput(l)

	l.Debug("noise", nil)

	if buf.Len() != 0 {
		t.Errorf("debug output should be suppressed, got %s", buf.String())
	}
}
