package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestLevels(t *testing.T) {
	buf := capture(t, LevelInfo)

	Debug("hidden")
	Info("shown", "items", 3)
	Error("failed", errors.New("boom"), "id", "a")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line written at info level")
	}
	if !strings.Contains(out, "[INFO] shown items=3") {
		t.Errorf("missing info line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] failed err=boom id=a") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestFormatKVs(t *testing.T) {
	tests := []struct {
		name string
		kv   []any
		want string
	}{
		{"pairs", []any{"a", 1, "b", true}, " a=1 b=true"},
		{"odd trailing key", []any{"a", 1, "b"}, " a=1"},
		{"non-string key", []any{7, 1, "b", 2}, " b=2"},
		{"quoted value", []any{"name", "two words"}, ` name="two words"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatKVs(tt.kv...); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel(" debug "); err != nil || l != LevelDebug {
		t.Errorf("expected DEBUG, got %v, %v", l, err)
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}
