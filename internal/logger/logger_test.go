package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/jwebster45206/npc-dialogue/internal/config"
)

func TestSetupWriter_Production(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWriter(&config.Config{Environment: "production", LogLevel: slog.LevelInfo}, &buf)

	WithTurn(WithPlayer(l, "hero", "phin"), "t-1").Info("turn completed")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if rec["player_id"] != "hero" || rec["persona"] != "phin" || rec["turn_id"] != "t-1" {
		t.Errorf("missing context fields: %v", rec)
	}
}

func TestSetupWriter_Development(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWriter(&config.Config{Environment: "development", LogLevel: slog.LevelWarn}, &buf)

	l.Info("hidden")
	WithError(l, errors.New("boom")).Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, "error=boom") {
		t.Errorf("expected text handler output with error, got %q", out)
	}
}
