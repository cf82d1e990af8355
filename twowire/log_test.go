package twowire

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)

	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		SetLogLevel(level)
		if got := GetLogLevel(); got != level {
			t.Errorf("GetLogLevel() = %v, want %v", got, level)
		}
	}
}

func TestComponentTagging(t *testing.T) {
	original := DefaultLogger
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewJSONLogger(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogDebug(ComponentBus, "transaction", "bytes", "40")
	out := buf.String()
	if !strings.Contains(out, `"component":"bus"`) {
		t.Errorf("missing component attribute: %s", out)
	}
	if !strings.Contains(out, `"msg":"transaction"`) {
		t.Errorf("missing message: %s", out)
	}
}

func TestNewLoggerUsesSharedLevel(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)
	SetLogLevel(slog.LevelWarn)

	var buf bytes.Buffer
	logger := NewLogger(&buf, nil)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestHexBytes(t *testing.T) {
	original := DefaultLogger
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewJSONLogger(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogDebug(ComponentBus, "transaction", "bytes", HexBytes{0x40, 0xc0, 0x06})
	if out := buf.String(); !strings.Contains(out, `"bytes":"40 c0 06"`) {
		t.Errorf("bytes not logged as hex: %s", out)
	}

	if got := HexBytes(nil).LogValue().String(); got != "" {
		t.Errorf("HexBytes(nil) = %q, want empty", got)
	}
}
