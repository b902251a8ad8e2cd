package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger enabled without GIFVEIL_LOG_LEVEL")
	}
}

func TestInitialize_Levels(t *testing.T) {
	tests := []struct {
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"info", zapcore.InfoLevel, zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel, zapcore.InfoLevel},
		{"error", zapcore.ErrorLevel, zapcore.WarnLevel},
		{" WARN ", zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if err := Initialize(tt.level); err != nil {
				t.Fatalf("Initialize(%q) error = %v", tt.level, err)
			}
			core := GetLogger().Core()
			if !core.Enabled(tt.enabled) {
				t.Errorf("level %v not enabled", tt.enabled)
			}
			if core.Enabled(tt.muted) {
				t.Errorf("level %v enabled, want muted", tt.muted)
			}
		})
	}
	t.Cleanup(func() { _ = Initialize("") })
}

func TestInitialize_UnknownLevel(t *testing.T) {
	t.Cleanup(func() { _ = Initialize("") })
	for _, level := range []string{"verbose", "fatal", "panic"} {
		if err := Initialize(level); err == nil {
			t.Errorf("Initialize(%q) error = nil, want unknown level", level)
		}
	}
}

func TestHexDump(t *testing.T) {
	if got := hexDump([]byte{0x02, 0xff}); got != "02ff" {
		t.Errorf("hexDump() = %q, want %q", got, "02ff")
	}

	long := hexDump(make([]byte, 300))
	if !strings.HasSuffix(long, "...") || len(long) != 2*dumpLimit+3 {
		t.Errorf("hexDump(300 bytes) length = %d, want truncated to %d", len(long), 2*dumpLimit+3)
	}
}
