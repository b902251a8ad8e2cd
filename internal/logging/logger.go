package logging

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gifveil/gifveil/internal/codec"
)

// LogLevelEnvVar selects the log level. Unset or empty means silent.
const LogLevelEnvVar = "GIFVEIL_LOG_LEVEL"

// dumpLimit caps how many bytes LogRawBytes renders; spread streams of a
// full cover run to megabytes
const dumpLimit = 256

var logger *zap.Logger

// Initialize installs a stderr console logger at level ("debug", "info",
// "warn" or "error"). An empty level falls back to GIFVEIL_LOG_LEVEL, and
// if that is empty too logging is silent.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil || lvl > zapcore.ErrorLevel {
		return fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         "console",
		EncoderConfig:    enc,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l.Named("gifveil")
	return nil
}

// InitializeFromEnv initializes from GIFVEIL_LOG_LEVEL only
func InitializeFromEnv() error {
	return Initialize("")
}

// GetLogger returns the global logger, silent until initialized
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogLayout logs a capacity plan at debug level
func LogLayout(msg string, layout codec.Layout) {
	Debug(msg, layout.Fields()...)
}

// LogFileEvent logs a cover, payload or key file being read or written
func LogFileEvent(event string, path string, size int) {
	Info("File "+event,
		zap.String("path", path),
		zap.Int("size", size),
	)
}

// LogRawBytes logs the start of a byte stream at debug level. For spread
// streams the first unit is the depth marker and is logged separately.
func LogRawBytes(label string, data []byte) {
	if !GetLogger().Core().Enabled(zapcore.DebugLevel) {
		return
	}
	fields := []zap.Field{
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
	}
	if len(data) > 0 {
		if d := codec.BitDepth(data[0]); d.Valid() {
			fields = append(fields, zap.Uint8("marker", data[0]))
		}
	}
	Debug(label, fields...)
}

func hexDump(data []byte) string {
	if len(data) > dumpLimit {
		return hex.EncodeToString(data[:dumpLimit]) + "..."
	}
	return hex.EncodeToString(data)
}

// Sync flushes buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
