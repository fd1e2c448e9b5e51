package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger. debug lowers the level to debug and json
// switches the console encoder to JSON.
func New(json bool, debug bool) (*zap.Logger, error) {
	return build(json, debug, zapcore.InfoLevel)
}

// NewTerminal builds a logger for interactive commands. Below warn level it
// stays silent unless debug is set, so log lines do not interleave with prompts.
func NewTerminal(json bool, debug bool) (*zap.Logger, error) {
	return build(json, debug, zapcore.WarnLevel)
}

func build(json, debug bool, level zapcore.Level) (*zap.Logger, error) {
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}

	return cfg.Build()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
