// Package log provides the structured logger used across Nova's
// components. It holds no package-level state: New builds a logger from
// the caller's configuration (there is no configuration to reload — sink
// rotation is out of scope, see spec.md §1). There is no file rotation:
// output goes to stderr only, through a console encoder for human-legible
// CLI output or a JSON encoder when the format is "json".
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nova-cli/nova/internal/scope"
)

// New builds a *zap.Logger from an optional LoggingConfig (the global
// scope's `logging` key). A nil config yields info-level console logging;
// an unrecognized level or format falls back to the default rather than
// failing construction.
func New(cfg *scope.LoggingConfig) *zap.Logger {
	level := zapcore.InfoLevel
	format := "console"
	if cfg != nil {
		if cfg.Level != "" {
			if l, err := zapcore.ParseLevel(cfg.Level); err == nil {
				level = l
			}
		}
		if cfg.Format != "" {
			format = cfg.Format
		}
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "",
		MessageKey:     "M",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var encoder zapcore.Encoder
	if format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level)
	return zap.New(core)
}

// Nop returns a logger that discards everything, for tests and call sites
// that have not wired a configuration yet.
func Nop() *zap.Logger {
	return zap.NewNop()
}
