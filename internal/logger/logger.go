// Package logger builds the zap loggers used by the CLI.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// FieldJobID is the structured log field key for the discovery job.
	FieldJobID = "job_id"
	// FieldPersonaID is the structured log field key for the persona being ranked.
	FieldPersonaID = "persona_id"
)

// New builds a logger writing to stderr so that command output on stdout stays clean.
// Console encoding at info level unless json or debug is set.
func New(json bool, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
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
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
	return cfg.Build()
}

// WithJob attaches the job and persona fields to the logger, skipping empty values.
// A nil logger becomes a no-op logger.
func WithJob(logger *zap.Logger, jobID, personaID string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	fields := make([]zap.Field, 0, 2)
	if v := strings.TrimSpace(jobID); v != "" {
		fields = append(fields, zap.String(FieldJobID, v))
	}
	if v := strings.TrimSpace(personaID); v != "" {
		fields = append(fields, zap.String(FieldPersonaID, v))
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
