// README: Structured logger (zap) behind a narrow interface so modules can take it by injection.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Field = zapcore.Field

var (
	Int      = zap.Int
	Bool     = zap.Bool
	Int64    = zap.Int64
	String   = zap.String
	Strings  = zap.Strings
	Duration = zap.Duration
	Error    = zap.Error
	Any      = zap.Any
)

type ILogger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warning(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) ILogger
	Sync() error
}

type logger struct {
	zap *zap.Logger
}

func (l logger) Debug(msg string, fields ...Field)   { l.zap.Debug(msg, fields...) }
func (l logger) Info(msg string, fields ...Field)    { l.zap.Info(msg, fields...) }
func (l logger) Warning(msg string, fields ...Field) { l.zap.Warn(msg, fields...) }
func (l logger) Error(msg string, fields ...Field)   { l.zap.Error(msg, fields...) }
func (l logger) Sync() error                         { return l.zap.Sync() }

func (l logger) With(fields ...Field) ILogger {
	return logger{zap: l.zap.With(fields...)}
}

// New builds a logger for the given service. level is one of debug, info, warn, error;
// "debug" also switches to the human-readable development encoder.
func New(service, level string) ILogger {
	return logger{zap: newZapLogger(service, level)}
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) ILogger {
	return logger{zap: z}
}

// Nop discards everything. Used by tests and optional collaborators.
func Nop() ILogger {
	return logger{zap: zap.NewNop()}
}

func newZapLogger(service, level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(level, "debug") {
		cfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stdout"}
	cfg.InitialFields = map[string]interface{}{
		"service": service,
	}

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return l
}
