package logger

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dwarvesf/crypto-bookkeeper/internal/types/environments"
)

// Logger writes structured entries. Fields are passed as a string map and
// emitted in key order.
type Logger struct {
	wrappedLogger *zap.Logger
}

func New(env environments.Environment) *Logger {
	var cfg zap.Config

	switch env {
	case environments.Development:
		cfg = newDevelopmentLoggerConfig()
	case environments.Test:
		cfg = newTestLoggerConfig()
	case environments.Staging:
		cfg = newStagingLoggerConfig()
	default:
		cfg = newProductionLoggerConfig()
	}

	zapLogger, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		panic(err)
	}

	return &Logger{wrappedLogger: zapLogger}
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields map[string]string) *Logger {
	return &Logger{wrappedLogger: l.wrappedLogger.With(toFields(fields)...)}
}

func (l *Logger) Debug(msg string, inputFields ...map[string]string) {
	l.write(zapcore.DebugLevel, msg, inputFields)
}

func (l *Logger) Info(msg string, inputFields ...map[string]string) {
	l.write(zapcore.InfoLevel, msg, inputFields)
}

func (l *Logger) Warn(msg string, inputFields ...map[string]string) {
	l.write(zapcore.WarnLevel, msg, inputFields)
}

func (l *Logger) Error(msg string, inputFields ...map[string]string) {
	l.write(zapcore.ErrorLevel, msg, inputFields)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, inputFields ...map[string]string) {
	l.write(zapcore.FatalLevel, msg, inputFields)
}

// Sync flushes buffered entries, called on shutdown.
func (l *Logger) Sync() {
	_ = l.wrappedLogger.Sync()
}

func (l *Logger) write(level zapcore.Level, msg string, inputFields []map[string]string) {
	ce := l.wrappedLogger.Check(level, msg)
	if ce == nil {
		return
	}
	var fields []zap.Field
	if len(inputFields) > 0 {
		fields = toFields(inputFields[0])
	}
	ce.Write(fields...)
}

func toFields(strMap map[string]string) []zap.Field {
	keys := make([]string, 0, len(strMap))
	for k := range strMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.String(k, strMap[k]))
	}
	return fields
}
