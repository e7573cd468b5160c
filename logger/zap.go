package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements Logger on top of a zap SugaredLogger
type ZapLogger struct {
	mu    sync.RWMutex
	level LogLevel
	name  string
	sugar *zap.SugaredLogger
}

// NewZapLogger creates a console logger writing to stdout under the given name
func NewZapLogger(name string) *ZapLogger {
	l := &ZapLogger{
		level: LogLevelInfo,
		name:  name,
	}
	l.sugar = l.build(os.Stdout)
	return l
}

func (l *ZapLogger) build(w io.Writer) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if w != os.Stdout && w != os.Stderr {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	// Level filtering happens in log so SetLevel needs no core rebuild.
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), zapcore.DebugLevel)
	z := zap.New(core)
	if l.name != "" {
		z = z.Named(l.name)
	}
	return z.Sugar()
}

// SetLevel sets the logging level
func (l *ZapLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current logging level
func (l *ZapLogger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetOutput redirects the logger to w
func (l *ZapLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.sugar.Sync()
	l.sugar = l.build(w)
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sugar.Sync()
}

func (l *ZapLogger) log(level LogLevel, format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.level < level {
		return
	}

	switch level {
	case LogLevelError:
		l.sugar.Errorf(format, args...)
	case LogLevelWarn:
		l.sugar.Warnf(format, args...)
	case LogLevelInfo:
		l.sugar.Infof(format, args...)
	case LogLevelDebug:
		l.sugar.Debugf(format, args...)
	}
}

// Debug logs a debug message
func (l *ZapLogger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

// Info logs an info message
func (l *ZapLogger) Info(format string, args ...any) {
	l.log(LogLevelInfo, format, args...)
}

// Warn logs a warning message
func (l *ZapLogger) Warn(format string, args ...any) {
	l.log(LogLevelWarn, format, args...)
}

// Error logs an error message
func (l *ZapLogger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}
