package logger

import "io"

var _ Logger = (*NullLogger)(nil)

// NullLogger discards every message. It remembers its level so that code
// asking GetLevel before formatting expensive output behaves the same as
// with a real logger.
type NullLogger struct {
	level LogLevel
}

func NewNullLogger() *NullLogger {
	return &NullLogger{level: LogLevelNone}
}

func (*NullLogger) Debug(string, ...any) {}
func (*NullLogger) Info(string, ...any)  {}
func (*NullLogger) Warn(string, ...any)  {}
func (*NullLogger) Error(string, ...any) {}
func (*NullLogger) SetOutput(io.Writer)  {}

func (n *NullLogger) SetLevel(level LogLevel) { n.level = level }
func (n *NullLogger) GetLevel() LogLevel      { return n.level }
