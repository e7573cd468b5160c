package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/rediwo/refdata/logger"
)

// DefaultSlowThreshold is the statement duration above which LogSQL warns
// regardless of the log level
const DefaultSlowThreshold = 500 * time.Millisecond

// DBLogger adds statement logging to a logger.Logger
type DBLogger struct {
	logger.Logger
	SlowThreshold time.Duration
}

func NewDBLogger(l logger.Logger) *DBLogger {
	if l == nil {
		l = logger.NewNullLogger()
	}
	return &DBLogger{Logger: l, SlowThreshold: DefaultSlowThreshold}
}

// LogSQL logs one executed statement on a single line. Statements are
// logged at debug level, slow ones as warnings.
func (l *DBLogger) LogSQL(query string, args []any, duration time.Duration) {
	slow := l.SlowThreshold > 0 && duration >= l.SlowThreshold
	if !slow && l.GetLevel() < logger.LogLevelDebug {
		return
	}

	line := strings.Join(strings.Fields(query), " ")
	if len(args) > 0 {
		formatted := make([]string, len(args))
		for i, arg := range args {
			formatted[i] = fmt.Sprintf("%v", arg)
		}
		line += " [" + strings.Join(formatted, ", ") + "]"
	}

	if slow {
		l.Warn("Slow SQL (%v): %s", duration, line)
		return
	}
	l.Debug("SQL (%v): %s", duration, line)
}
