package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rediwo/refdata/logger"
)

// LoggerWriter implements io.Writer to bridge MCP's transport logging to our logger
type LoggerWriter struct {
	logger logger.Logger
	prefix string
}

// NewLoggerWriter creates a new logger writer
func NewLoggerWriter(l logger.Logger, prefix string) *LoggerWriter {
	return &LoggerWriter{
		logger: l,
		prefix: prefix,
	}
}

// Write logs one JSON-RPC message per line
func (w *LoggerWriter) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(string(p), "\n") {
		msg := strings.TrimSpace(line)
		if msg == "" {
			continue
		}

		var jsonMsg map[string]any
		if err := json.Unmarshal([]byte(msg), &jsonMsg); err == nil {
			w.logJSONRPC(jsonMsg)
		} else {
			w.logger.Debug("[%s] %s", w.prefix, truncateString(msg, 200))
		}
	}
	return len(p), nil
}

func (w *LoggerWriter) logJSONRPC(msg map[string]any) {
	id := formatID(msg["id"])

	switch {
	case msg["method"] != nil:
		w.logger.Debug("[%s] → Request #%s: %v %s", w.prefix, id, msg["method"], compact(msg["params"]))
	case msg["result"] != nil:
		w.logger.Debug("[%s] ← Response #%s: %s", w.prefix, id, compact(msg["result"]))
	case msg["error"] != nil:
		w.logger.Warn("[%s] ← Error #%s: %s", w.prefix, id, formatError(msg["error"]))
	default:
		w.logger.Debug("[%s] %s", w.prefix, compact(msg))
	}
}

func formatID(id any) string {
	if id == nil {
		return "null"
	}
	return fmt.Sprintf("%v", id)
}

func compact(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return truncateString(string(data), 200)
}

func formatError(err any) string {
	errMap, ok := err.(map[string]any)
	if !ok {
		return fmt.Sprintf("%v", err)
	}

	var parts []string
	if code := errMap["code"]; code != nil {
		parts = append(parts, fmt.Sprintf("code=%v", code))
	}
	if message := errMap["message"]; message != nil {
		parts = append(parts, fmt.Sprintf("message=%v", message))
	}
	return strings.Join(parts, ", ")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
