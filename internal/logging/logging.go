// Package logging builds the structured logger used across the tool.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// DefaultLevel keeps one-shot commands silent unless something goes wrong.
const DefaultLevel = "warn"

// New returns a logger writing key/value lines to w, dropping
// everything below level.
func New(w io.Writer, level string) log.Logger {
	logger := log.With(log.NewStdLogger(w),
		"ts", log.Timestamp(time.DateTime),
		"app", "todo",
	)
	return log.NewFilter(logger, log.FilterLevel(log.ParseLevel(level)))
}

// ValidLevel reports whether s names a kratos log level.
func ValidLevel(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "INFO", "WARN", "ERROR", "FATAL":
		return true
	}
	return false
}
