package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// NewHandlerText builds a charmbracelet text handler for the given level.
func NewHandlerText(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	reportCaller := false
	reportTimestamp := true
	lvl := log.InfoLevel
	switch strings.ToLower(logLevel) {
	case "trace":
		reportCaller = true
		lvl = log.DebugLevel
	case "debug":
		lvl = log.DebugLevel
	case "warn", "warning":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	}

	return log.NewWithOptions(writer, log.Options{
		ReportTimestamp: reportTimestamp,
		ReportCaller:    reportCaller,
		Level:           lvl,
		Prefix:          "portal",
	})
}

// NewHandlerJSON builds a JSON handler for the given level.
func NewHandlerJSON(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stdout
	}
	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     parseLevel(logLevel),
		AddSource: strings.EqualFold(logLevel, "trace"),
	})
}

// New returns a logger writing in format ("text" or "json"). Records logged
// with a request context carry its request_id.
func New(format, logLevel string, writer io.Writer) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(contextHandler{NewHandlerJSON(logLevel, writer)})
	}
	return slog.New(contextHandler{NewHandlerText(logLevel, writer)})
}

func parseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
