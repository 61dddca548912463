package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SchedulerLogger adapts zerolog.Logger to the scheduler.Logger interface.
type SchedulerLogger struct {
	logger zerolog.Logger
}

// NewSchedulerLogger creates a new SchedulerLogger wrapping a zerolog.Logger.
func NewSchedulerLogger(logger zerolog.Logger) *SchedulerLogger {
	return &SchedulerLogger{logger: logger}
}

// Debug logs a debug message with optional key-value pairs.
func (l *SchedulerLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(toFields(keysAndValues)).Msg(msg)
}

// Info logs an info message with optional key-value pairs.
func (l *SchedulerLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info().Fields(toFields(keysAndValues)).Msg(msg)
}

// Error logs an error message with optional key-value pairs.
func (l *SchedulerLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error().Fields(toFields(keysAndValues)).Msg(msg)
}

// toFields converts key-value pairs to a map for zerolog.
func toFields(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}

// zerologLevel converts a string log level to a zerolog.Level.
func zerologLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewConsoleLogger builds a zerolog logger writing console format without
// colors to every writer, tagged with the component name.
func NewConsoleLogger(level, component string, writers ...io.Writer) zerolog.Logger {
	outs := make([]io.Writer, 0, len(writers))
	for _, w := range writers {
		if w == nil {
			continue
		}
		outs = append(outs, zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}
	if len(outs) == 0 {
		return zerolog.Nop()
	}

	return zerolog.New(zerolog.MultiLevelWriter(outs...)).
		Level(zerologLevel(level)).
		With().Timestamp().Str("component", component).Logger()
}
