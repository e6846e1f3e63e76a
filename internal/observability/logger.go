// Package observability provides the structured logger used across pdf2text.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with pdf2text specific helpers.
type Logger struct {
	zl zerolog.Logger
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Format string // json or console
	Output io.Writer
	RunID  string
}

// NewLogger creates a new Logger with the given configuration.
func NewLogger(cfg LogConfig) *Logger {
	return &Logger{zl: NewZerolog(cfg)}
}

// NewZerolog builds the underlying zerolog logger for cfg, for callers that
// hand a plain zerolog.Logger to library code.
func NewZerolog(cfg LogConfig) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var zl zerolog.Logger
	if cfg.Format == "json" {
		zl = zerolog.New(output)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		})
	}

	ctx := zl.Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.RunID != "" {
		ctx = ctx.Str("run_id", cfg.RunID)
	}
	return ctx.Logger()
}

// Wrap adopts an existing zerolog logger.
func Wrap(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithComponent returns a logger tagged with the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

// WithPage returns a logger tagged with a page index.
func (l *Logger) WithPage(page int) *Logger {
	return &Logger{zl: l.zl.With().Int("page", page).Logger()}
}

// Debug logs a debug message.
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }

// Info logs an info message.
func (l *Logger) Info() *zerolog.Event { return l.zl.Info() }

// Warn logs a warning message.
func (l *Logger) Warn() *zerolog.Event { return l.zl.Warn() }

// Error logs an error message.
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// ParseLevel converts a string level to zerolog.Level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
