// Package logger provides structured logging for docvcs
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with docvcs-specific functionality
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string // any zerolog level name, e.g. debug, warn or disabled
	Pretty     bool   // pretty-print for development
	Output     io.Writer
	WithCaller bool
}

// ValidLevel reports whether NewLogger honours level rather than
// falling back to info
func ValidLevel(level string) bool {
	_, ok := parseLevel(level)
	return ok
}

func parseLevel(level string) (zerolog.Level, bool) {
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel, false
	}
	return l, true
}

// NewLogger builds a logger from cfg. Unknown or empty levels fall back to info.
func NewLogger(cfg Config) *Logger {
	level, _ := parseLevel(cfg.Level)

	var out io.Writer = os.Stderr
	if cfg.Output != nil {
		out = cfg.Output
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp().Str("service", "docvcs")
	if cfg.WithCaller {
		ctx = ctx.Caller()
	}
	return &Logger{zlog: ctx.Logger()}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// GetZerolog returns the underlying zerolog logger
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}

// Info logs an info message
func (l *Logger) Info(msg string) *zerolog.Event {
	return l.zlog.Info().Str("msg", msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) *zerolog.Event {
	return l.zlog.Debug().Str("msg", msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) *zerolog.Event {
	return l.zlog.Warn().Str("msg", msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) *zerolog.Event {
	return l.zlog.Error().Str("msg", msg)
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zlog: ctx.Logger()}
}

// RepoLogger returns a logger scoped to one repository
func (l *Logger) RepoLogger(repoName string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "repo").
			Str("repo", repoName).
			Logger(),
	}
}

// RegistryLogger returns a logger for user and repo bookkeeping
func (l *Logger) RegistryLogger() *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "registry").
			Logger(),
	}
}

// ShellLogger returns a logger for the interactive session
func (l *Logger) ShellLogger(session string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "shell").
			Str("session", session).
			Logger(),
	}
}

// LogCheckInQueued logs a check-in entering a repo's queue
func (l *Logger) LogCheckInQueued(checkInID, author string, changeCount, pending int) {
	l.zlog.Info().
		Str("event", "checkin_queued").
		Str("checkin", checkInID).
		Str("user", author).
		Int("changes", changeCount).
		Int("pending", pending).
		Msg("Check-in queued for approval")
}

// LogApproval logs the outcome of an approval attempt
func (l *Logger) LogApproval(checkInID, requester, outcome string, version int, duration time.Duration) {
	event := l.zlog.Info()
	if outcome != "SUCCESS" {
		event = l.zlog.Warn()
	}

	event.
		Str("event", "checkin_approval").
		Str("checkin", checkInID).
		Str("user", requester).
		Str("result", outcome).
		Int("version", version).
		Dur("duration_ms", duration).
		Msg("Check-in approval completed")
}

// LogRevert logs the outcome of a revert attempt
func (l *Logger) LogRevert(requester, outcome string, version int) {
	event := l.zlog.Info()
	if outcome != "SUCCESS" {
		event = l.zlog.Warn()
	}

	event.
		Str("event", "revert").
		Str("user", requester).
		Str("result", outcome).
		Int("version", version).
		Msg("Revert completed")
}

// LogSessionStart logs the start of an interactive run
func (l *Logger) LogSessionStart(metricsPort int) {
	l.zlog.Info().
		Str("event", "session_start").
		Int("metrics_port", metricsPort).
		Msg("docvcs session starting")
}

// LogSessionEnd logs the end of an interactive run
func (l *Logger) LogSessionEnd(err error) {
	event := l.zlog.Info()
	if err != nil {
		event = l.zlog.Error().Err(err)
	}
	event.
		Str("event", "session_end").
		Msg("docvcs session finished")
}
