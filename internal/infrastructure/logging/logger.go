package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mponcet/wololo/internal/infrastructure/config"
)

// serviceName is attached to every record as the "service" field.
const serviceName = "wololo"

// redacted replaces the value of secret-looking attributes.
const redacted = "[REDACTED]"

// Logger is a slog.Logger carrying wololo's default fields.
//
// Thread Safety: safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a logger from the logging config section. Unknown formats fall
// back to JSON and unknown destinations to stderr, so stdout stays reserved
// for command output.
func New(cfg config.LoggingConfig, version string) *Logger {
	return NewWithWriter(destination(cfg.Output), cfg, version)
}

// NewWithWriter is New with an explicit destination. cfg.Output is ignored.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig, version string) *Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: redactSecrets,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler).With(
			slog.String("service", serviceName),
			slog.String("version", version),
		),
	}
}

func destination(output string) io.Writer {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	default:
		return os.Stderr
	}
}

// parseLevel maps debug, info, warn (or warning) and error to slog levels.
// Anything else is info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// redactSecrets hides credentials that end up in log arguments, such as a
// broker password passed along with its config section.
func redactSecrets(_ []string, a slog.Attr) slog.Attr {
	switch strings.ToLower(a.Key) {
	case "password", "token", "secret":
		return slog.String(a.Key, redacted)
	}
	return a
}

// With returns a child logger with extra default attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Component returns a child logger tagged component=name.
//
//	repoLog := logger.Component("device")
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Default is the logger used before configuration is loaded: text on stderr
// at info level.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}, "dev")
}
