package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/nerrad567/greenhouse-node/internal/infrastructure/config"
)

// bootID identifies this process run. Log lines from before and after a
// watchdog reset can be told apart even when the uptime counter restarts.
var bootID = uuid.NewString()

// serviceName is attached to every entry.
const serviceName = "greenhouse-node"

// Logger is the node's structured logger. It satisfies the narrow Logger
// interfaces the domain packages declare.
type Logger struct {
	*slog.Logger
}

// New builds the logger for a node. Every entry carries the service name,
// node ID, build version and boot ID.
func New(cfg config.LoggingConfig, nodeID, version string) *Logger {
	return newLogger(output(cfg.Output), cfg, nodeID, version)
}

// Default is used until the configuration has been read.
func Default() *Logger {
	return newLogger(os.Stdout, config.LoggingConfig{Level: "info", Format: "json"}, "", "dev")
}

func newLogger(w io.Writer, cfg config.LoggingConfig, nodeID, version string) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	attrs := []slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
		slog.String("boot_id", bootID),
	}
	if nodeID != "" {
		attrs = append(attrs, slog.String("node", nodeID))
	}

	return &Logger{Logger: slog.New(h.WithAttrs(attrs))}
}

// output maps the configured destination to a writer. Anything other than
// "stderr" logs to stdout, which journald captures under systemd.
func output(name string) io.Writer {
	if strings.EqualFold(name, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// parseLevel accepts debug, info, warn(ing) and error, case-insensitively.
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

// With returns a Logger with additional attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component returns a Logger for one part of the node, such as "link" or
// "actuator".
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}
