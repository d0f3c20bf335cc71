package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes repeater events to an slog.Logger.
// Useful for development when you want to see events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
// Failures log at Warn level, skipped instances at Debug, everything else
// at Info.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("action", event.Action.String()),
	}

	if event.Instance != "" {
		attrs = append(attrs, slog.String("instance", event.Instance))
	}
	if event.Service != "" {
		attrs = append(attrs, slog.String("service", event.Service))
	}
	if event.Domain != "" {
		attrs = append(attrs, slog.String("domain", event.Domain))
	}
	if event.IfIndex != 0 {
		attrs = append(attrs, slog.Int("if_index", event.IfIndex))
	}
	if event.Mirror != "" {
		attrs = append(attrs, slog.String("mirror", event.Mirror))
	}
	if event.Host != "" {
		attrs = append(attrs, slog.String("host", event.Host))
	}
	if event.Port != 0 {
		attrs = append(attrs, slog.Uint64("port", uint64(event.Port)))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", event.Reason))
	}

	level := slog.LevelInfo
	switch event.Action {
	case ActionRepeatFailed:
		level = slog.LevelWarn
	case ActionRepeatSkipped:
		level = slog.LevelDebug
	}

	a.logger.LogAttrs(context.Background(), level, "repeater", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
