// Package commands implements the repeater-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/ahesford/bonjour-repeater/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Action    *log.Action
	SessionID string
	Instance  string
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [sess:id] ACTION instance (service.domain)
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	sess := shortenSessionID(event.SessionID)

	fmt.Fprintf(w, "%s [sess:%s] %s", ts, sess, event.Action.String())
	if event.Instance != "" {
		fmt.Fprintf(w, " %s", event.Instance)
	}
	if event.Service != "" {
		fmt.Fprintf(w, " (%s.%s)", event.Service, event.Domain)
	}
	fmt.Fprintln(w)

	// Action-specific details
	if event.Mirror != "" {
		fmt.Fprintf(w, "  Mirror: %s\n", event.Mirror)
	}
	if event.Host != "" {
		fmt.Fprintf(w, "  Target: %s:%d\n", event.Host, event.Port)
	}
	if event.IfIndex != 0 {
		fmt.Fprintf(w, "  Interface: %d\n", event.IfIndex)
	}
	if event.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", event.Reason)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// ParseActionFlag parses an action string from command-line flag (case-insensitive).
func ParseActionFlag(s string) (log.Action, error) {
	return parseAction(s)
}

// parseAction parses an action string (case-insensitive).
func parseAction(s string) (log.Action, error) {
	switch strings.ToLower(s) {
	case "browse_started":
		return log.ActionBrowseStarted, nil
	case "repeat_started":
		return log.ActionRepeatStarted, nil
	case "repeat_stopped":
		return log.ActionRepeatStopped, nil
	case "repeat_skipped":
		return log.ActionRepeatSkipped, nil
	case "repeat_failed":
		return log.ActionRepeatFailed, nil
	case "shutdown":
		return log.ActionShutdown, nil
	default:
		return 0, fmt.Errorf("invalid action: %s (must be browse_started, repeat_started, repeat_stopped, repeat_skipped, repeat_failed, or shutdown)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		// Apply filter
		if filter.Action != nil && event.Action != *filter.Action {
			continue
		}
		if filter.SessionID != "" && event.SessionID != filter.SessionID {
			continue
		}
		if filter.Instance != "" && event.Instance != filter.Instance {
			continue
		}

		formatEvent(output, event)
	}

	return nil
}
