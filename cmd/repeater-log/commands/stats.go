package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ahesford/bonjour-repeater/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents    int
	EventsByAction map[log.Action]int
	Sessions       map[string]*SessionStats
	Failures       int
	TimeRange      struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single repeater session.
type SessionStats struct {
	FirstSeen      time.Time
	LastSeen       time.Time
	Events         int
	Service        string
	MirrorsStarted int
	MirrorsStopped int
	Failures       int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByAction: make(map[log.Action]int),
		Sessions:       make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByAction[event.Action]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		// Track session stats
		sess, ok := stats.Sessions[event.SessionID]
		if !ok {
			sess = &SessionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			stats.Sessions[event.SessionID] = sess
		}
		sess.Events++
		if event.Timestamp.After(sess.LastSeen) {
			sess.LastSeen = event.Timestamp
		}

		switch event.Action {
		case log.ActionBrowseStarted:
			if sess.Service == "" {
				sess.Service = event.Service
			}
		case log.ActionRepeatStarted:
			sess.MirrorsStarted++
		case log.ActionRepeatStopped:
			sess.MirrorsStopped++
		case log.ActionRepeatFailed:
			sess.Failures++
			stats.Failures++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Bonjour Repeater Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	// Total events
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	// Events by action
	fmt.Fprintln(w, "Events by Action:")
	actions := []log.Action{
		log.ActionBrowseStarted,
		log.ActionRepeatStarted,
		log.ActionRepeatStopped,
		log.ActionRepeatSkipped,
		log.ActionRepeatFailed,
		log.ActionShutdown,
	}
	for _, action := range actions {
		if count := stats.EventsByAction[action]; count > 0 {
			fmt.Fprintf(w, "  %-16s %d\n", action.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Sessions
	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		// Sort by first seen time
		type sessInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			shortID := s.id
			if len(shortID) > 8 {
				shortID = shortID[:8]
			}
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortID, s.stats.Events, duration)
			if s.stats.Service != "" {
				fmt.Fprintf(w, "           Service: %s\n", s.stats.Service)
			}
			if s.stats.MirrorsStarted > 0 || s.stats.MirrorsStopped > 0 {
				fmt.Fprintf(w, "           Mirrors: %d started, %d stopped\n",
					s.stats.MirrorsStarted, s.stats.MirrorsStopped)
			}
			if s.stats.Failures > 0 {
				fmt.Fprintf(w, "           Failures: %d\n", s.stats.Failures)
			}
		}
	}

	// Failures
	if stats.Failures > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Failures: %d\n", stats.Failures)
	}
}
