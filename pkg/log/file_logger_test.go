package log

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLoggerWriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.rlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	events := []Event{
		{Timestamp: time.Now().UTC(), SessionID: "s", Action: ActionBrowseStarted, Service: "_ipp._tcp"},
		{Timestamp: time.Now().UTC(), SessionID: "s", Action: ActionRepeatStarted, Instance: "Office Printer"},
		{Timestamp: time.Now().UTC(), SessionID: "s", Action: ActionShutdown},
	}
	for _, ev := range events {
		logger.Log(ev)
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	dec := NewDecoder(f)
	var got []Event
	for {
		var ev Event
		if err := dec.Decode(&ev); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		got = append(got, ev)
	}

	if len(got) != len(events) {
		t.Fatalf("read back %d events, want %d", len(got), len(events))
	}
	for i := range events {
		if got[i].Action != events[i].Action {
			t.Errorf("event %d Action = %v, want %v", i, got[i].Action, events[i].Action)
		}
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.rlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Logging after close must not panic or write
	logger.Log(Event{Action: ActionShutdown})
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.rlog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Log(Event{Timestamp: time.Now().UTC(), SessionID: "s", Action: ActionBrowseStarted})
		if err := logger.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	dec := NewDecoder(f)
	count := 0
	for {
		var ev Event
		if err := dec.Decode(&ev); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("read back %d events after two runs, want 2", count)
	}
}
