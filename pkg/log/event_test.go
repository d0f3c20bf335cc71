package log

import (
	"testing"
	"time"
)

func TestActionString(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{ActionBrowseStarted, "BROWSE_STARTED"},
		{ActionRepeatStarted, "REPEAT_STARTED"},
		{ActionRepeatStopped, "REPEAT_STOPPED"},
		{ActionRepeatSkipped, "REPEAT_SKIPPED"},
		{ActionRepeatFailed, "REPEAT_FAILED"},
		{ActionShutdown, "SHUTDOWN"},
		{Action(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("Action(%d).String() = %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	event := Event{
		Timestamp: time.Now().UTC(),
		SessionID: "0d1f7a52-4cbb-4c2a-9f39-b1b0e9d9f001",
		Action:    ActionRepeatStarted,
		Instance:  "Office Printer",
		Service:   "_ipp._tcp",
		Domain:    "local",
		IfIndex:   2,
		Mirror:    "Repeated Office Printer",
		Host:      "printhost.local.",
		Port:      631,
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}

	if decoded.SessionID != event.SessionID {
		t.Errorf("SessionID = %q, want %q", decoded.SessionID, event.SessionID)
	}
	if decoded.Action != event.Action {
		t.Errorf("Action = %v, want %v", decoded.Action, event.Action)
	}
	if decoded.Instance != event.Instance {
		t.Errorf("Instance = %q, want %q", decoded.Instance, event.Instance)
	}
	if decoded.Mirror != event.Mirror {
		t.Errorf("Mirror = %q, want %q", decoded.Mirror, event.Mirror)
	}
	if decoded.Port != event.Port {
		t.Errorf("Port = %d, want %d", decoded.Port, event.Port)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestDecodeEventInvalid(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x00}); err == nil {
		t.Error("DecodeEvent(garbage) expected error")
	}
}

func TestOmittedFieldsStayCompact(t *testing.T) {
	full := Event{
		Timestamp: time.Now().UTC(),
		SessionID: "s",
		Action:    ActionRepeatStarted,
		Instance:  "Office Printer",
		Mirror:    "Repeated Office Printer",
		Host:      "printhost.local.",
		Reason:    "some reason text",
	}
	bare := Event{
		Timestamp: full.Timestamp,
		SessionID: "s",
		Action:    ActionShutdown,
	}

	fullData, err := EncodeEvent(full)
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}
	bareData, err := EncodeEvent(bare)
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}

	if len(bareData) >= len(fullData) {
		t.Errorf("bare event (%d bytes) not smaller than full event (%d bytes)",
			len(bareData), len(fullData))
	}
}
