package log

import (
	"time"
)

// Event represents one repeater state transition.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the repeater run (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Action is the transition being reported.
	Action Action `cbor:"3,keyasint"`

	// Instance is the original service instance name.
	Instance string `cbor:"4,keyasint,omitempty"`

	// Service is the service type the instance was browsed under.
	Service string `cbor:"5,keyasint,omitempty"`

	// Domain is the mDNS domain.
	Domain string `cbor:"6,keyasint,omitempty"`

	// IfIndex is the network interface index (0 for all interfaces).
	IfIndex int `cbor:"7,keyasint,omitempty"`

	// Mirror is the mirrored instance name, for events about a publication.
	Mirror string `cbor:"8,keyasint,omitempty"`

	// Host is the resolved target host, when resolution succeeded.
	Host string `cbor:"9,keyasint,omitempty"`

	// Port is the resolved target port, when resolution succeeded.
	Port uint16 `cbor:"10,keyasint,omitempty"`

	// Reason describes why an instance was skipped or a mirror failed.
	Reason string `cbor:"11,keyasint,omitempty"`
}

// Action classifies a repeater state transition.
type Action uint8

const (
	// ActionBrowseStarted indicates the browse loop began listening.
	ActionBrowseStarted Action = 0

	// ActionRepeatStarted indicates a mirrored publication went live.
	ActionRepeatStarted Action = 1

	// ActionRepeatStopped indicates a mirrored publication was withdrawn.
	ActionRepeatStopped Action = 2

	// ActionRepeatSkipped indicates an instance was not eligible for
	// mirroring (expected outcome, not a failure).
	ActionRepeatSkipped Action = 3

	// ActionRepeatFailed indicates resolution or registration failed.
	ActionRepeatFailed Action = 4

	// ActionShutdown indicates the loop terminated and drained all
	// publications.
	ActionShutdown Action = 5
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionBrowseStarted:
		return "BROWSE_STARTED"
	case ActionRepeatStarted:
		return "REPEAT_STARTED"
	case ActionRepeatStopped:
		return "REPEAT_STOPPED"
	case ActionRepeatSkipped:
		return "REPEAT_SKIPPED"
	case ActionRepeatFailed:
		return "REPEAT_FAILED"
	case ActionShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}
