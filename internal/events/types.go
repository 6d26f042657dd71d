// Package events defines the interaction event model shared by capture,
// serialization and analysis.
package events

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// RedactedKey replaces key identities when a session is recorded in privacy mode.
const RedactedKey = "[REDACTED]"

// Kind identifies the type of an interaction event.
type Kind uint8

// The set of event kinds is closed; every switch over Kind handles all five.
const (
	MouseMove Kind = iota
	MouseDown
	MouseUp
	Scroll
	KeyPress
)

// Kinds lists every event kind in serialization order.
var Kinds = []Kind{MouseMove, MouseDown, MouseUp, Scroll, KeyPress}

// String returns the event_type tag used in event logs.
func (k Kind) String() string {
	switch k {
	case MouseMove:
		return "mouse_move"
	case MouseDown:
		return "mouse_down"
	case MouseUp:
		return "mouse_up"
	case Scroll:
		return "scroll"
	case KeyPress:
		return "key_press"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// HasPosition reports whether events of this kind carry screen coordinates.
func (k Kind) HasPosition() bool {
	switch k {
	case MouseMove, MouseDown, MouseUp, Scroll:
		return true
	case KeyPress:
		return false
	default:
		return false
	}
}

// ParseKind converts an event_type tag into a Kind. Key releases are folded
// into KeyPress.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "mouse_move":
		return MouseMove, nil
	case "mouse_down":
		return MouseDown, nil
	case "mouse_up":
		return MouseUp, nil
	case "scroll":
		return Scroll, nil
	case "key_press", "key_release":
		return KeyPress, nil
	default:
		return 0, fmt.Errorf("unknown event type %q", s)
	}
}

// Position is a screen coordinate in pixels.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Delta is a scroll offset.
type Delta struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// Event is one observed interaction. Timestamp is in seconds since session
// start.
type Event struct {
	Timestamp float64
	Kind      Kind
	Pos       *Position
	Button    string
	Key       string
	Scroll    *Delta
}

// Validate checks that the event carries the fields its kind requires.
func (e Event) Validate() error {
	if math.IsNaN(e.Timestamp) || math.IsInf(e.Timestamp, 0) {
		return fmt.Errorf("non-finite timestamp %g", e.Timestamp)
	}
	if e.Timestamp < 0 {
		return fmt.Errorf("negative timestamp %g", e.Timestamp)
	}
	if e.Kind.HasPosition() && e.Pos == nil {
		return fmt.Errorf("%s without coordinates", e.Kind)
	}
	return nil
}

// IsSorted reports whether evs is ordered by non-decreasing timestamp.
func IsSorted(evs []Event) bool {
	return sort.SliceIsSorted(evs, func(i, j int) bool {
		return evs[i].Timestamp < evs[j].Timestamp
	})
}

// SortedCopy returns evs ordered by timestamp. Ties keep their input order.
// The input slice is never modified.
func SortedCopy(evs []Event) []Event {
	out := make([]Event, len(evs))
	copy(out, evs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// Metadata describes one recording session. It is written by the recorder
// and passed through analysis untouched. Times are stored as strings so that
// metadata from any recorder version round-trips unchanged.
type Metadata struct {
	SessionName     string  `json:"session_name"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time,omitempty"`
	PrivacyMode     bool    `json:"privacy_mode"`
	OutputDir       string  `json:"output_dir,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	TotalEvents     int     `json:"total_events,omitempty"`
}

// ParseTimestamp parses a metadata timestamp. It accepts RFC 3339 and the
// zone-less ISO form written by older recorders. Returns the zero time on
// failure.
func ParseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
