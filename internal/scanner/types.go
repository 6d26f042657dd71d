// Package scanner discovers recorded sessions on disk.
package scanner

import (
	"time"

	"github.com/blackwell-systems/interlog/internal/events"
)

// Session is one recorded event log found on disk.
type Session struct {
	// Name is the session name taken from <name>_events.csv.
	Name string `json:"name"`

	// EventsPath is the absolute path of the event log.
	EventsPath string `json:"events_path"`

	// Size is the size of the event log in bytes.
	Size int64 `json:"size"`

	// ModTime is the last modification time of the event log.
	ModTime time.Time `json:"mod_time"`

	// Metadata is the companion metadata, nil when absent or unreadable.
	Metadata *events.Metadata `json:"metadata,omitempty"`

	// Analyzed indicates whether a summary table exists next to the log.
	Analyzed bool `json:"analyzed"`
}

// Status describes the recording state of s.
func (s Session) Status() string {
	switch {
	case s.Metadata == nil:
		return "no metadata"
	case s.Metadata.EndTime == "":
		return "unfinished"
	default:
		return "finished"
	}
}

// Started returns when recording began, falling back to the log's
// modification time.
func (s Session) Started() time.Time {
	if s.Metadata != nil {
		if t := events.ParseTimestamp(s.Metadata.StartTime); !t.IsZero() {
			return t
		}
	}
	return s.ModTime
}
