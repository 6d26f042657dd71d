// Package capture records interaction sessions: it reads raw input events
// from a Source, timestamps them relative to session start and appends them
// to the session's event log.
package capture

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/interlog/internal/events"
)

// RawEvent is one input event as delivered by a Source.
type RawEvent struct {
	Type   string   `json:"type"`
	T      *float64 `json:"t,omitempty"` // seconds since session start; recorder clock when absent
	X      *int     `json:"x,omitempty"`
	Y      *int     `json:"y,omitempty"`
	Button string   `json:"button,omitempty"`
	Key    string   `json:"key,omitempty"`
	DX     int      `json:"dx,omitempty"`
	DY     int      `json:"dy,omitempty"`
}

// Event converts r into an event at timestamp ts.
func (r RawEvent) Event(ts float64) (events.Event, error) {
	kind, err := events.ParseKind(r.Type)
	if err != nil {
		return events.Event{}, err
	}
	ev := events.Event{Timestamp: ts, Kind: kind}
	if kind.HasPosition() {
		if r.X == nil || r.Y == nil {
			return events.Event{}, fmt.Errorf("%s without coordinates", r.Type)
		}
		ev.Pos = &events.Position{X: *r.X, Y: *r.Y}
	}
	switch kind {
	case events.MouseDown, events.MouseUp:
		ev.Button = r.Button
	case events.Scroll:
		ev.Scroll = &events.Delta{DX: r.DX, DY: r.DY}
	case events.KeyPress:
		ev.Key = r.Key
	case events.MouseMove:
	}
	return ev, ev.Validate()
}

// Source produces raw events until it is exhausted or ctx is cancelled.
// Stream returns nil when the source ends normally.
type Source interface {
	Stream(ctx context.Context, emit func(RawEvent) error) error
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, emit func(RawEvent) error) error

// Stream calls f.
func (f SourceFunc) Stream(ctx context.Context, emit func(RawEvent) error) error {
	return f(ctx, emit)
}

// JSONLines reads one JSON object per line. Blank lines are ignored and
// undecodable lines are logged and skipped.
type JSONLines struct {
	r   io.Reader
	log zerolog.Logger
}

// NewJSONLines returns a Source reading from r.
func NewJSONLines(r io.Reader, log zerolog.Logger) *JSONLines {
	return &JSONLines{r: r, log: log}
}

type scannedLine struct {
	text []byte
	err  error
}

// Stream implements Source. Reads happen on a separate goroutine so that
// cancellation is observed even while the reader blocks.
func (j *JSONLines) Stream(ctx context.Context, emit func(RawEvent) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan scannedLine)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(j.r)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			text := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- scannedLine{text: text}:
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			select {
			case lines <- scannedLine{err: err}:
			case <-ctx.Done():
			}
		}
	}()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if line.err != nil {
				return fmt.Errorf("reading input: %w", line.err)
			}
			n++
			if len(bytes.TrimSpace(line.text)) == 0 {
				continue
			}
			var raw RawEvent
			if err := json.Unmarshal(line.text, &raw); err != nil {
				j.log.Warn().Int("line", n).Err(err).Msg("skipping undecodable input line")
				continue
			}
			if err := emit(raw); err != nil {
				return err
			}
		}
	}
}
