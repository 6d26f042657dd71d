// Package eventlog reads and writes session event logs, session metadata and
// analysis output tables.
package eventlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/blackwell-systems/interlog/internal/events"
)

// Columns is the event log header in canonical order.
var Columns = []string{"timestamp", "event_type", "x", "y", "button", "key", "dx", "dy"}

// ErrMissingColumn is returned when the event log header lacks a required
// column.
var ErrMissingColumn = errors.New("missing required column")

// RowError describes a row that was skipped while reading an event log.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ReadResult is the outcome of reading an event log.
type ReadResult struct {
	Events  []events.Event
	Skipped []RowError
}

// ReadFile reads the event log at path.
func ReadFile(path string) (*ReadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Read parses an event log. Columns are located by header name, so extra
// columns and any column order are accepted. Malformed rows are skipped and
// reported in the result rather than failing the read.
func Read(r io.Reader) (*ReadResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return &ReadResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{"timestamp", "event_type"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, required)
		}
	}

	res := &ReadResult{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Skipped = append(res.Skipped, RowError{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		row := rowView{record: record, cols: cols}
		ev, err := row.event()
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Line: line, Reason: err.Error()})
			continue
		}
		res.Events = append(res.Events, ev)
	}

	return res, nil
}

// rowView reads named cells from one CSV record.
type rowView struct {
	record []string
	cols   map[string]int
}

func (r rowView) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// intCell parses a coordinate cell. Decimal values are truncated; values
// that are not finite or do not fit in 32 bits are invalid.
func (r rowView) intCell(name string) (int, bool, error) {
	s := r.get(name)
	if s == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt32+1 || f <= math.MinInt32-1 {
		return 0, false, fmt.Errorf("invalid %s %q", name, s)
	}
	return int(f), true, nil
}

func (r rowView) event() (events.Event, error) {
	var ev events.Event

	ts := r.get("timestamp")
	if ts == "" {
		return ev, errors.New("empty timestamp")
	}
	t, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return ev, fmt.Errorf("invalid timestamp %q", ts)
	}
	ev.Timestamp = t

	kind, err := events.ParseKind(r.get("event_type"))
	if err != nil {
		return ev, err
	}
	ev.Kind = kind

	x, hasX, err := r.intCell("x")
	if err != nil {
		return ev, err
	}
	y, hasY, err := r.intCell("y")
	if err != nil {
		return ev, err
	}
	if hasX && hasY {
		ev.Pos = &events.Position{X: x, Y: y}
	}

	switch kind {
	case events.MouseDown, events.MouseUp:
		ev.Button = r.get("button")
	case events.KeyPress:
		ev.Key = r.get("key")
		ev.Pos = nil
	case events.Scroll:
		dx, _, err := r.intCell("dx")
		if err != nil {
			return ev, err
		}
		dy, _, err := r.intCell("dy")
		if err != nil {
			return ev, err
		}
		ev.Scroll = &events.Delta{DX: dx, DY: dy}
	case events.MouseMove:
	}

	if err := ev.Validate(); err != nil {
		return ev, err
	}
	return ev, nil
}
