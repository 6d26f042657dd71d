package eventlog

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/blackwell-systems/interlog/internal/events"
)

// Writer appends events to an event log in the canonical column order.
type Writer struct {
	cw *csv.Writer
}

// NewWriter returns a Writer for w. When header is true the column header is
// written first.
func NewWriter(w io.Writer, header bool) (*Writer, error) {
	ew := &Writer{cw: csv.NewWriter(w)}
	if header {
		if err := ew.cw.Write(Columns); err != nil {
			return nil, err
		}
	}
	return ew, nil
}

// Write buffers one event row.
func (w *Writer) Write(ev events.Event) error {
	return w.cw.Write(Record(ev))
}

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

// Record renders an event as a row in Columns order. Fields that do not
// apply to the event kind are empty.
func Record(ev events.Event) []string {
	row := make([]string, len(Columns))
	row[0] = formatFloat(ev.Timestamp)
	row[1] = ev.Kind.String()
	if ev.Pos != nil {
		row[2] = strconv.Itoa(ev.Pos.X)
		row[3] = strconv.Itoa(ev.Pos.Y)
	}

	switch ev.Kind {
	case events.MouseDown, events.MouseUp:
		row[4] = ev.Button
	case events.KeyPress:
		row[5] = ev.Key
	case events.Scroll:
		if ev.Scroll != nil {
			row[6] = strconv.Itoa(ev.Scroll.DX)
			row[7] = strconv.Itoa(ev.Scroll.DY)
		}
	case events.MouseMove:
	}
	return row
}

// CreateLog creates (or truncates) an event log file and writes the header.
func CreateLog(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w, err := NewWriter(f, true)
	if err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// AppendFile appends evs to the event log at path.
func AppendFile(path string, evs []events.Event) error {
	if len(evs) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	w, _ := NewWriter(f, false)
	for _, ev := range evs {
		if err := w.Write(ev); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
