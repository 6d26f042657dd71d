package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blackwell-systems/interlog/internal/analyzer"
	"github.com/blackwell-systems/interlog/internal/eventlog"
	"github.com/blackwell-systems/interlog/internal/events"
)

func clickAt(t float64, x, y int) events.Event {
	return events.Event{Timestamp: t, Kind: events.MouseDown, Pos: &events.Position{X: x, Y: y}, Button: "left"}
}

func newLog(t *testing.T, evs ...events.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "live_events.csv")
	if err := eventlog.CreateLog(path); err != nil {
		t.Fatalf("CreateLog: %v", err)
	}
	if err := eventlog.AppendFile(path, evs); err != nil {
		t.Fatalf("AppendFile: %v", err)
	}
	return path
}

func TestSnapshot_MissingFile(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope.csv"), time.Second, analyzer.DefaultConfig(), nil)
	if _, err := w.Snapshot(); err == nil {
		t.Error("expected error for missing event log")
	}

	alerts := w.Check()
	if len(alerts) != 1 || alerts[0].Title != "Snapshot failed" {
		t.Errorf("expected snapshot failure alert, got %v", alertTitles(alerts))
	}
}

func TestSnapshot_AnalyzesLog(t *testing.T) {
	path := newLog(t,
		clickAt(1.0, 10, 10),
		clickAt(1.2, 10, 10),
		clickAt(1.4, 10, 10),
		events.Event{Timestamp: 3, Kind: events.KeyPress, Key: "a"},
	)
	w := New(path, time.Second, analyzer.DefaultConfig(), nil)

	state, err := w.Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Summary.TotalEvents != 4 {
		t.Errorf("TotalEvents = %d, want 4", state.Summary.TotalEvents)
	}
	if len(state.RageClicks) != 1 {
		t.Errorf("RageClicks = %d, want 1", len(state.RageClicks))
	}
	if state.LastEvent != 3 {
		t.Errorf("LastEvent = %g, want 3", state.LastEvent)
	}
	if state.Finished {
		t.Error("expected unfinished session without metadata")
	}
}

func TestSnapshot_ReadsMetadata(t *testing.T) {
	path := newLog(t, events.Event{Timestamp: 1, Kind: events.KeyPress, Key: "a"})
	meta := &events.Metadata{SessionName: "live", StartTime: "2026-01-01T10:00:00Z", EndTime: "2026-01-01T10:01:00Z"}
	if err := eventlog.WriteMetadata(eventlog.MetadataPathFor(path), meta); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}

	w := New(path, time.Second, analyzer.DefaultConfig(), nil)
	state, err := w.Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.Finished {
		t.Error("expected finished session when metadata has an end time")
	}
}

func TestCheck_NewRageClickAfterAppend(t *testing.T) {
	path := newLog(t, clickAt(0.5, 200, 200))
	w := New(path, time.Second, analyzer.DefaultConfig(), nil)

	if alerts := w.Check(); len(alerts) != 0 {
		t.Fatalf("expected no alerts on first check, got %v", alertTitles(alerts))
	}

	if err := eventlog.AppendFile(path, []events.Event{
		clickAt(1.5, 40, 40),
		clickAt(1.8, 42, 41),
		clickAt(2.1, 41, 39),
	}); err != nil {
		t.Fatalf("AppendFile: %v", err)
	}

	alerts := w.Check()
	if len(alerts) != 1 || alerts[0].Level != "critical" {
		t.Fatalf("expected one critical alert, got %v", alertTitles(alerts))
	}
	if w.Previous().Summary.TotalClicks != 4 {
		t.Errorf("TotalClicks = %d, want 4", w.Previous().Summary.TotalClicks)
	}

	// Nothing changed: no repeated alert.
	if again := w.Check(); len(again) != 0 {
		t.Errorf("expected no alerts, got %v", alertTitles(again))
	}
}

func TestCheck_LongPauseDeduplicated(t *testing.T) {
	path := newLog(t, events.Event{Timestamp: 1, Kind: events.KeyPress, Key: "a"})
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	w := New(path, time.Second, analyzer.DefaultConfig(), nil)
	w.LongPause = 30
	w.now = func() time.Time { return info.ModTime().Add(45 * time.Second) }

	alerts := w.Check()
	if len(alerts) != 1 || alerts[0].Title != "Long pause" {
		t.Fatalf("expected long pause alert, got %v", alertTitles(alerts))
	}
	if again := w.Check(); len(again) != 0 {
		t.Errorf("expected duplicate to be suppressed, got %v", alertTitles(again))
	}
}

func TestCheck_LongPauseAlertsOncePerPause(t *testing.T) {
	path := newLog(t, events.Event{Timestamp: 1, Kind: events.KeyPress, Key: "a"})
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	w := New(path, time.Second, analyzer.DefaultConfig(), nil)
	w.LongPause = 10
	elapsed := time.Duration(0)
	w.now = func() time.Time { return info.ModTime().Add(elapsed) }

	var total []Alert
	for tick := 1; tick <= 4; tick++ {
		elapsed = time.Duration(tick) * 15 * time.Second
		total = append(total, w.Check()...)
	}
	if len(total) != 1 {
		t.Fatalf("expected one alert across 4 ticks, got %v", alertTitles(total))
	}
	if total[0].Message != "No new events after 1.00s (threshold 10s)" {
		t.Errorf("message = %q", total[0].Message)
	}

	// New events end the pause; the next one alerts again.
	if err := eventlog.AppendFile(path, []events.Event{{Timestamp: 2, Kind: events.KeyPress, Key: "b"}}); err != nil {
		t.Fatalf("AppendFile: %v", err)
	}
	info, err = os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	elapsed = 0
	if alerts := w.Check(); len(alerts) != 0 {
		t.Fatalf("expected no alert right after new events, got %v", alertTitles(alerts))
	}
	elapsed = 20 * time.Second
	alerts := w.Check()
	if len(alerts) != 1 || alerts[0].Message != "No new events after 2.00s (threshold 10s)" {
		t.Errorf("expected alert for the second pause, got %+v", alerts)
	}
}

func TestCheck_LongPauseDisabled(t *testing.T) {
	path := newLog(t, events.Event{Timestamp: 1, Kind: events.KeyPress, Key: "a"})
	w := New(path, time.Second, analyzer.DefaultConfig(), nil)
	w.now = func() time.Time { return time.Now().Add(time.Hour) }

	if alerts := w.Check(); len(alerts) != 0 {
		t.Errorf("expected no alerts, got %v", alertTitles(alerts))
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	path := newLog(t, events.Event{Timestamp: 1, Kind: events.KeyPress, Key: "a"})
	w := New(path, 10*time.Millisecond, analyzer.DefaultConfig(), func(Alert) {})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run returned %v, want deadline exceeded", err)
	}
	if w.Previous() == nil {
		t.Error("expected initial snapshot to be recorded")
	}
}
