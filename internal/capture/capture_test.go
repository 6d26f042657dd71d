package capture

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/interlog/internal/eventlog"
	"github.com/blackwell-systems/interlog/internal/events"
)

// stepClock advances by one second on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(time.Second)
	return t
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func sliceSource(raws ...RawEvent) Source {
	return SourceFunc(func(ctx context.Context, emit func(RawEvent) error) error {
		for _, r := range raws {
			if err := emit(r); err != nil {
				return err
			}
		}
		return nil
	})
}

func TestRawEvent_Event(t *testing.T) {
	ev, err := RawEvent{Type: "mouse_down", X: intp(10), Y: intp(20), Button: "left"}.Event(1.5)
	require.NoError(t, err)
	assert.Equal(t, events.MouseDown, ev.Kind)
	assert.Equal(t, &events.Position{X: 10, Y: 20}, ev.Pos)
	assert.Equal(t, "left", ev.Button)
	assert.Equal(t, 1.5, ev.Timestamp)

	ev, err = RawEvent{Type: "scroll", X: intp(1), Y: intp(2), DY: -3}.Event(2)
	require.NoError(t, err)
	assert.Equal(t, &events.Delta{DX: 0, DY: -3}, ev.Scroll)

	ev, err = RawEvent{Type: "key_press", Key: "q"}.Event(3)
	require.NoError(t, err)
	assert.Nil(t, ev.Pos)
	assert.Equal(t, "q", ev.Key)

	_, err = RawEvent{Type: "mouse_move", X: intp(1)}.Event(1)
	assert.Error(t, err, "pointer event without y")

	_, err = RawEvent{Type: "drag"}.Event(1)
	assert.Error(t, err)

	_, err = RawEvent{Type: "key_press"}.Event(-1)
	assert.Error(t, err, "negative timestamp")
}

func TestJSONLines_Stream(t *testing.T) {
	input := `{"type":"mouse_move","x":1,"y":2}

not json
{"type":"key_press","key":"a","t":0.25}
`
	var got []RawEvent
	src := NewJSONLines(strings.NewReader(input), zerolog.Nop())
	err := src.Stream(context.Background(), func(r RawEvent) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "mouse_move", got[0].Type)
	require.NotNil(t, got[1].T)
	assert.Equal(t, 0.25, *got[1].T)
}

func TestJSONLines_EmitErrorStops(t *testing.T) {
	stop := errors.New("stop")
	src := NewJSONLines(strings.NewReader("{\"type\":\"key_press\"}\n{\"type\":\"key_press\"}\n"), zerolog.Nop())

	calls := 0
	err := src.Stream(context.Background(), func(RawEvent) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestJSONLines_CancelWhileBlocked(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewJSONLines(pr, zerolog.Nop()).Stream(ctx, func(RawEvent) error { return nil })
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after cancel")
	}
}

func TestRecorder_WritesLogAndMetadata(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewRecorder(Options{
		OutputDir:   dir,
		SessionName: "p01",
		FlushSize:   2,
		Clock:       newStepClock().Now,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)

	meta, err := rec.Record(context.Background(), sliceSource(
		RawEvent{Type: "mouse_move", X: intp(1), Y: intp(1), T: floatp(0.1)},
		RawEvent{Type: "mouse_down", X: intp(5), Y: intp(5), Button: "left", T: floatp(0.2)},
		RawEvent{Type: "key_release", Key: "a", T: floatp(0.25)},
		RawEvent{Type: "drag", T: floatp(0.27)},
		RawEvent{Type: "key_press", Key: "a", T: floatp(0.3)},
	))
	require.NoError(t, err)

	paths := rec.Paths()
	assert.Equal(t, filepath.Join(dir, "p01_events.csv"), paths.Events)

	read, err := eventlog.ReadFile(paths.Events)
	require.NoError(t, err)
	require.Len(t, read.Events, 3)
	assert.Equal(t, "a", read.Events[2].Key)

	assert.Equal(t, 3, meta.TotalEvents)
	assert.Equal(t, 1.0, meta.DurationSeconds)
	assert.Equal(t, "2026-03-01T10:00:00Z", meta.StartTime)
	assert.Equal(t, "2026-03-01T10:00:01Z", meta.EndTime)

	onDisk, err := eventlog.ReadMetadata(paths.Metadata)
	require.NoError(t, err)
	assert.Equal(t, meta, onDisk)
}

func TestRecorder_PrivacyRedactsKeys(t *testing.T) {
	rec, err := NewRecorder(Options{
		OutputDir:   t.TempDir(),
		SessionName: "private",
		Privacy:     true,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)

	meta, err := rec.Record(context.Background(), sliceSource(
		RawEvent{Type: "key_press", Key: "p", T: floatp(0.1)},
		RawEvent{Type: "mouse_down", X: intp(1), Y: intp(1), Button: "left", T: floatp(0.2)},
	))
	require.NoError(t, err)
	assert.True(t, meta.PrivacyMode)

	read, err := eventlog.ReadFile(rec.Paths().Events)
	require.NoError(t, err)
	require.Len(t, read.Events, 2)
	assert.Equal(t, events.RedactedKey, read.Events[0].Key)
	assert.Equal(t, "left", read.Events[1].Button)
}

func TestRecorder_CancelFlushesBufferedEvents(t *testing.T) {
	var flushed []int
	rec, err := NewRecorder(Options{
		OutputDir:     t.TempDir(),
		SessionName:   "cancelled",
		FlushSize:     100,
		FlushInterval: time.Hour,
		Logger:        zerolog.Nop(),
		Progress:      func(total int) { flushed = append(flushed, total) },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	src := SourceFunc(func(ctx context.Context, emit func(RawEvent) error) error {
		for i := 0; i < 3; i++ {
			if err := emit(RawEvent{Type: "key_press", Key: "x"}); err != nil {
				return err
			}
		}
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})

	meta, err := rec.Record(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 3, meta.TotalEvents)
	assert.Equal(t, []int{3}, flushed)

	read, err := eventlog.ReadFile(rec.Paths().Events)
	require.NoError(t, err)
	assert.Len(t, read.Events, 3)
}

func TestRecorder_SourceErrorReported(t *testing.T) {
	boom := errors.New("device lost")
	rec, err := NewRecorder(Options{OutputDir: t.TempDir(), SessionName: "broken", Logger: zerolog.Nop()})
	require.NoError(t, err)

	meta, err := rec.Record(context.Background(), SourceFunc(func(context.Context, func(RawEvent) error) error {
		return boom
	}))
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, meta)
	assert.NotEmpty(t, meta.EndTime, "metadata is finalized even on failure")
}

func TestRecorder_GeneratedSessionName(t *testing.T) {
	rec, err := NewRecorder(Options{OutputDir: t.TempDir(), Clock: newStepClock().Now, Logger: zerolog.Nop()})
	require.NoError(t, err)

	meta, err := rec.Record(context.Background(), sliceSource())
	require.NoError(t, err)
	assert.Equal(t, "20260301_100000", meta.SessionName)
	assert.Equal(t, 0, meta.TotalEvents)
}

func TestRedact(t *testing.T) {
	key := Redact(events.Event{Kind: events.KeyPress, Key: "s"})
	assert.Equal(t, events.RedactedKey, key.Key)

	click := Redact(events.Event{Kind: events.MouseDown, Button: "left", Pos: &events.Position{}})
	assert.Equal(t, "left", click.Button)
}
