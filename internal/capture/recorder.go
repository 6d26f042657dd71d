package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/interlog/internal/eventlog"
	"github.com/blackwell-systems/interlog/internal/events"
)

// SessionNameLayout is the time layout of generated session names.
const SessionNameLayout = "20060102_150405"

// Options configures a Recorder.
type Options struct {
	OutputDir     string
	SessionName   string // generated from the start time when empty
	Privacy       bool
	FlushInterval time.Duration
	FlushSize     int
	Clock         func() time.Time
	Logger        zerolog.Logger

	// Progress, when set, is called after every flush with the running
	// event count.
	Progress func(total int)
}

// Recorder writes one recording session to disk.
type Recorder struct {
	opts  Options
	paths eventlog.SessionFiles
	meta  events.Metadata
	start time.Time
	total int
}

// NewRecorder validates opts and prepares the output directory.
func NewRecorder(opts Options) (*Recorder, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 500 * time.Millisecond
	}
	if opts.FlushSize <= 0 {
		opts.FlushSize = 10
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	dir, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	opts.OutputDir = dir

	return &Recorder{opts: opts}, nil
}

// Paths returns the session's output files. They are known once Record has
// started.
func (r *Recorder) Paths() eventlog.SessionFiles {
	return r.paths
}

// Record captures events from src until it is exhausted or ctx is cancelled.
// Events still buffered at that point are flushed and the metadata file is
// finalized with end time, duration and event count. Cancellation is a
// normal stop and is not reported as an error.
func (r *Recorder) Record(ctx context.Context, src Source) (*events.Metadata, error) {
	r.start = r.opts.Clock()
	name := r.opts.SessionName
	if name == "" {
		name = r.start.Format(SessionNameLayout)
	}
	r.paths = eventlog.SessionPaths(r.opts.OutputDir, name)
	r.meta = events.Metadata{
		SessionName: name,
		StartTime:   r.start.Format(time.RFC3339Nano),
		PrivacyMode: r.opts.Privacy,
		OutputDir:   r.opts.OutputDir,
	}

	if err := eventlog.WriteMetadata(r.paths.Metadata, &r.meta); err != nil {
		return nil, fmt.Errorf("writing metadata: %w", err)
	}
	if err := eventlog.CreateLog(r.paths.Events); err != nil {
		return nil, fmt.Errorf("creating event log: %w", err)
	}

	r.opts.Logger.Info().
		Str("session", name).
		Bool("privacy", r.opts.Privacy).
		Str("events", r.paths.Events).
		Msg("recording started")

	ch := make(chan events.Event, r.opts.FlushSize*4)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(ch)
		err := src.Stream(gctx, func(raw RawEvent) error {
			ev, ok := r.convert(raw)
			if !ok {
				return nil
			}
			select {
			case ch <- ev:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return r.writeLoop(ch)
	})

	recErr := g.Wait()

	end := r.opts.Clock()
	r.meta.EndTime = end.Format(time.RFC3339Nano)
	r.meta.DurationSeconds = end.Sub(r.start).Seconds()
	r.meta.TotalEvents = r.total
	if err := eventlog.WriteMetadata(r.paths.Metadata, &r.meta); err != nil {
		return &r.meta, errors.Join(recErr, fmt.Errorf("finalizing metadata: %w", err))
	}

	r.opts.Logger.Info().
		Int("events", r.total).
		Float64("duration", r.meta.DurationSeconds).
		Msg("recording stopped")

	return &r.meta, recErr
}

// convert timestamps and redacts raw. Unusable events are logged and dropped.
func (r *Recorder) convert(raw RawEvent) (events.Event, bool) {
	// Releases carry no information beyond the press and would double the
	// keypress count once folded.
	if raw.Type == "key_release" {
		return events.Event{}, false
	}

	var ts float64
	if raw.T != nil {
		ts = *raw.T
	} else {
		ts = r.opts.Clock().Sub(r.start).Seconds()
	}
	ev, err := raw.Event(ts)
	if err != nil {
		r.opts.Logger.Warn().Str("type", raw.Type).Err(err).Msg("dropping input event")
		return events.Event{}, false
	}
	if r.opts.Privacy {
		ev = Redact(ev)
	}
	return ev, true
}

// writeLoop appends events to the log in batches, flushing on a ticker or
// when the batch is full, until ch is closed.
func (r *Recorder) writeLoop(ch <-chan events.Event) error {
	ticker := time.NewTicker(r.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([]events.Event, 0, r.opts.FlushSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := eventlog.AppendFile(r.paths.Events, batch); err != nil {
			return fmt.Errorf("flushing events: %w", err)
		}
		r.total += len(batch)
		r.opts.Logger.Debug().Int("flushed", len(batch)).Int("total", r.total).Msg("flush")
		batch = batch[:0]
		if r.opts.Progress != nil {
			r.opts.Progress(r.total)
		}
		return nil
	}

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return flush()
			}
			batch = append(batch, ev)
			if len(batch) >= r.opts.FlushSize {
				if err := flush(); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}
		}
	}
}

// Redact strips key identities from ev.
func Redact(ev events.Event) events.Event {
	if ev.Kind == events.KeyPress {
		ev.Key = events.RedactedKey
	}
	return ev
}
