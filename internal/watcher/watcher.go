// Package watcher provides live monitoring of an interaction event log while
// it is being recorded, re-analyzing it on an interval and emitting alerts
// when rage clicks, long pauses or malformed rows appear.
package watcher

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/interlog/internal/analyzer"
	"github.com/blackwell-systems/interlog/internal/eventlog"
	"github.com/blackwell-systems/interlog/internal/events"
)

// WatchState captures a point-in-time analysis of the watched event log.
type WatchState struct {
	Timestamp  time.Time
	ModTime    time.Time
	Size       int64
	Summary    analyzer.Summary
	RageClicks []analyzer.RageClick
	LastEvent  float64 // seconds since session start of the newest event
	Finished   bool    // metadata carries an end time

	idle float64 // seconds since the log last grew
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// Watcher re-analyzes an event log at a regular interval and emits alerts
// when notable changes are detected.
type Watcher struct {
	eventsPath    string
	interval      time.Duration
	cfg           analyzer.Config
	previous      *WatchState
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts
	now           func() time.Time

	// LongPause is the idle time in seconds after which a pause alert fires;
	// 0 disables pause alerts.
	LongPause float64
}

// New creates a Watcher for the given event log.
func New(eventsPath string, interval time.Duration, cfg analyzer.Config, alertFn func(Alert)) *Watcher {
	return &Watcher{
		eventsPath:    eventsPath,
		interval:      interval,
		cfg:           cfg,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
		now:           time.Now,
	}
}

// Previous returns the most recent state, or nil before the first snapshot.
func (w *Watcher) Previous() *WatchState {
	return w.previous
}

// Run starts the watch loop. It takes an initial snapshot, then checks at
// every interval. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	initial, err := w.Snapshot()
	if err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	w.previous = initial

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, a := range w.Check() {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// Check performs a single check cycle: takes a new snapshot, compares against
// the previous state, updates the previous state, and returns any alerts.
// Identical alerts are suppressed until the underlying data changes.
func (w *Watcher) Check() []Alert {
	curr, err := w.Snapshot()
	if err != nil {
		return []Alert{{
			Level:   "warning",
			Title:   "Snapshot failed",
			Message: fmt.Sprintf("Could not analyze %s: %v", w.eventsPath, err),
			Time:    w.now(),
		}}
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr)
	}

	// The message names the last event rather than the idle time, so one
	// pause alerts once however many ticks it lasts.
	if w.LongPause > 0 && !curr.Finished && curr.Summary.TotalEvents > 0 && curr.idle >= w.LongPause {
		raw = append(raw, Alert{
			Level:   "warning",
			Title:   "Long pause",
			Message: fmt.Sprintf("No new events after %.2fs (threshold %.0fs)", curr.LastEvent, w.LongPause),
			Time:    curr.Timestamp,
		})
	}

	// Deduplicate: suppress alerts with the same title+message as last cycle.
	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

// Snapshot analyzes the current contents of the event log. When the file has
// not changed since the previous snapshot the previous analysis is reused.
func (w *Watcher) Snapshot() (*WatchState, error) {
	now := w.now()
	info, err := os.Stat(w.eventsPath)
	if err != nil {
		return nil, err
	}

	if p := w.previous; p != nil && p.ModTime.Equal(info.ModTime()) && p.Size == info.Size() {
		state := *p
		state.Timestamp = now
		state.idle = now.Sub(info.ModTime()).Seconds()
		return &state, nil
	}

	read, err := eventlog.ReadFile(w.eventsPath)
	if err != nil {
		return nil, err
	}

	var meta *events.Metadata
	if mp := eventlog.MetadataPathFor(w.eventsPath); mp != "" {
		// Metadata is rewritten while recording; a failed read is not fatal.
		meta, _ = eventlog.ReadMetadata(mp)
	}

	res, err := analyzer.Analyze(read.Events, meta, len(read.Skipped), w.cfg)
	if err != nil {
		return nil, err
	}

	state := &WatchState{
		Timestamp:  now,
		ModTime:    info.ModTime(),
		Size:       info.Size(),
		Summary:    res.Summary,
		RageClicks: res.RageClicks,
		Finished:   meta != nil && meta.EndTime != "",
		idle:       now.Sub(info.ModTime()).Seconds(),
	}
	for _, ev := range read.Events {
		if ev.Timestamp > state.LastEvent {
			state.LastEvent = ev.Timestamp
		}
	}
	return state, nil
}
