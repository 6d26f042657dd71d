package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/blackwell-systems/interlog/internal/analyzer"
	"github.com/blackwell-systems/interlog/internal/eventlog"
	"github.com/blackwell-systems/interlog/internal/events"
	"github.com/blackwell-systems/interlog/internal/store"
)

// Options configures the tools exposed by a Server.
type Options struct {
	Version  string
	Analysis analyzer.Config // defaults for analyze_session
	DBPath   string          // history database for list_analyses and compare_latest
}

// NewServer constructs a Server with the interlog tools registered.
func NewServer(opts Options) *Server {
	s := &Server{name: "interlog", version: opts.Version}
	t := &tools{opts: opts}
	s.registerTool(toolDef{
		Name:        "analyze_session",
		Description: "Analyze an interaction event log (<session>_events.csv): summary metrics, rage clicks, pauses and intensity buckets.",
		InputSchema: analyzeSchema,
		Handler:     t.analyzeSession,
	})
	s.registerTool(toolDef{
		Name:        "list_analyses",
		Description: "Most recent stored analyses, newest first.",
		InputSchema: limitSchema,
		Handler:     t.listAnalyses,
	})
	s.registerTool(toolDef{
		Name:        "compare_latest",
		Description: "Metric changes between the two most recent stored analyses.",
		InputSchema: noArgsSchema,
		Handler:     t.compareLatest,
	})
	return s
}

var (
	noArgsSchema  = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	limitSchema   = json.RawMessage(`{"type":"object","properties":{"limit":{"type":"integer","description":"Number of analyses to return (default 10)"}},"additionalProperties":false}`)
	analyzeSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"path":{"type":"string","description":"Path to the events CSV"},` +
		`"bucket_width":{"type":"number","description":"Intensity bucket width in seconds"},` +
		`"rage_window":{"type":"number","description":"Max seconds between clicks of a rage click"},` +
		`"rage_radius":{"type":"number","description":"Max pixels from the first click of a rage click"},` +
		`"rage_min":{"type":"integer","description":"Min clicks in a rage click"},` +
		`"pause_threshold":{"type":"number","description":"Gap in seconds counted as a significant pause"}` +
		`},"required":["path"],"additionalProperties":false}`)
)

type tools struct {
	opts Options
}

type analyzeArgs struct {
	Path           string   `json:"path"`
	BucketWidth    *float64 `json:"bucket_width"`
	RageWindow     *float64 `json:"rage_window"`
	RageRadius     *float64 `json:"rage_radius"`
	RageMin        *int     `json:"rage_min"`
	PauseThreshold *float64 `json:"pause_threshold"`
}

func (a analyzeArgs) config(base analyzer.Config) analyzer.Config {
	if a.BucketWidth != nil {
		base.BucketWidth = *a.BucketWidth
	}
	if a.RageWindow != nil {
		base.RageClick.TimeWindow = *a.RageWindow
	}
	if a.RageRadius != nil {
		base.RageClick.RadiusPx = *a.RageRadius
	}
	if a.RageMin != nil {
		base.RageClick.MinClicks = *a.RageMin
	}
	if a.PauseThreshold != nil {
		base.PauseThreshold = *a.PauseThreshold
	}
	return base
}

func (t *tools) analyzeSession(_ context.Context, raw json.RawMessage) (any, error) {
	var args analyzeArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Path == "" {
		return nil, errors.New("path is required")
	}

	read, err := eventlog.ReadFile(args.Path)
	if err != nil {
		return nil, err
	}
	var meta *events.Metadata
	if mp := eventlog.MetadataPathFor(args.Path); mp != "" {
		meta, _ = eventlog.ReadMetadata(mp)
	}

	res, err := analyzer.Analyze(read.Events, meta, len(read.Skipped), args.config(t.opts.Analysis))
	if err != nil {
		return nil, err
	}
	return eventlog.NewDocument(filepath.Base(args.Path), res, read.Skipped), nil
}

// ListResult is the list_analyses payload.
type ListResult struct {
	Analyses []store.Analysis `json:"analyses"`
}

func (t *tools) listAnalyses(_ context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Limit <= 0 {
		args.Limit = 10
	}

	db, err := t.openDB()
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	list, err := db.ListAnalyses(args.Limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []store.Analysis{}
	}
	return ListResult{Analyses: list}, nil
}

func (t *tools) compareLatest(_ context.Context, _ json.RawMessage) (any, error) {
	db, err := t.openDB()
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	diff, err := db.CompareLatest()
	if err != nil {
		return nil, err
	}
	if diff == nil {
		return nil, errors.New("need at least two stored analyses to compare")
	}
	return diff, nil
}

func (t *tools) openDB() (*store.DB, error) {
	if t.opts.DBPath == "" {
		return nil, errors.New("no history database configured")
	}
	db, err := store.Open(t.opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	return db, nil
}
