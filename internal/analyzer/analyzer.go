package analyzer

import (
	"math"

	"github.com/blackwell-systems/interlog/internal/events"
)

// Analyze runs every detector over evs and assembles the result. It returns
// an error only when cfg is invalid. evs is never modified; unsorted input is
// analyzed through a sorted copy. meta may be nil. skipped is the number of
// input rows the reader rejected and is reported in the summary.
//
// Buckets cover [0, end] where end is the later of the last event and
// meta.DurationSeconds, so the bucket timeline can be longer than the
// reported session_duration_seconds (last event minus first).
func Analyze(evs []events.Event, meta *events.Metadata, skipped int, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sorted := evs
	if !events.IsSorted(evs) {
		sorted = events.SortedCopy(evs)
	}

	rage := DetectRageClicks(sorted, cfg.RageClick)
	pauses := DetectPauses(sorted, cfg.PauseThreshold)
	summary := Summarize(sorted, rage, pauses, skipped)

	buckets, err := Bucketize(sorted, timelineEnd(sorted, meta), cfg.BucketWidth)
	if err != nil {
		return nil, err
	}

	return &Result{
		Summary:    summary,
		Buckets:    buckets,
		RageClicks: rage,
		Pauses:     pauses,
		Metadata:   meta,
		Config:     cfg,
	}, nil
}

// timelineEnd is the end of the session timeline measured from session start:
// the later of the last event and the recorded session duration.
func timelineEnd(sorted []events.Event, meta *events.Metadata) float64 {
	var end float64
	if n := len(sorted); n > 0 {
		end = sorted[n-1].Timestamp
	}
	if meta != nil {
		end = math.Max(end, meta.DurationSeconds)
	}
	return end
}
