// Package store provides SQLite persistence for interlog analysis history.
package store

import "time"

// Analysis is one stored analysis run of an event log.
type Analysis struct {
	ID          string    `json:"id"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
	Source      string    `json:"source"`
	SessionName string    `json:"session_name,omitempty"`
	BucketWidth float64   `json:"bucket_width"`
	Duration    float64   `json:"duration_seconds"`
	TotalEvents int       `json:"total_events"`
	RageClicks  int       `json:"rage_clicks"`
	SkippedRows int       `json:"skipped_rows"`
}

// MetricRow is a stored numeric summary metric.
type MetricRow struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// AnalysisDiff is the comparison between two stored analyses.
type AnalysisDiff struct {
	Previous *Analysis     `json:"previous"`
	Current  *Analysis     `json:"current"`
	Deltas   []MetricDelta `json:"deltas"`
}

// MetricDelta is the change in a single metric between two analyses.
type MetricDelta struct {
	Name      string  `json:"name"`
	Previous  float64 `json:"previous"`
	Current   float64 `json:"current"`
	Delta     float64 `json:"delta"`
	Direction string  `json:"direction"` // "improved", "regressed", "changed", "unchanged"
}
