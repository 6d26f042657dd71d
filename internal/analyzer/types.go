// Package analyzer computes session statistics from interaction event logs:
// rage-click incidents, pauses, time-bucketed intensity and a fixed summary
// metric set.
package analyzer

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/interlog/internal/events"
)

// ErrInvalidConfig is returned (wrapped) when an analysis configuration value
// is out of range. It is the only condition that stops an analysis run.
var ErrInvalidConfig = errors.New("invalid analysis config")

// Config controls an analysis run.
type Config struct {
	// BucketWidth is the intensity window width in seconds.
	BucketWidth float64 `json:"bucket_width"`

	// RageClick holds the clustering thresholds for rage-click detection.
	RageClick RageClickConfig `json:"rage_click"`

	// PauseThreshold is the gap in seconds above which a pause counts as
	// significant. Zero disables the count.
	PauseThreshold float64 `json:"pause_threshold"`
}

// RageClickConfig holds rage-click clustering thresholds.
type RageClickConfig struct {
	// TimeWindow is the maximum gap in seconds between a click and the
	// previous click of the same cluster.
	TimeWindow float64 `json:"time_window"`

	// RadiusPx is the maximum Euclidean distance in pixels from the first
	// click of the cluster.
	RadiusPx float64 `json:"radius_px"`

	// MinClicks is the cluster size at which a cluster becomes an incident.
	MinClicks int `json:"min_clicks"`
}

// Default analysis parameters.
const (
	DefaultBucketWidth    = 5.0
	DefaultRageWindow     = 1.0
	DefaultRageRadiusPx   = 30.0
	DefaultRageMinClicks  = 3
	DefaultPauseThreshold = 2.0
)

// DefaultConfig returns the analysis configuration used when nothing is
// overridden.
func DefaultConfig() Config {
	return Config{
		BucketWidth: DefaultBucketWidth,
		RageClick: RageClickConfig{
			TimeWindow: DefaultRageWindow,
			RadiusPx:   DefaultRageRadiusPx,
			MinClicks:  DefaultRageMinClicks,
		},
		PauseThreshold: DefaultPauseThreshold,
	}
}

// Validate reports the first out-of-range value, wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case !(c.BucketWidth > 0):
		return fmt.Errorf("%w: bucket width must be positive, got %g", ErrInvalidConfig, c.BucketWidth)
	case !(c.RageClick.TimeWindow > 0):
		return fmt.Errorf("%w: rage-click time window must be positive, got %g", ErrInvalidConfig, c.RageClick.TimeWindow)
	case !(c.RageClick.RadiusPx >= 0):
		return fmt.Errorf("%w: rage-click radius must not be negative, got %g", ErrInvalidConfig, c.RageClick.RadiusPx)
	case c.RageClick.MinClicks < 2:
		return fmt.Errorf("%w: rage-click minimum must be at least 2, got %d", ErrInvalidConfig, c.RageClick.MinClicks)
	case !(c.PauseThreshold >= 0):
		return fmt.Errorf("%w: pause threshold must not be negative, got %g", ErrInvalidConfig, c.PauseThreshold)
	}
	return nil
}

// RageClick is one detected burst of clicks at the same spot.
type RageClick struct {
	// Start and End are the timestamps of the first and last click.
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	// X and Y are the reference position (the first click).
	X int `json:"x"`
	Y int `json:"y"`

	// Clicks is the number of clicks in the burst.
	Clicks int `json:"clicks"`
}

// PauseStats summarizes gaps between consecutive events.
type PauseStats struct {
	Longest     float64 `json:"longest"`
	LongestAt   float64 `json:"longest_at"`
	Average     float64 `json:"average"`
	Significant int     `json:"significant"`
	Gaps        int     `json:"gaps"`
}

// Bucket counts interactions within [TimeStart, TimeEnd).
type Bucket struct {
	TimeStart         float64 `json:"time_start"`
	TimeEnd           float64 `json:"time_end"`
	TotalInteractions int     `json:"total_interactions"`
	Clicks            int     `json:"clicks"`
	Scrolls           int     `json:"scrolls"`
	Keypresses        int     `json:"keypresses"`
}

// Summary is the fixed session metric set.
type Summary struct {
	SessionDurationSeconds float64 `json:"session_duration_seconds"`
	TotalEvents            int     `json:"total_events"`
	TotalInteractions      int     `json:"total_interactions"`
	TotalMouseMoves        int     `json:"total_mouse_moves"`
	TotalClicks            int     `json:"total_clicks"`
	TotalMouseUps          int     `json:"total_mouse_ups"`
	TotalScrolls           int     `json:"total_scrolls"`
	TotalKeypresses        int     `json:"total_keypresses"`
	ClicksPerMinute        float64 `json:"clicks_per_minute"`
	ActionsPerMinute       float64 `json:"actions_per_minute"`
	KeypressesPerMinute    float64 `json:"keypresses_per_minute"`
	RageClicksDetected     int     `json:"rage_clicks_detected"`
	LongestPauseSeconds    float64 `json:"longest_pause_seconds"`
	AveragePauseSeconds    float64 `json:"average_pause_seconds"`
	SignificantPauses      int     `json:"significant_pauses"`
	TotalScrollDistance    int     `json:"total_scroll_distance"`
	SkippedRows            int     `json:"skipped_rows"`
}

// Metric is one named summary value in output order.
type Metric struct {
	Name  string
	Value string
	// Number holds the numeric value; it is zero for text metrics.
	Number float64
	// Text is true for metrics that have no numeric value.
	Text bool
}

// Result is everything produced by one analysis run.
type Result struct {
	Summary    Summary          `json:"summary"`
	Buckets    []Bucket         `json:"intensity"`
	RageClicks []RageClick      `json:"rage_clicks"`
	Pauses     PauseStats       `json:"pauses"`
	Metadata   *events.Metadata `json:"metadata,omitempty"`
	Config     Config           `json:"config"`
}
