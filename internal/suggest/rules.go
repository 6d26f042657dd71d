package suggest

import (
	"fmt"
	"math"

	"github.com/blackwell-systems/interlog/internal/analyzer"
)

// hotspot is a set of rage clicks whose reference positions fall within the
// rage-click radius of the first one.
type hotspot struct {
	X, Y   int
	Bursts int
	Clicks int
	First  float64
}

func groupHotspots(rage []analyzer.RageClick, radius float64) []hotspot {
	var spots []hotspot
	for _, rc := range rage {
		matched := false
		for i := range spots {
			if math.Hypot(float64(rc.X-spots[i].X), float64(rc.Y-spots[i].Y)) <= radius {
				spots[i].Bursts++
				spots[i].Clicks += rc.Clicks
				matched = true
				break
			}
		}
		if !matched {
			spots = append(spots, hotspot{X: rc.X, Y: rc.Y, Bursts: 1, Clicks: rc.Clicks, First: rc.Start})
		}
	}
	return spots
}

// RageClickHotspots reports each screen spot that drew rage clicks. A spot
// hit by more than one burst is critical.
func RageClickHotspots(ctx *AnalysisContext) []Suggestion {
	res := ctx.Result
	var suggestions []Suggestion
	for _, spot := range groupHotspots(res.RageClicks, res.Config.RageClick.RadiusPx) {
		priority := PriorityHigh
		if spot.Bursts > 1 {
			priority = PriorityCritical
		}
		frequency := 1.0
		if res.Summary.TotalClicks > 0 {
			frequency = float64(spot.Clicks) / float64(res.Summary.TotalClicks)
		}
		suggestions = append(suggestions, Suggestion{
			Category: "frustration",
			Priority: priority,
			Title:    fmt.Sprintf("Rage clicks at (%d, %d)", spot.X, spot.Y),
			Description: fmt.Sprintf(
				"%d burst(s) totalling %d clicks, first at %.1fs. "+
					"Check whether the element at this spot looks clickable but does not respond, "+
					"or responds too slowly to register as a click.",
				spot.Bursts, spot.Clicks, spot.First,
			),
			ImpactScore: ComputeImpact(spot.Bursts, frequency, 5.0, 1.0),
		})
	}
	return suggestions
}

// LongPauses reports the longest pause when it is at least three times the
// significant-pause threshold.
func LongPauses(ctx *AnalysisContext) []Suggestion {
	res := ctx.Result
	threshold := res.Config.PauseThreshold
	if threshold <= 0 || res.Pauses.Longest < 3*threshold {
		return nil
	}
	frequency := 1.0
	if d := res.Summary.SessionDurationSeconds; d > 0 {
		frequency = math.Min(res.Pauses.Longest/d, 1)
	}
	return []Suggestion{{
		Category: "hesitation",
		Priority: PriorityMedium,
		Title:    fmt.Sprintf("Long pause of %.1fs at %.1fs", res.Pauses.Longest, res.Pauses.LongestAt),
		Description: fmt.Sprintf(
			"The participant was idle for %.1fs, %.0fx the %.1fs pause threshold. "+
				"Review what was on screen just before this point for missing guidance or unclear next steps.",
			res.Pauses.Longest, res.Pauses.Longest/threshold, threshold,
		),
		ImpactScore: ComputeImpact(1, frequency, 3.0, 1.0),
	}}
}

// FrequentHesitation reports sessions with two or more significant pauses
// per minute.
func FrequentHesitation(ctx *AnalysisContext) []Suggestion {
	res := ctx.Result
	d := res.Summary.SessionDurationSeconds
	if d <= 0 || res.Pauses.Gaps == 0 {
		return nil
	}
	perMinute := float64(res.Pauses.Significant) / (d / 60)
	if perMinute < 2 {
		return nil
	}
	return []Suggestion{{
		Category: "hesitation",
		Priority: PriorityMedium,
		Title:    "Frequent hesitation",
		Description: fmt.Sprintf(
			"%d significant pauses (%.1f per minute). "+
				"Repeated stops suggest the task flow is hard to follow.",
			res.Pauses.Significant, perMinute,
		),
		ImpactScore: ComputeImpact(res.Pauses.Significant, float64(res.Pauses.Significant)/float64(res.Pauses.Gaps), 2.0, 1.0),
	}}
}

// ActivityBursts reports the busiest intensity bucket when it holds at least
// twice the mean interactions of the session.
func ActivityBursts(ctx *AnalysisContext) []Suggestion {
	buckets := ctx.Result.Buckets
	if len(buckets) < 3 {
		return nil
	}
	total := 0
	peak := buckets[0]
	for _, b := range buckets {
		total += b.TotalInteractions
		if b.TotalInteractions > peak.TotalInteractions {
			peak = b
		}
	}
	mean := float64(total) / float64(len(buckets))
	if peak.TotalInteractions < 5 || float64(peak.TotalInteractions) < 2*mean {
		return nil
	}
	return []Suggestion{{
		Category: "intensity",
		Priority: PriorityLow,
		Title:    fmt.Sprintf("Activity spike at %.0fs-%.0fs", peak.TimeStart, peak.TimeEnd),
		Description: fmt.Sprintf(
			"%d interactions (%d clicks, %d scrolls, %d keypresses) against a mean of %.1f per bucket. "+
				"Bursts often mark searching or retrying.",
			peak.TotalInteractions, peak.Clicks, peak.Scrolls, peak.Keypresses, mean,
		),
		ImpactScore: ComputeImpact(peak.TotalInteractions, 1/float64(len(buckets)), 1.0, 2.0),
	}}
}

// MalformedRows reports rows dropped while reading the log. More than 10% of
// rows dropped is high priority since the metrics may be unreliable.
func MalformedRows(ctx *AnalysisContext) []Suggestion {
	s := ctx.Result.Summary
	if s.SkippedRows == 0 {
		return nil
	}
	share := float64(s.SkippedRows) / float64(s.SkippedRows+s.TotalEvents)
	priority := PriorityLow
	if share > 0.1 {
		priority = PriorityHigh
	}
	return []Suggestion{{
		Category: "data",
		Priority: priority,
		Title:    fmt.Sprintf("%d malformed row(s) skipped", s.SkippedRows),
		Description: fmt.Sprintf(
			"%.0f%% of the rows in %s could not be parsed and were left out of every metric. "+
				"Run analyze --verbose to see the line numbers.",
			share*100, ctx.Source,
		),
		ImpactScore: ComputeImpact(s.SkippedRows, share, 1.0, 1.0),
	}}
}

// IncompleteSession reports a session whose metadata was never finalized.
func IncompleteSession(ctx *AnalysisContext) []Suggestion {
	meta := ctx.Result.Metadata
	if meta == nil || meta.EndTime != "" {
		return nil
	}
	return []Suggestion{{
		Category:    "data",
		Priority:    PriorityLow,
		Title:       "Session did not finish cleanly",
		Description: fmt.Sprintf("Metadata for %q has no end time. The recorder may have been killed before flushing the last events.", meta.SessionName),
		ImpactScore: ComputeImpact(1, 1.0, 1.0, 2.0),
	}}
}
