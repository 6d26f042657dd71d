package analyzer

import (
	"fmt"
	"math"
	"strconv"

	"github.com/blackwell-systems/interlog/internal/events"
)

// Summarize assembles the session metric set. evs must be sorted; rage and
// pauses are the detector outputs for the same sequence.
func Summarize(evs []events.Event, rage []RageClick, pauses PauseStats, skipped int) Summary {
	s := Summary{
		TotalEvents:         len(evs),
		RageClicksDetected:  len(rage),
		LongestPauseSeconds: pauses.Longest,
		AveragePauseSeconds: pauses.Average,
		SignificantPauses:   pauses.Significant,
		SkippedRows:         skipped,
	}

	for _, ev := range evs {
		switch ev.Kind {
		case events.MouseMove:
			s.TotalMouseMoves++
		case events.MouseDown:
			s.TotalClicks++
		case events.MouseUp:
			s.TotalMouseUps++
		case events.Scroll:
			s.TotalScrolls++
			if ev.Scroll != nil {
				s.TotalScrollDistance += absInt(ev.Scroll.DY)
			}
		case events.KeyPress:
			s.TotalKeypresses++
		}
	}
	s.TotalInteractions = s.TotalEvents - s.TotalMouseMoves

	if len(evs) > 0 {
		s.SessionDurationSeconds = evs[len(evs)-1].Timestamp - evs[0].Timestamp
	}

	s.ClicksPerMinute = perMinute(s.TotalClicks, s.SessionDurationSeconds)
	s.ActionsPerMinute = perMinute(s.TotalInteractions, s.SessionDurationSeconds)
	s.KeypressesPerMinute = perMinute(s.TotalKeypresses, s.SessionDurationSeconds)

	return s
}

// Metrics returns the summary as ordered name/value pairs. Rates and pauses
// are rounded the same way in every output format.
func (s Summary) Metrics() []Metric {
	return []Metric{
		floatMetric("session_duration_seconds", s.SessionDurationSeconds, 3),
		{Name: "session_duration_formatted", Value: FormatDuration(s.SessionDurationSeconds), Text: true},
		intMetric("total_events", s.TotalEvents),
		intMetric("total_interactions", s.TotalInteractions),
		intMetric("total_mouse_moves", s.TotalMouseMoves),
		intMetric("total_clicks", s.TotalClicks),
		intMetric("total_mouse_ups", s.TotalMouseUps),
		intMetric("total_scrolls", s.TotalScrolls),
		intMetric("total_keypresses", s.TotalKeypresses),
		floatMetric("clicks_per_minute", s.ClicksPerMinute, 2),
		floatMetric("actions_per_minute", s.ActionsPerMinute, 2),
		floatMetric("keypresses_per_minute", s.KeypressesPerMinute, 2),
		intMetric("rage_clicks_detected", s.RageClicksDetected),
		floatMetric("longest_pause_seconds", s.LongestPauseSeconds, 2),
		floatMetric("average_pause_seconds", s.AveragePauseSeconds, 3),
		intMetric("significant_pauses", s.SignificantPauses),
		intMetric("total_scroll_distance", s.TotalScrollDistance),
		intMetric("skipped_rows", s.SkippedRows),
	}
}

// FormatDuration renders seconds as H:MM:SS, truncating fractions.
func FormatDuration(seconds float64) string {
	total := int64(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func perMinute(count int, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(count) / (seconds / 60)
}

func intMetric(name string, v int) Metric {
	return Metric{Name: name, Value: strconv.Itoa(v), Number: float64(v)}
}

func floatMetric(name string, v float64, places int) Metric {
	r := round(v, places)
	return Metric{Name: name, Value: strconv.FormatFloat(r, 'f', -1, 64), Number: r}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
