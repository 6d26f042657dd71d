package watcher

import (
	"fmt"
	"time"
)

// Compare detects notable changes between two watch states and returns alerts.
// It checks for critical, warning, and info-level changes.
func Compare(prev, curr *WatchState) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareCritical(prev, curr)...)
	alerts = append(alerts, compareWarning(prev, curr)...)
	alerts = append(alerts, compareInfo(prev, curr)...)

	return alerts
}

// compareCritical reports rage-click incidents that were not present before.
func compareCritical(prev, curr *WatchState) []Alert {
	var alerts []Alert

	seen := make(map[float64]bool, len(prev.RageClicks))
	for _, rc := range prev.RageClicks {
		seen[rc.Start] = true
	}
	for _, rc := range curr.RageClicks {
		if seen[rc.Start] {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   "critical",
			Title:   fmt.Sprintf("Rage click at (%d, %d)", rc.X, rc.Y),
			Message: fmt.Sprintf("%d clicks in %.2fs starting at %.2fs", rc.Clicks, rc.End-rc.Start, rc.Start),
			Time:    curr.Timestamp,
		})
	}

	return alerts
}

// compareWarning detects warning-level changes.
func compareWarning(prev, curr *WatchState) []Alert {
	var alerts []Alert

	if curr.Summary.SkippedRows > prev.Summary.SkippedRows {
		alerts = append(alerts, Alert{
			Level:   "warning",
			Title:   "Malformed rows",
			Message: fmt.Sprintf("%d row(s) skipped (was %d)", curr.Summary.SkippedRows, prev.Summary.SkippedRows),
			Time:    curr.Timestamp,
		})
	}

	if curr.Summary.SignificantPauses > prev.Summary.SignificantPauses && prev.Summary.TotalEvents > 0 {
		alerts = append(alerts, Alert{
			Level:   "warning",
			Title:   "Hesitation",
			Message: fmt.Sprintf("%d significant pause(s), longest %.2fs", curr.Summary.SignificantPauses, curr.Summary.LongestPauseSeconds),
			Time:    curr.Timestamp,
		})
	}

	return alerts
}

// compareInfo detects informational changes.
func compareInfo(prev, curr *WatchState) []Alert {
	var alerts []Alert

	if curr.Summary.TotalEvents < prev.Summary.TotalEvents {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   "Event log restarted",
			Message: fmt.Sprintf("Event count dropped from %d to %d", prev.Summary.TotalEvents, curr.Summary.TotalEvents),
			Time:    curr.Timestamp,
		})
	}

	if curr.Finished && !prev.Finished {
		s := curr.Summary
		alerts = append(alerts, Alert{
			Level: "info",
			Title: "Session finished",
			Message: fmt.Sprintf("%s, %d events, %.1f actions/min, %d rage click(s)",
				formatSeconds(s.SessionDurationSeconds), s.TotalEvents, s.ActionsPerMinute, s.RageClicksDetected),
			Time: curr.Timestamp,
		})
	}

	return alerts
}

func formatSeconds(s float64) string {
	return (time.Duration(s * float64(time.Second))).Round(time.Second).String()
}
