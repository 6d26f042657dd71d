package analyzer

import "github.com/blackwell-systems/interlog/internal/events"

// DetectPauses measures the gaps between consecutive events. evs must be
// sorted. Sequences with fewer than two events have no gaps and report zeros.
// A gap is significant when it is strictly longer than threshold; a zero
// threshold disables the count.
func DetectPauses(evs []events.Event, threshold float64) PauseStats {
	var stats PauseStats
	if len(evs) < 2 {
		return stats
	}

	var total float64
	for i := 1; i < len(evs); i++ {
		gap := evs[i].Timestamp - evs[i-1].Timestamp
		total += gap
		if gap > stats.Longest {
			stats.Longest = gap
			stats.LongestAt = evs[i-1].Timestamp
		}
		if threshold > 0 && gap > threshold {
			stats.Significant++
		}
	}

	stats.Gaps = len(evs) - 1
	stats.Average = total / float64(stats.Gaps)
	return stats
}
