package suggest

import "sort"

// RankSuggestions returns a copy sorted by impact score, highest first.
// Ties keep rule order.
func RankSuggestions(suggestions []Suggestion) []Suggestion {
	sorted := make([]Suggestion, len(suggestions))
	copy(sorted, suggestions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ImpactScore > sorted[j].ImpactScore
	})
	return sorted
}

// ComputeImpact scores a finding.
// Formula: (occurrences * frequency * severity) / effort
//
// Parameters:
//   - occurrences: how many times the pattern was observed
//   - frequency: share of the session affected (0.0-1.0)
//   - severity: how disruptive one occurrence is for the participant
//   - effort: relative cost of investigating the finding
//
// Returns 0 if effort is not positive.
func ComputeImpact(occurrences int, frequency, severity, effort float64) float64 {
	if effort <= 0 {
		return 0
	}
	return (float64(occurrences) * frequency * severity) / effort
}
