// Package suggest turns an analysis result into ranked usability findings.
package suggest

import "github.com/blackwell-systems/interlog/internal/analyzer"

// Priority levels for suggestions.
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
)

// Suggestion is one actionable finding about a recorded session.
type Suggestion struct {
	Category    string  `json:"category"`
	Priority    int     `json:"priority"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImpactScore float64 `json:"impact_score"`
}

// AnalysisContext is what the rules look at.
type AnalysisContext struct {
	// Source names the analyzed event log.
	Source string `json:"source"`

	// Result is the analysis of the session.
	Result *analyzer.Result `json:"result"`
}

// Rule examines the context and produces zero or more suggestions.
type Rule func(ctx *AnalysisContext) []Suggestion
