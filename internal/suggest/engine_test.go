package suggest

import (
	"math"
	"testing"

	"github.com/blackwell-systems/interlog/internal/analyzer"
)

func TestEngineRun_NilContext(t *testing.T) {
	engine := NewEngine()
	if got := engine.Run(nil); got != nil {
		t.Errorf("Run(nil) = %v, want nil", got)
	}
	if got := engine.Run(&AnalysisContext{}); got != nil {
		t.Errorf("Run without result = %v, want nil", got)
	}
}

func TestEngineRun_QuietSession(t *testing.T) {
	engine := NewEngine()
	suggestions := engine.Run(&AnalysisContext{Result: &analyzer.Result{Config: analyzer.DefaultConfig()}})
	if len(suggestions) != 0 {
		t.Errorf("expected no suggestions for an empty session, got %+v", suggestions)
	}
}

func TestEngineRun_ReturnsSortedByImpactScore(t *testing.T) {
	res := &analyzer.Result{
		Config: analyzer.DefaultConfig(),
		Summary: analyzer.Summary{
			TotalEvents: 15,
			TotalClicks: 10,
			SkippedRows: 5,
		},
		RageClicks: []analyzer.RageClick{
			{Start: 1, End: 1.4, X: 100, Y: 100, Clicks: 3},
			{Start: 5, End: 5.6, X: 110, Y: 105, Clicks: 4},
		},
	}
	suggestions := NewEngine().Run(&AnalysisContext{Source: "p01_events.csv", Result: res})
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d: %+v", len(suggestions), suggestions)
	}
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].ImpactScore > suggestions[i-1].ImpactScore {
			t.Errorf("suggestions not sorted: [%d]=%.2f > [%d]=%.2f",
				i, suggestions[i].ImpactScore, i-1, suggestions[i-1].ImpactScore)
		}
	}
	if suggestions[0].Category != "frustration" {
		t.Errorf("expected rage clicks first, got %q", suggestions[0].Category)
	}
}

func TestRankSuggestions_StableForTies(t *testing.T) {
	in := []Suggestion{
		{Title: "a", ImpactScore: 1},
		{Title: "b", ImpactScore: 2},
		{Title: "c", ImpactScore: 1},
	}
	got := RankSuggestions(in)
	want := []string{"b", "a", "c"}
	for i, s := range got {
		if s.Title != want[i] {
			t.Errorf("position %d = %q, want %q", i, s.Title, want[i])
		}
	}
	if in[0].Title != "a" {
		t.Error("RankSuggestions modified its input")
	}
}

func TestComputeImpact(t *testing.T) {
	tests := []struct {
		name                        string
		occurrences                 int
		frequency, severity, effort float64
		want                        float64
	}{
		{"basic", 2, 0.5, 4, 1, 4},
		{"zero effort", 3, 1, 1, 0, 0},
		{"negative effort", 3, 1, 1, -1, 0},
		{"no occurrences", 0, 1, 5, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeImpact(tt.occurrences, tt.frequency, tt.severity, tt.effort)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ComputeImpact = %g, want %g", got, tt.want)
			}
		})
	}
}
