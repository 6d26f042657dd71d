package app

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/interlog/internal/eventlog"
	"github.com/blackwell-systems/interlog/internal/output"
	"github.com/blackwell-systems/interlog/internal/suggest"
)

var (
	suggestLimit    int
	suggestCategory string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest FILE",
	Short: "Generate ranked usability findings for a session",
	Long: `Analyze an event log and turn rage clicks, long pauses, activity spikes and
data problems into findings ranked by impact.

Examples:
  interlog suggest p01_events.csv
  interlog suggest --category frustration p01_events.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 10, "Maximum number of suggestions to show (0 for all)")
	suggestCmd.Flags().StringVar(&suggestCategory, "category", "", "Filter by category (frustration, hesitation, intensity, data)")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := args[0]
	res, _, err := analyzePath(path, cfg.Analysis.AnalyzerConfig())
	if err != nil {
		return err
	}

	suggestions := suggest.NewEngine().Run(&suggest.AnalysisContext{
		Source: filepath.Base(path),
		Result: res,
	})

	if suggestCategory != "" {
		suggestions = filterByCategory(suggestions, suggestCategory)
	}
	if suggestLimit > 0 && len(suggestions) > suggestLimit {
		suggestions = suggestions[:suggestLimit]
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		if suggestions == nil {
			suggestions = []suggest.Suggestion{}
		}
		return eventlog.WriteJSON(out, suggestions)
	}

	renderSuggestions(out, filepath.Base(path), suggestions)
	return nil
}

func filterByCategory(suggestions []suggest.Suggestion, category string) []suggest.Suggestion {
	var filtered []suggest.Suggestion
	for _, s := range suggestions {
		if strings.EqualFold(s.Category, category) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func renderSuggestions(w io.Writer, source string, suggestions []suggest.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(w, output.Section("Suggestions"))
		fmt.Fprintln(w)
		fmt.Fprintf(w, " %s No findings for %s.\n", checkMark(), source)
		return
	}

	fmt.Fprintln(w, output.Section("Findings: "+source))
	fmt.Fprintln(w)

	for i, s := range suggestions {
		fmt.Fprintf(w, " #%d %s %s\n", i+1, stylePriority(s.Priority, priorityToLabel(s.Priority)), output.StyleBold.Render(s.Title))
		fmt.Fprintf(w, "    Impact: %.1f  |  Category: %s\n", s.ImpactScore, s.Category)
		fmt.Fprintf(w, "    %s\n", s.Description)
		fmt.Fprintln(w)
	}
}

func priorityToLabel(priority int) string {
	switch priority {
	case suggest.PriorityCritical:
		return "[CRITICAL]"
	case suggest.PriorityHigh:
		return "[HIGH]"
	case suggest.PriorityMedium:
		return "[MEDIUM]"
	case suggest.PriorityLow:
		return "[LOW]"
	default:
		return "[UNKNOWN]"
	}
}

func stylePriority(priority int, label string) string {
	switch priority {
	case suggest.PriorityCritical, suggest.PriorityHigh:
		return output.StyleError.Render(label)
	case suggest.PriorityMedium:
		return output.StyleWarning.Render(label)
	default:
		return output.StyleMuted.Render(label)
	}
}
