package app

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/interlog/internal/eventlog"
	"github.com/blackwell-systems/interlog/internal/output"
	"github.com/blackwell-systems/interlog/internal/store"
)

var (
	historyLimit   int
	historyCompare bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and compare stored analyses",
	Long: `History lists analyses saved with 'interlog analyze --save', newest first.
With --compare it diffs the metrics of the two most recent analyses.

Examples:
  interlog history
  interlog history --limit 5
  interlog history --compare`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Number of analyses to list (0 for all)")
	historyCmd.Flags().BoolVar(&historyCompare, "compare", false, "Compare the two most recent analyses")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	out := cmd.OutOrStdout()
	if historyCompare {
		return runHistoryCompare(out, db)
	}

	analyses, err := db.ListAnalyses(historyLimit)
	if err != nil {
		return fmt.Errorf("listing analyses: %w", err)
	}

	if flagJSON {
		if analyses == nil {
			analyses = []store.Analysis{}
		}
		return eventlog.WriteJSON(out, analyses)
	}

	if len(analyses) == 0 {
		fmt.Fprintln(out, " No stored analyses. Run 'interlog analyze --save FILE' first.")
		return nil
	}

	fmt.Fprintln(out, output.Section("Analysis history"))
	tbl := output.NewTable("ID", "Analyzed", "Session", "Events", "Duration", "Rage")
	for _, a := range analyses {
		session := a.SessionName
		if session == "" {
			session = filepath.Base(a.Source)
		}
		rage := strconv.Itoa(a.RageClicks)
		if a.RageClicks > 0 {
			rage = output.StyleError.Render(rage)
		}
		tbl.AddRow(
			shortID(a.ID),
			output.Ago(a.AnalyzedAt),
			session,
			output.Count(a.TotalEvents),
			fmt.Sprintf("%.1fs", a.Duration),
			rage,
		)
	}
	tbl.Fprint(out)
	return nil
}

func runHistoryCompare(out io.Writer, db *store.DB) error {
	diff, err := db.CompareLatest()
	if err != nil {
		return fmt.Errorf("comparing analyses: %w", err)
	}
	if diff == nil {
		return fmt.Errorf("need at least two stored analyses to compare")
	}

	if flagJSON {
		return eventlog.WriteJSON(out, diff)
	}

	fmt.Fprintln(out, output.Section(fmt.Sprintf("%s vs %s",
		describeAnalysis(diff.Current), describeAnalysis(diff.Previous))))

	tbl := output.NewTable("Metric", "Previous", "Current", "Change")
	for _, d := range diff.Deltas {
		tbl.AddRow(
			d.Name,
			formatMetric(d.Previous),
			formatMetric(d.Current),
			trend(d),
		)
	}
	tbl.Fprint(out)
	return nil
}

func trend(d store.MetricDelta) string {
	lower, ranked := store.LowerIsBetter(d.Name)
	if !ranked {
		if d.Delta == 0 {
			return output.StyleMuted.Render("─")
		}
		return output.StyleMuted.Render(fmt.Sprintf("%+g", d.Delta))
	}
	return output.TrendArrow(d.Delta, !lower)
}

func describeAnalysis(a *store.Analysis) string {
	name := a.SessionName
	if name == "" {
		name = eventlog.Stem(a.Source)
	}
	return fmt.Sprintf("%s [%s]", name, shortID(a.ID))
}

func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
