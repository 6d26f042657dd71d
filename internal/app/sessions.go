package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/interlog/internal/eventlog"
	"github.com/blackwell-systems/interlog/internal/output"
	"github.com/blackwell-systems/interlog/internal/scanner"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions [DIR...]",
	Short: "List recorded sessions found on disk",
	Long: `Sessions looks for <session>_events.csv files in each directory and its
immediate subdirectories, newest first. Without arguments it searches the
configured capture output directory.

Examples:
  interlog sessions
  interlog sessions ./study-a ./study-b
  interlog sessions --limit 5`,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "l", 0, "Maximum sessions to display (0 for all)")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dirs := args
	if len(dirs) == 0 {
		dirs = []string{cfg.Capture.OutputDir}
	}

	sessions, err := scanner.DiscoverSessions(dirs)
	if err != nil {
		return fmt.Errorf("discovering sessions: %w", err)
	}
	if sessionsLimit > 0 && len(sessions) > sessionsLimit {
		sessions = sessions[:sessionsLimit]
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		if sessions == nil {
			sessions = []scanner.Session{}
		}
		return eventlog.WriteJSON(out, sessions)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(out, " No sessions found. Record one with 'interlog record'.")
		return nil
	}

	fmt.Fprintln(out, output.Section("Sessions"))
	fmt.Fprintf(out, " %s\n\n", output.StyleMuted.Render(fmt.Sprintf("%d sessions", len(sessions))))

	tbl := output.NewTable("Session", "Started", "Status", "Events", "Size", "Analyzed")
	for _, s := range sessions {
		status := s.Status()
		if status != "finished" {
			status = output.StyleWarning.Render(status)
		}
		evs := "-"
		if s.Metadata != nil && s.Metadata.EndTime != "" {
			evs = output.Count(s.Metadata.TotalEvents)
		}
		analyzed := ""
		if s.Analyzed {
			analyzed = output.StyleSuccess.Render(checkMark())
		}
		tbl.AddRow(
			s.Name,
			s.Started().Local().Format("Jan 02 15:04"),
			status,
			evs,
			output.Bytes(s.Size),
			analyzed,
		)
	}
	tbl.Fprint(out)
	return nil
}
