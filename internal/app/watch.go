package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/interlog/internal/output"
	"github.com/blackwell-systems/interlog/internal/watcher"
)

var (
	watchInterval  time.Duration
	watchQuiet     bool
	watchLongPause float64
	watchNotify    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-analyze a live session and alert on frustration",
	Long: `Watch re-analyzes an event log while it is being recorded. When notable
events are detected (new rage clicks, long idle periods, malformed rows, the
session finishing), alerts are printed and optionally sent as desktop
notifications.

Examples:
  interlog watch p01_events.csv                  # ctrl-c to stop
  interlog watch p01_events.csv --interval 2s
  interlog watch p01_events.csv --quiet --notify # critical alerts only`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Check interval (default: watch.interval)")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Only report critical alerts")
	watchCmd.Flags().Float64Var(&watchLongPause, "long-pause", -1, "Idle seconds before a pause alert, 0 disables (default: watch.long_pause)")
	watchCmd.Flags().BoolVar(&watchNotify, "notify", false, "Send desktop notifications")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	interval := cfg.Watch.Interval
	if watchInterval > 0 {
		interval = watchInterval
	}
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	acfg := cfg.Analysis.AnalyzerConfig()
	if err := acfg.Validate(); err != nil {
		return err
	}

	longPause := cfg.Watch.LongPause
	if watchLongPause >= 0 {
		longPause = watchLongPause
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), shutdownSignals...)
	defer stop()

	out := cmd.OutOrStdout()
	minLevel := "info"
	if watchQuiet {
		minLevel = "critical"
	}

	alertFn := func(a watcher.Alert) {
		if !watcher.AtLeast(a.Level, minLevel) {
			return
		}
		if watchNotify {
			if err := watcher.Notify(a); err != nil {
				log.Debug().Err(err).Msg("notification failed")
			}
		}
		printAlert(out, a)
	}

	w := watcher.New(args[0], interval, acfg, alertFn)
	w.LongPause = longPause

	initial, err := w.Snapshot()
	if err != nil {
		return fmt.Errorf("initial snapshot failed: %w", err)
	}

	if !watchQuiet && !flagJSON {
		s := initial.Summary
		fmt.Fprintf(out, "interlog watching %s (checking every %s)\n", args[0], interval)
		fmt.Fprintf(out, "[%s] %s %s events, %d rage click(s), %.1f actions/min\n",
			time.Now().Format("15:04:05"),
			checkMark(),
			output.Count(s.TotalEvents),
			s.RageClicksDetected,
			s.ActionsPerMinute)
	}

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		if !watchQuiet && !flagJSON {
			fmt.Fprintln(out, "\nStopped.")
		}
		return nil
	}
	return err
}

// printAlert formats and prints an alert, as a JSON line with --json.
func printAlert(w io.Writer, a watcher.Alert) {
	if flagJSON {
		data, err := json.Marshal(struct {
			Level   string    `json:"level"`
			Title   string    `json:"title"`
			Message string    `json:"message"`
			Time    time.Time `json:"time"`
		}{a.Level, a.Title, a.Message, a.Time})
		if err == nil {
			fmt.Fprintln(w, string(data))
		}
		return
	}

	timestamp := a.Time.Format("15:04:05")
	fmt.Fprintf(w, "[%s] %s %s\n", timestamp, alertIcon(a.Level), alertStyle(a.Level).Render(a.Title))
	if a.Message != "" {
		fmt.Fprintf(w, "         %s\n", a.Message)
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case "critical":
		return "\xf0\x9f\x94\xb4" // red circle
	case "warning":
		return "\xe2\x9a\xa0\xef\xb8\x8f" // warning sign
	case "info":
		return "\xe2\x9c\x93" // check mark
	default:
		return " "
	}
}

func alertStyle(level string) lipgloss.Style {
	switch level {
	case "critical":
		return output.StyleError
	case "warning":
		return output.StyleWarning
	default:
		return output.StyleBold
	}
}

// checkMark returns a terminal check mark indicator.
func checkMark() string {
	return "\xe2\x9c\x93"
}
