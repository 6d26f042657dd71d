// Package app contains the Cobra command tree for interlog.
package app

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/interlog/internal/config"
	"github.com/blackwell-systems/interlog/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "interlog",
	Short: "Interaction logging and analysis for UX research",
	Long: `interlog records mouse and keyboard interaction sessions and analyzes
them for signs of user frustration: rage clicks, long pauses and bursts of
activity.

Record a session with 'interlog record', then run 'interlog analyze' on the
resulting <session>_events.csv file.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "interlog", appVersion)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use a subcommand:")
		fmt.Fprintln(out, "  record    Capture an interaction session to CSV")
		fmt.Fprintln(out, "  analyze   Compute summary metrics and intensity for event logs")
		fmt.Fprintln(out, "  suggest   Rank usability findings for an event log")
		fmt.Fprintln(out, "  sessions  List recorded sessions on disk")
		fmt.Fprintln(out, "  history   List and compare stored analyses")
		fmt.Fprintln(out, "  watch     Re-analyze a live session and alert on frustration")
		fmt.Fprintln(out, "  mcp       Serve analysis tools over MCP stdio")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/interlog/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

// setup configures logging and color before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     cmd.ErrOrStderr(),
		NoColor: flagNoColor || !isTerminal(os.Stderr),
	}).With().Timestamp().Logger()

	output.SetNoColor(flagNoColor || flagJSON || !isTerminal(os.Stdout))
	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// loadConfig loads configuration from the --config path or the default
// location.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
