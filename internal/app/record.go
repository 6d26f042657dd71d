package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/interlog/internal/capture"
	"github.com/blackwell-systems/interlog/internal/eventlog"
	"github.com/blackwell-systems/interlog/internal/output"
)

var (
	recordOutput  string
	recordName    string
	recordPrivacy bool
	recordInput   string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Capture an interaction session to CSV",
	Long: `Record reads raw input events, one JSON object per line, from stdin or
--input and appends them to <name>_events.csv with timestamps relative to the
start of the session. A <name>_metadata.json file is written at start and
finalized on exit with end time, duration and event count.

Input lines look like:
  {"type":"mouse_down","x":10,"y":20,"button":"left"}
  {"type":"key_press","key":"a"}
  {"type":"scroll","x":300,"y":400,"dx":0,"dy":-3}

An optional "t" field (seconds since start) overrides the recorder clock.
Recording stops at end of input or on Ctrl+C.

Examples:
  input-hook | interlog record --name p01 --output ./sessions
  interlog record --privacy --input replay.jsonl`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "", "Output directory for session files (default: capture.output_dir)")
	recordCmd.Flags().StringVarP(&recordName, "name", "n", "", "Session name (default: start timestamp)")
	recordCmd.Flags().BoolVarP(&recordPrivacy, "privacy", "p", false, "Record key events without which keys were pressed")
	recordCmd.Flags().StringVarP(&recordInput, "input", "i", "", "Read raw events from this file instead of stdin")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	outDir := cfg.Capture.OutputDir
	if recordOutput != "" {
		outDir = recordOutput
	}
	privacy := cfg.Capture.Privacy || recordPrivacy

	var in io.Reader = cmd.InOrStdin()
	if recordInput != "" {
		f, err := os.Open(recordInput)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	rec, err := capture.NewRecorder(capture.Options{
		OutputDir:     outDir,
		SessionName:   recordName,
		Privacy:       privacy,
		FlushInterval: cfg.Capture.FlushInterval,
		FlushSize:     cfg.Capture.FlushSize,
		Logger:        log.Logger,
		Progress: func(total int) {
			log.Debug().Int("events", total).Msg("captured")
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), shutdownSignals...)
	defer stop()

	out := cmd.OutOrStdout()
	if !flagJSON {
		state := "DISABLED"
		if privacy {
			state = "ENABLED"
		}
		fmt.Fprintln(out, output.StyleHeader.Render("interlog recording"))
		fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render("Privacy"), state)
		fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render("Output"), outDir)
		fmt.Fprintln(out, output.StyleMuted.Render(" Recording... press Ctrl+C or close input to stop."))
	}

	meta, err := rec.Record(ctx, capture.NewJSONLines(in, log.Logger))
	if err != nil {
		return fmt.Errorf("recording: %w", err)
	}

	if flagJSON {
		return eventlog.WriteJSON(out, meta)
	}

	paths := rec.Paths()
	fmt.Fprintln(out, output.Section("Session saved: "+meta.SessionName))
	fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render("Events"), paths.Events)
	fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render("Metadata"), paths.Metadata)
	fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render("Total events"), output.Count(meta.TotalEvents))
	fmt.Fprintf(out, " %s %.2f seconds\n", output.StyleLabel.Render("Duration"), meta.DurationSeconds)
	fmt.Fprintln(out)
	fmt.Fprintln(out, output.StyleMuted.Render(" Next: interlog analyze "+paths.Events))
	return nil
}

// contextOrBackground guards commands executed without a context.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
