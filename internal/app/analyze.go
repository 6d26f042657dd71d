package app

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/interlog/internal/analyzer"
	"github.com/blackwell-systems/interlog/internal/eventlog"
	"github.com/blackwell-systems/interlog/internal/events"
	"github.com/blackwell-systems/interlog/internal/store"
)

var (
	analyzeOutput         string
	analyzeBucketSize     float64
	analyzeRageWindow     float64
	analyzeRageRadius     float64
	analyzeRageMin        int
	analyzePauseThreshold float64
	analyzeJSONFile       bool
	analyzeSave           bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE...",
	Short: "Compute summary metrics and intensity for event logs",
	Long: `Analyze reads one or more <session>_events.csv files and writes, next to
each input (or into --output):

  <stem>_summary.csv     metric,value table
  <stem>_intensity.csv   interactions per time bucket
  <stem>_summary.json    full structured result (with --json-file)

Malformed rows are skipped and reported. Thresholds default to the values in
the config file and can be overridden per run.

Examples:
  interlog analyze p01_events.csv
  interlog analyze sessions/*_events.csv --bucket-size 10 --save
  interlog analyze p01_events.csv --json | jq .summary`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Directory for result files (default: next to each input)")
	analyzeCmd.Flags().Float64Var(&analyzeBucketSize, "bucket-size", analyzer.DefaultBucketWidth, "Intensity bucket width in seconds")
	analyzeCmd.Flags().Float64Var(&analyzeRageWindow, "rage-window", analyzer.DefaultRageWindow, "Max seconds between clicks of a rage click")
	analyzeCmd.Flags().Float64Var(&analyzeRageRadius, "rage-radius", analyzer.DefaultRageRadiusPx, "Max distance in pixels from the first click of a rage click")
	analyzeCmd.Flags().IntVar(&analyzeRageMin, "rage-min", analyzer.DefaultRageMinClicks, "Min clicks in a rage click")
	analyzeCmd.Flags().Float64Var(&analyzePauseThreshold, "pause-threshold", analyzer.DefaultPauseThreshold, "Gap in seconds counted as a significant pause (0 disables)")
	analyzeCmd.Flags().BoolVar(&analyzeJSONFile, "json-file", false, "Also write <stem>_summary.json")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Store the results in the history database")
	rootCmd.AddCommand(analyzeCmd)
}

// fileAnalysis is the outcome of analyzing one event log.
type fileAnalysis struct {
	Path  string
	Res   *analyzer.Result
	Doc   eventlog.Document
	Files eventlog.OutputFiles
	ID    string
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	acfg := analyzeConfig(cmd, cfg.Analysis.AnalyzerConfig())
	if err := acfg.Validate(); err != nil {
		return err
	}

	if analyzeOutput != "" {
		if err := ensureDir(analyzeOutput); err != nil {
			return err
		}
	}

	results := make([]*fileAnalysis, len(args))
	errs := make([]error, len(args))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range args {
		g.Go(func() error {
			results[i], errs[i] = analyzeFile(path, analyzeOutput, acfg, analyzeJSONFile)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			log.Error().Str("file", args[i]).Err(err).Msg("analysis failed")
		}
	}

	if analyzeSave {
		if err := saveAnalyses(cfg.DBPath, results); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		if err := printJSONResults(out, results); err != nil {
			return err
		}
	} else {
		for _, fa := range results {
			if fa != nil {
				renderAnalysis(out, fa)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be analyzed", failed, len(args))
	}
	return nil
}

// analyzeConfig applies explicitly set flags on top of base.
func analyzeConfig(cmd *cobra.Command, base analyzer.Config) analyzer.Config {
	f := cmd.Flags()
	if f.Changed("bucket-size") {
		base.BucketWidth = analyzeBucketSize
	}
	if f.Changed("rage-window") {
		base.RageClick.TimeWindow = analyzeRageWindow
	}
	if f.Changed("rage-radius") {
		base.RageClick.RadiusPx = analyzeRageRadius
	}
	if f.Changed("rage-min") {
		base.RageClick.MinClicks = analyzeRageMin
	}
	if f.Changed("pause-threshold") {
		base.PauseThreshold = analyzePauseThreshold
	}
	return base
}

// analyzeFile reads, analyzes and writes the result files of one event log.
func analyzeFile(path, outDir string, cfg analyzer.Config, withJSON bool) (*fileAnalysis, error) {
	res, skipped, err := analyzePath(path, cfg)
	if err != nil {
		return nil, err
	}

	fa := &fileAnalysis{
		Path:  path,
		Res:   res,
		Doc:   eventlog.NewDocument(filepath.Base(path), res, skipped),
		Files: eventlog.OutputPaths(path, outDir),
	}
	if err := eventlog.WriteOutputs(fa.Files, fa.Doc, withJSON); err != nil {
		return nil, fmt.Errorf("writing results for %s: %w", path, err)
	}

	log.Debug().
		Str("file", path).
		Int("events", res.Summary.TotalEvents).
		Int("buckets", len(res.Buckets)).
		Int("rage_clicks", res.Summary.RageClicksDetected).
		Msg("analyzed")
	return fa, nil
}

// analyzePath reads one event log and its metadata and analyzes it.
// Malformed rows are logged and skipped.
func analyzePath(path string, cfg analyzer.Config) (*analyzer.Result, []eventlog.RowError, error) {
	read, err := eventlog.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	for _, re := range read.Skipped {
		log.Warn().Str("file", path).Int("line", re.Line).Str("reason", re.Reason).Msg("skipping malformed row")
	}

	var meta *events.Metadata
	if mp := eventlog.MetadataPathFor(path); mp != "" {
		meta, err = eventlog.ReadMetadata(mp)
		if err != nil {
			log.Warn().Str("file", mp).Err(err).Msg("ignoring unreadable metadata")
			meta = nil
		}
	}

	res, err := analyzer.Analyze(read.Events, meta, len(read.Skipped), cfg)
	if err != nil {
		return nil, nil, err
	}
	return res, read.Skipped, nil
}

func saveAnalyses(dbPath string, results []*fileAnalysis) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	for _, fa := range results {
		if fa == nil {
			continue
		}
		source, err := filepath.Abs(fa.Path)
		if err != nil {
			source = fa.Path
		}
		id, err := db.InsertAnalysis(store.NewAnalysis(source, fa.Res), fa.Res.Summary.Metrics())
		if err != nil {
			return fmt.Errorf("saving analysis of %s: %w", fa.Path, err)
		}
		fa.ID = id
	}
	return nil
}

func printJSONResults(w io.Writer, results []*fileAnalysis) error {
	docs := make([]eventlog.Document, 0, len(results))
	for _, fa := range results {
		if fa != nil {
			docs = append(docs, fa.Doc)
		}
	}
	if len(docs) == 1 {
		return eventlog.WriteJSON(w, docs[0])
	}
	return eventlog.WriteJSON(w, docs)
}
