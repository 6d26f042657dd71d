package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/blackwell-systems/interlog/internal/analyzer"
	"github.com/blackwell-systems/interlog/internal/output"
)

// maxBucketRows is the largest intensity table rendered row by row; longer
// sessions get a sparkline.
const maxBucketRows = 24

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// renderAnalysis prints the styled report of one analyzed file.
func renderAnalysis(w io.Writer, fa *fileAnalysis) {
	res := fa.Res
	s := res.Summary

	title := filepath.Base(fa.Path)
	if res.Metadata != nil && res.Metadata.SessionName != "" {
		title = fmt.Sprintf("%s (%s)", res.Metadata.SessionName, title)
	}
	fmt.Fprintln(w, output.Section("Session "+title))

	row := func(label, value string) {
		fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render(label), output.StyleValue.Render(value))
	}
	row("Duration", analyzer.FormatDuration(s.SessionDurationSeconds))
	row("Events", output.Count(s.TotalEvents))
	row("Interactions", output.Count(s.TotalInteractions))
	row("Clicks", output.Count(s.TotalClicks))
	row("Scrolls", output.Count(s.TotalScrolls))
	row("Keypresses", output.Count(s.TotalKeypresses))
	row("Actions / min", strconv.FormatFloat(s.ActionsPerMinute, 'f', 2, 64))
	row("Clicks / min", strconv.FormatFloat(s.ClicksPerMinute, 'f', 2, 64))

	rage := output.StyleSuccess.Render("0")
	if s.RageClicksDetected > 0 {
		rage = output.StyleError.Render(strconv.Itoa(s.RageClicksDetected))
	}
	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Rage clicks"), rage)

	pause := fmt.Sprintf("%.2fs longest, %d significant", s.LongestPauseSeconds, s.SignificantPauses)
	if s.SignificantPauses > 0 {
		pause = output.StyleWarning.Render(pause)
	}
	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Pauses"), pause)

	if s.SkippedRows > 0 {
		fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Skipped rows"),
			output.StyleWarning.Render(output.Count(s.SkippedRows)))
	}

	if len(res.RageClicks) > 0 {
		fmt.Fprintln(w, output.Section("Rage clicks"))
		tbl := output.NewTable("Start", "End", "Position", "Clicks")
		for _, rc := range res.RageClicks {
			tbl.AddRow(
				fmt.Sprintf("%.2fs", rc.Start),
				fmt.Sprintf("%.2fs", rc.End),
				fmt.Sprintf("(%d, %d)", rc.X, rc.Y),
				strconv.Itoa(rc.Clicks),
			)
		}
		tbl.Fprint(w)
	}

	if len(res.Buckets) > 0 {
		fmt.Fprintln(w, output.Section(fmt.Sprintf("Intensity (%gs buckets)", res.Config.BucketWidth)))
		renderBuckets(w, res.Buckets)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, " %s\n", output.StyleMuted.Render("Wrote "+fa.Files.Summary))
	fmt.Fprintf(w, " %s\n", output.StyleMuted.Render("Wrote "+fa.Files.Intensity))
	if fa.ID != "" {
		fmt.Fprintf(w, " %s\n", output.StyleMuted.Render("Saved as "+fa.ID))
	}
}

func renderBuckets(w io.Writer, buckets []analyzer.Bucket) {
	peak := 0
	values := make([]int, len(buckets))
	for i, b := range buckets {
		values[i] = b.TotalInteractions
		if b.TotalInteractions > peak {
			peak = b.TotalInteractions
		}
	}

	if len(buckets) > maxBucketRows {
		fmt.Fprintf(w, " %s\n", output.Sparkline(values))
		fmt.Fprintf(w, " %s\n", output.StyleMuted.Render(
			fmt.Sprintf("%d buckets, peak %d interactions", len(buckets), peak)))
		return
	}

	tbl := output.NewTable("Window", "Interactions", "Clicks", "Scrolls", "Keys")
	for _, b := range buckets {
		tbl.AddRow(
			fmt.Sprintf("%.1f-%.1fs", b.TimeStart, b.TimeEnd),
			output.IntensityBar(b.TotalInteractions, peak, 20),
			strconv.Itoa(b.Clicks),
			strconv.Itoa(b.Scrolls),
			strconv.Itoa(b.Keypresses),
		)
	}
	tbl.Fprint(w)
}
