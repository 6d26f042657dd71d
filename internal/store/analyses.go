package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/interlog/internal/analyzer"
)

// lowerIsBetter lists metrics where a decrease counts as an improvement.
// Metrics not listed here are activity measures with no preferred direction.
var lowerIsBetter = map[string]bool{
	"rage_clicks_detected":  true,
	"longest_pause_seconds": true,
	"average_pause_seconds": true,
	"significant_pauses":    true,
	"skipped_rows":          true,
}

// LowerIsBetter reports whether a decrease in the named metric is an
// improvement. The second result is false for metrics without a preferred
// direction.
func LowerIsBetter(name string) (lower, ranked bool) {
	lower, ranked = lowerIsBetter[name]
	return lower, ranked
}

// NewAnalysis builds the stored record of an analysis of source.
func NewAnalysis(source string, res *analyzer.Result) *Analysis {
	a := &Analysis{
		Source:      source,
		BucketWidth: res.Config.BucketWidth,
		Duration:    res.Summary.SessionDurationSeconds,
		TotalEvents: res.Summary.TotalEvents,
		RageClicks:  res.Summary.RageClicksDetected,
		SkippedRows: res.Summary.SkippedRows,
	}
	if res.Metadata != nil {
		a.SessionName = res.Metadata.SessionName
	}
	return a
}

// InsertAnalysis stores a and its numeric metrics in one transaction. An
// empty ID is filled with a new UUID and a zero AnalyzedAt with the current
// time. It returns the analysis ID.
func (db *DB) InsertAnalysis(a *Analysis, metrics []analyzer.Metric) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AnalyzedAt.IsZero() {
		a.AnalyzedAt = time.Now().UTC()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO analyses
		(id, analyzed_at, source, session_name, bucket_width, duration,
		 total_events, rage_clicks, skipped_rows)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.AnalyzedAt.UTC().Format(time.RFC3339Nano), a.Source, a.SessionName,
		a.BucketWidth, a.Duration, a.TotalEvents, a.RageClicks, a.SkippedRows,
	); err != nil {
		return "", fmt.Errorf("inserting analysis: %w", err)
	}

	pos := 0
	for _, m := range metrics {
		if m.Text {
			continue
		}
		if _, err := tx.Exec(
			`INSERT INTO analysis_metrics (analysis_id, position, metric_name, metric_value)
			VALUES (?, ?, ?, ?)`,
			a.ID, pos, m.Name, m.Number,
		); err != nil {
			return "", fmt.Errorf("inserting metric %s: %w", m.Name, err)
		}
		pos++
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return a.ID, nil
}

const analysisColumns = `id, analyzed_at, source, session_name, bucket_width, duration,
	total_events, rage_clicks, skipped_rows`

// ListAnalyses returns up to limit analyses, newest first. A limit of zero or
// less returns all of them.
func (db *DB) ListAnalyses(limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(
		"SELECT "+analysisColumns+" FROM analyses ORDER BY seq DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// GetAnalysis returns an analysis by ID, or nil if it does not exist.
func (db *DB) GetAnalysis(id string) (*Analysis, error) {
	row := db.conn.QueryRow("SELECT "+analysisColumns+" FROM analyses WHERE id = ?", id)
	return scanAnalysisRow(row)
}

// GetAnalysisN returns the Nth most recent analysis (1 = latest, 2 = previous,
// etc.), or nil if there are fewer than n.
func (db *DB) GetAnalysisN(n int) (*Analysis, error) {
	if n < 1 {
		return nil, nil
	}
	row := db.conn.QueryRow(
		"SELECT "+analysisColumns+" FROM analyses ORDER BY seq DESC LIMIT 1 OFFSET ?",
		n-1,
	)
	return scanAnalysisRow(row)
}

// GetMetrics returns the stored metrics of an analysis in summary order.
func (db *DB) GetMetrics(analysisID string) ([]MetricRow, error) {
	rows, err := db.conn.Query(
		"SELECT metric_name, metric_value FROM analysis_metrics WHERE analysis_id = ? ORDER BY position",
		analysisID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var metrics []MetricRow
	for rows.Next() {
		var m MetricRow
		if err := rows.Scan(&m.Name, &m.Value); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// CompareLatest diffs the two most recent analyses. It returns nil when fewer
// than two analyses are stored.
func (db *DB) CompareLatest() (*AnalysisDiff, error) {
	cur, err := db.GetAnalysisN(1)
	if err != nil || cur == nil {
		return nil, err
	}
	prev, err := db.GetAnalysisN(2)
	if err != nil || prev == nil {
		return nil, err
	}
	return db.Compare(prev, cur)
}

// Compare diffs the metrics of two analyses. Metrics present in only one of
// them are omitted.
func (db *DB) Compare(prev, cur *Analysis) (*AnalysisDiff, error) {
	prevMetrics, err := db.GetMetrics(prev.ID)
	if err != nil {
		return nil, err
	}
	curMetrics, err := db.GetMetrics(cur.ID)
	if err != nil {
		return nil, err
	}

	before := make(map[string]float64, len(prevMetrics))
	for _, m := range prevMetrics {
		before[m.Name] = m.Value
	}

	diff := &AnalysisDiff{Previous: prev, Current: cur}
	for _, m := range curMetrics {
		p, ok := before[m.Name]
		if !ok {
			continue
		}
		d := m.Value - p
		diff.Deltas = append(diff.Deltas, MetricDelta{
			Name:      m.Name,
			Previous:  p,
			Current:   m.Value,
			Delta:     d,
			Direction: direction(m.Name, d),
		})
	}
	return diff, nil
}

func direction(name string, delta float64) string {
	if delta == 0 {
		return "unchanged"
	}
	lower, ranked := LowerIsBetter(name)
	switch {
	case !ranked:
		return "changed"
	case (delta < 0) == lower:
		return "improved"
	default:
		return "regressed"
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysisRow(row *sql.Row) (*Analysis, error) {
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func scanAnalysis(s scanner) (*Analysis, error) {
	var a Analysis
	var analyzedAt string
	var sessionName sql.NullString
	if err := s.Scan(
		&a.ID, &analyzedAt, &a.Source, &sessionName, &a.BucketWidth, &a.Duration,
		&a.TotalEvents, &a.RageClicks, &a.SkippedRows,
	); err != nil {
		return nil, err
	}
	a.SessionName = sessionName.String
	a.AnalyzedAt, _ = time.Parse(time.RFC3339Nano, analyzedAt)
	return &a, nil
}
