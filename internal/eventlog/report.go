package eventlog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/blackwell-systems/interlog/internal/analyzer"
	"github.com/blackwell-systems/interlog/internal/events"
)

// IntensityColumns is the intensity table header.
var IntensityColumns = []string{"time_start", "time_end", "total_interactions", "clicks", "scrolls", "keypresses"}

// WriteSummaryCSV writes a metric,value table in metric order.
func WriteSummaryCSV(w io.Writer, metrics []analyzer.Metric) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"metric", "value"}); err != nil {
		return err
	}
	for _, m := range metrics {
		if err := cw.Write([]string{m.Name, m.Value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteIntensityCSV writes one row per bucket. The header is written even
// when there are no buckets.
func WriteIntensityCSV(w io.Writer, buckets []analyzer.Bucket) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(IntensityColumns); err != nil {
		return err
	}
	for _, b := range buckets {
		row := []string{
			formatFloat(round2(b.TimeStart)),
			formatFloat(round2(b.TimeEnd)),
			strconv.Itoa(b.TotalInteractions),
			strconv.Itoa(b.Clicks),
			strconv.Itoa(b.Scrolls),
			strconv.Itoa(b.Keypresses),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Document is the structured form of an analysis result.
type Document struct {
	Source     string               `json:"source,omitempty"`
	Summary    MetricSet            `json:"summary"`
	RageClicks []analyzer.RageClick `json:"rage_clicks"`
	Pauses     analyzer.PauseStats  `json:"pauses"`
	Intensity  []analyzer.Bucket    `json:"intensity"`
	Skipped    []RowError           `json:"skipped_rows,omitempty"`
	Metadata   *events.Metadata     `json:"metadata,omitempty"`
	Config     analyzer.Config      `json:"config"`
}

// NewDocument builds the structured form of res.
func NewDocument(source string, res *analyzer.Result, skipped []RowError) Document {
	doc := Document{
		Source:     source,
		Summary:    MetricSet(res.Summary.Metrics()),
		RageClicks: res.RageClicks,
		Pauses:     res.Pauses,
		Intensity:  res.Buckets,
		Skipped:    skipped,
		Metadata:   res.Metadata,
		Config:     res.Config,
	}
	if doc.RageClicks == nil {
		doc.RageClicks = []analyzer.RageClick{}
	}
	if doc.Intensity == nil {
		doc.Intensity = []analyzer.Bucket{}
	}
	return doc
}

// MetricSet marshals as a JSON object whose keys keep metric order.
type MetricSet []analyzer.Metric

// MarshalJSON implements json.Marshaler.
func (ms MetricSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range ms {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(m.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if m.Text {
			val, err := json.Marshal(m.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		} else {
			buf.WriteString(m.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteOutputs writes the summary and intensity tables of doc to files, and
// the JSON document itself when withJSON is set.
func WriteOutputs(files OutputFiles, doc Document, withJSON bool) error {
	if err := writeFile(files.Summary, func(w io.Writer) error {
		return WriteSummaryCSV(w, doc.Summary)
	}); err != nil {
		return err
	}
	if err := writeFile(files.Intensity, func(w io.Writer) error {
		return WriteIntensityCSV(w, doc.Intensity)
	}); err != nil {
		return err
	}
	if withJSON {
		return writeFile(files.SummaryJSON, func(w io.Writer) error {
			return WriteJSON(w, doc)
		})
	}
	return nil
}

func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
