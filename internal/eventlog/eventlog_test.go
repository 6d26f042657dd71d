package eventlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/interlog/internal/analyzer"
	"github.com/blackwell-systems/interlog/internal/events"
)

const sampleLog = `timestamp,event_type,x,y,button,key,dx,dy
0.0,mouse_move,10,20,,,,
0.5,mouse_down,100.7,200,Button.left,,,
0.6,mouse_up,100,200,Button.left,,,
1.25,key_press,,,,a,,
1.5,key_press,,,,[REDACTED],,
2.0,scroll,300,400,,,0,-3
2.1,key_release,,,,a,,
`

func TestRead_ParsesAllKinds(t *testing.T) {
	res, err := Read(strings.NewReader(sampleLog))
	require.NoError(t, err)
	require.Empty(t, res.Skipped)
	require.Len(t, res.Events, 7)

	down := res.Events[1]
	assert.Equal(t, events.MouseDown, down.Kind)
	require.NotNil(t, down.Pos)
	assert.Equal(t, events.Position{X: 100, Y: 200}, *down.Pos, "decimal coordinates are truncated")
	assert.Equal(t, "Button.left", down.Button)

	redacted := res.Events[4]
	assert.Equal(t, events.KeyPress, redacted.Kind)
	assert.Equal(t, events.RedactedKey, redacted.Key)
	assert.Nil(t, redacted.Pos)

	sc := res.Events[5]
	require.NotNil(t, sc.Scroll)
	assert.Equal(t, -3, sc.Scroll.DY)

	assert.Equal(t, events.KeyPress, res.Events[6].Kind, "key_release folds into key_press")
}

func TestRead_SkipsMalformedRows(t *testing.T) {
	input := `timestamp,event_type,x,y,button,key,dx,dy
0.1,mouse_down,,,Button.left,,,
abc,mouse_move,1,1,,,,
0.2,teleport,1,1,,,,
,key_press,,,,a,,
-1,key_press,,,,a,,
0.3,mouse_move,x,1,,,,
0.4,mouse_move,5,5,,,,
NaN,key_press,,,,a,,
0.5,key_press,,,,b,,
`
	res, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	assert.Len(t, res.Events, 2)
	require.Len(t, res.Skipped, 7)
	assert.Equal(t, 2, res.Skipped[0].Line)
	assert.Contains(t, res.Skipped[0].Reason, "without coordinates")
	assert.Contains(t, res.Skipped[2].Reason, "unknown event type")
}

func TestRead_SkipsNonFiniteCoordinates(t *testing.T) {
	input := `timestamp,event_type,x,y,button,key,dx,dy
0.1,mouse_down,NaN,100,Button.left,,,
0.2,mouse_down,1e300,100,Button.left,,,
0.3,mouse_down,Inf,100,Button.left,,,
0.4,scroll,5,5,,,0,-Inf
0.5,mouse_down,100,100,Button.left,,,
`
	res, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, res.Events, 1)
	assert.Equal(t, events.Position{X: 100, Y: 100}, *res.Events[0].Pos)
	require.Len(t, res.Skipped, 4)
	assert.Contains(t, res.Skipped[0].Reason, `invalid x "NaN"`)
	assert.Contains(t, res.Skipped[3].Reason, `invalid dy "-Inf"`)

	rage := analyzer.DetectRageClicks(res.Events, analyzer.DefaultConfig().RageClick)
	assert.Empty(t, rage)
}

func TestRead_ToleratesExtraAndReorderedColumns(t *testing.T) {
	input := "event_type,timestamp,key,x,y,start_x,start_y\n" +
		"mouse_move,1.5,,3,4,,\n" +
		"key_press,2,q,,,,\n" +
		"mouse_move,3\n"

	res, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Events, 2)
	require.Len(t, res.Skipped, 1, "short row without coordinates is skipped")
	assert.Equal(t, 1.5, res.Events[0].Timestamp)
	assert.Equal(t, "q", res.Events[1].Key)
}

func TestRead_MissingRequiredColumn(t *testing.T) {
	_, err := Read(strings.NewReader("time,event_type\n1,key_press\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestRead_EmptyInput(t *testing.T) {
	res, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, res.Events)

	res, err = Read(strings.NewReader(strings.Join(Columns, ",") + "\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Events)
}

func TestWriter_RoundTrip(t *testing.T) {
	evs := []events.Event{
		{Timestamp: 0.125, Kind: events.MouseMove, Pos: &events.Position{X: 1, Y: 2}},
		{Timestamp: 0.5, Kind: events.MouseDown, Pos: &events.Position{X: 3, Y: 4}, Button: "left"},
		{Timestamp: 0.75, Kind: events.Scroll, Pos: &events.Position{X: 5, Y: 6}, Scroll: &events.Delta{DX: 1, DY: -2}},
		{Timestamp: 1, Kind: events.KeyPress, Key: "a,b"},
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf, true)
	require.NoError(t, err)
	for _, ev := range evs {
		require.NoError(t, w.Write(ev))
	}
	require.NoError(t, w.Flush())

	res, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, evs, res.Events)
}

func TestCreateLogAndAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s_events.csv")
	require.NoError(t, CreateLog(path))
	require.NoError(t, AppendFile(path, []events.Event{{Timestamp: 1, Kind: events.KeyPress, Key: "a"}}))
	require.NoError(t, AppendFile(path, nil))
	require.NoError(t, AppendFile(path, []events.Event{{Timestamp: 2, Kind: events.KeyPress, Key: "b"}}))

	res, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, res.Events, 2)
	assert.Equal(t, "b", res.Events[1].Key)
}

func TestMetadata_RoundTripAndMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s_metadata.json")

	meta, err := ReadMetadata(path)
	require.NoError(t, err)
	assert.Nil(t, meta)

	want := &events.Metadata{
		SessionName:     "s",
		StartTime:       "2026-03-01T10:00:00Z",
		EndTime:         "2026-03-01T10:05:00Z",
		PrivacyMode:     true,
		DurationSeconds: 300,
		TotalEvents:     42,
	}
	require.NoError(t, WriteMetadata(path, want))

	got, err := ReadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadMetadata_LegacyTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old_metadata.json")
	legacy := `{"session_name": "old", "start_time": "2025-11-02T09:30:00.123456", "privacy_mode": false, "output_dir": "/tmp"}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	meta, err := ReadMetadata(path)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.False(t, events.ParseTimestamp(meta.StartTime).IsZero())
}

func TestPaths(t *testing.T) {
	sp := SessionPaths("/data", "p01")
	assert.Equal(t, filepath.Join("/data", "p01_events.csv"), sp.Events)
	assert.Equal(t, filepath.Join("/data", "p01_metadata.json"), sp.Metadata)

	assert.Equal(t, sp.Metadata, MetadataPathFor(sp.Events))
	assert.Equal(t, "", MetadataPathFor("/data/export.csv"))

	name, ok := SessionName(sp.Events)
	assert.True(t, ok)
	assert.Equal(t, "p01", name)
	_, ok = SessionName("/data/p01_events_summary.csv")
	assert.False(t, ok)
	_, ok = SessionName("/data/_events.csv")
	assert.False(t, ok)

	out := OutputPaths(sp.Events, "")
	assert.Equal(t, filepath.Join("/data", "p01_events_summary.csv"), out.Summary)
	assert.Equal(t, filepath.Join("/data", "p01_events_intensity.csv"), out.Intensity)

	out = OutputPaths(sp.Events, "/out")
	assert.Equal(t, filepath.Join("/out", "p01_events_summary.json"), out.SummaryJSON)
}

func TestWriteSummaryCSV_Order(t *testing.T) {
	var buf bytes.Buffer
	s := analyzer.Summary{TotalEvents: 3, RageClicksDetected: 1}
	require.NoError(t, WriteSummaryCSV(&buf, s.Metrics()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "metric,value", lines[0])
	assert.Equal(t, "session_duration_seconds,0", lines[1])
	assert.Contains(t, lines, "rage_clicks_detected,1")
	assert.Len(t, lines, len(s.Metrics())+1)
}

func TestWriteIntensityCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIntensityCSV(&buf, nil))
	assert.Equal(t, "time_start,time_end,total_interactions,clicks,scrolls,keypresses\n", buf.String())

	buf.Reset()
	buckets := []analyzer.Bucket{
		{TimeStart: 0, TimeEnd: 5, TotalInteractions: 13, Clicks: 3},
		{TimeStart: 5, TimeEnd: 7.256, TotalInteractions: 1, Keypresses: 1},
	}
	require.NoError(t, WriteIntensityCSV(&buf, buckets))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0,5,13,3,0,0", lines[1])
	assert.Equal(t, "5,7.26,1,0,0,1", lines[2])
}

func TestMetricSet_MarshalKeepsOrder(t *testing.T) {
	s := analyzer.Summary{SessionDurationSeconds: 65, TotalEvents: 2}
	data, err := json.Marshal(MetricSet(s.Metrics()))
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, `{"session_duration_seconds":65,"session_duration_formatted":"0:01:05","total_events":2`), text)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, len(s.Metrics()))
}

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	res, err := analyzer.Analyze([]events.Event{{Timestamp: 1, Kind: events.KeyPress, Key: "a"}}, nil, 0, analyzer.DefaultConfig())
	require.NoError(t, err)

	files := OutputPaths(filepath.Join(dir, "s_events.csv"), "")
	doc := NewDocument("s_events.csv", res, nil)
	require.NoError(t, WriteOutputs(files, doc, true))

	for _, p := range []string{files.Summary, files.Intensity, files.SummaryJSON} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}

	data, err := os.ReadFile(files.SummaryJSON)
	require.NoError(t, err)
	var decoded struct {
		Summary    map[string]any `json:"summary"`
		RageClicks []any          `json:"rage_clicks"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(1), decoded.Summary["total_events"])
	assert.NotNil(t, decoded.RageClicks)
}
