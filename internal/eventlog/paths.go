package eventlog

import (
	"path/filepath"
	"strings"
)

const (
	eventsSuffix   = "_events"
	metadataSuffix = "_metadata"
)

// SessionFiles are the files produced by one recording session.
type SessionFiles struct {
	Events   string
	Metadata string
}

// SessionPaths returns the event log and metadata paths for a session name
// inside dir.
func SessionPaths(dir, name string) SessionFiles {
	return SessionFiles{
		Events:   filepath.Join(dir, name+eventsSuffix+".csv"),
		Metadata: filepath.Join(dir, name+metadataSuffix+".json"),
	}
}

// MetadataPathFor returns the metadata file that accompanies an event log.
// Event logs that do not follow the <session>_events.csv naming have no
// companion metadata and yield "".
func MetadataPathFor(eventsPath string) string {
	session, ok := SessionName(eventsPath)
	if !ok {
		return ""
	}
	return filepath.Join(filepath.Dir(eventsPath), session+metadataSuffix+".json")
}

// SessionName returns the session an event log belongs to. ok is false for
// files that are not named <session>_events.csv.
func SessionName(eventsPath string) (name string, ok bool) {
	if filepath.Ext(eventsPath) != ".csv" {
		return "", false
	}
	stem := Stem(eventsPath)
	if !strings.HasSuffix(stem, eventsSuffix) || stem == eventsSuffix {
		return "", false
	}
	return strings.TrimSuffix(stem, eventsSuffix), true
}

// OutputFiles are the analysis output paths for one event log.
type OutputFiles struct {
	Summary     string
	SummaryJSON string
	Intensity   string
}

// OutputPaths returns the analysis output paths for an event log. Outputs go
// next to the event log unless dir is set.
func OutputPaths(eventsPath, dir string) OutputFiles {
	if dir == "" {
		dir = filepath.Dir(eventsPath)
	}
	stem := Stem(eventsPath)
	return OutputFiles{
		Summary:     filepath.Join(dir, stem+"_summary.csv"),
		SummaryJSON: filepath.Join(dir, stem+"_summary.json"),
		Intensity:   filepath.Join(dir, stem+"_intensity.csv"),
	}
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
