package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/blackwell-systems/interlog/internal/eventlog"
)

// DiscoverSessions looks in each provided directory, and in its immediate
// non-hidden subdirectories, for <session>_events.csv files. Missing
// directories are skipped. Sessions are returned newest first.
func DiscoverSessions(paths []string) ([]Session, error) {
	var sessions []Session
	seen := make(map[string]bool)

	for _, root := range paths {
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		dirs := []string{root}
		for _, entry := range entries {
			if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
				dirs = append(dirs, filepath.Join(root, entry.Name()))
			}
		}

		for _, dir := range dirs {
			found, err := sessionsIn(dir, seen)
			if err != nil {
				return nil, err
			}
			sessions = append(sessions, found...)
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		ti, tj := sessions[i].Started(), sessions[j].Started()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return sessions[i].Name < sessions[j].Name
	})

	return sessions, nil
}

// sessionsIn lists the event logs directly inside dir.
func sessionsIn(dir string, seen map[string]bool) ([]Session, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var sessions []Session
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := eventlog.SessionName(entry.Name())
		if !ok {
			continue
		}

		path, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			path = filepath.Join(dir, entry.Name())
		}
		if seen[path] {
			continue
		}
		seen[path] = true

		info, err := entry.Info()
		if err != nil {
			continue
		}

		s := Session{
			Name:       name,
			EventsPath: path,
			Size:       info.Size(),
			ModTime:    info.ModTime(),
		}

		meta, err := eventlog.ReadMetadata(eventlog.MetadataPathFor(path))
		if err != nil {
			log.Warn().Err(err).Str("session", name).Msg("unreadable metadata")
		}
		s.Metadata = meta

		if _, err := os.Stat(eventlog.OutputPaths(path, "").Summary); err == nil {
			s.Analyzed = true
		}

		sessions = append(sessions, s)
	}
	return sessions, nil
}
