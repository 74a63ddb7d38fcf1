// Package snapshot reads the previous run's feed document back as the durable
// record of what has already been published, and persists the new document
// atomically so a crash mid-run can never corrupt that record.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"podcast-feed-gen/internal/feed"
	"podcast-feed-gen/internal/models"
)

// ErrCorrupt marks a snapshot that exists but cannot be parsed. Callers treat
// it as "no snapshot" and re-resolve everything; availability wins over
// strict preservation.
var ErrCorrupt = errors.New("snapshot corrupt")

// Load reads the feed document at path into a GUID-keyed episode map. A
// missing file is a normal first run and yields an empty map with no error.
// An unreadable or unparseable file yields an empty map and an ErrCorrupt.
func Load(path string) (map[string]models.Episode, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]models.Episode{}, nil
		}
		return map[string]models.Episode{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer file.Close()

	episodes, err := feed.ParseEpisodes(file)
	if err != nil {
		return map[string]models.Episode{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return episodes, nil
}

// Write persists the rendered feed via a temp file and rename in the target
// directory, so readers and future runs only ever observe complete documents.
func Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create feed directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".feed-*.xml")
	if err != nil {
		return fmt.Errorf("create temp feed file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp feed file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp feed file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp feed file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
