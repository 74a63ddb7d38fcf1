// Package feedstore indexes generated feed files on disk so the server can
// answer requests without touching the generator. The target directory is
// watched and reindexed whenever feeds are rewritten.
package feedstore

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Feed describes a single generated feed file found in the target directory.
type Feed struct {
	Slug     string
	Path     string
	Size     int64
	Modified time.Time
}

// Store monitors the feed target directory and keeps an in-memory slug index.
type Store struct {
	root    string
	watcher *fsnotify.Watcher
	logger  *log.Logger

	mu    sync.RWMutex
	feeds map[string]Feed

	refreshMu    sync.Mutex
	refreshTimer *time.Timer
	refreshDelay time.Duration

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// NewStore creates a Store and starts watching the provided feed directory.
func NewStore(root string, debounce time.Duration, logger *log.Logger) (*Store, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.Default()
	}

	s := &Store{
		root:         filepath.Clean(root),
		watcher:      watcher,
		logger:       logger,
		feeds:        make(map[string]Feed),
		refreshDelay: debounce,
		done:         make(chan struct{}),
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		watcher.Close()
		return nil, err
	}

	if err := watcher.Add(s.root); err != nil {
		watcher.Close()
		return nil, err
	}

	if err := s.refresh(); err != nil {
		watcher.Close()
		return nil, err
	}

	s.wg.Add(1)
	go s.run()

	return s, nil
}

// Close stops the watcher and cleans up resources.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)

		s.refreshMu.Lock()
		if s.refreshTimer != nil {
			s.refreshTimer.Stop()
			s.refreshTimer = nil
		}
		s.refreshMu.Unlock()

		s.closeErr = s.watcher.Close()
		s.wg.Wait()
	})
	return s.closeErr
}

// Lookup returns the feed registered under the given slug.
func (s *Store) Lookup(slug string) (Feed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	feed, ok := s.feeds[strings.ToLower(slug)]
	return feed, ok
}

// List returns a snapshot of all indexed feeds sorted by slug.
func (s *Store) List() []Feed {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Feed, 0, len(s.feeds))
	for _, feed := range s.feeds {
		result = append(result, feed)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Slug < result[j].Slug
	})
	return result
}

func (s *Store) run() {
	defer s.wg.Done()

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Printf("feedstore watcher error: %v", err)
		case <-s.done:
			return
		}
	}
}

func (s *Store) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !isFeedFile(event.Name) && event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	s.scheduleRefresh()
}

func (s *Store) refresh() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return err
	}

	feeds := make(map[string]Feed, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isFeedFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.Printf("feedstore stat error for %s: %v", entry.Name(), err)
			continue
		}

		slug := strings.ToLower(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		feeds[slug] = Feed{
			Slug:     slug,
			Path:     filepath.Join(s.root, entry.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		}
	}

	s.mu.Lock()
	s.feeds = feeds
	s.mu.Unlock()

	s.logger.Printf("feedstore refreshed with %d feeds", len(feeds))
	return nil
}

func (s *Store) scheduleRefresh() {
	select {
	case <-s.done:
		return
	default:
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if s.refreshTimer != nil {
		s.refreshTimer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(s.refreshDelay, func() {
		if err := s.refresh(); err != nil {
			s.logger.Printf("feedstore refresh error: %v", err)
		}

		s.refreshMu.Lock()
		if s.refreshTimer == timer {
			s.refreshTimer = nil
		}
		s.refreshMu.Unlock()
	})

	s.refreshTimer = timer
}

// Temp files from atomic feed writes start with a dot and must not be indexed.
func isFeedFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".xml")
}
