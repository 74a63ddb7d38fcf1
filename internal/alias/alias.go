// Package alias maintains the alternate show-name map: old URL slugs that
// must keep resolving after a show is renamed. The map lives in a YAML file
// editors maintain by hand, so it is watched and reloaded while serving.
package alias

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

// Store manages the alias map backed by a single file on disk.
type Store struct {
	file         string
	logger       *log.Logger
	watcher      *fsnotify.Watcher
	refreshDelay time.Duration

	mu      sync.RWMutex
	aliases map[string]string

	refreshMu    sync.Mutex
	refreshTimer *time.Timer
	done         chan struct{}
	wg           sync.WaitGroup
	closeOnce    sync.Once
	closeErr     error
}

// NewStore creates a Store backed by the provided alias file path. The file
// holds a flat YAML mapping from old slug to the current slug.
func NewStore(filePath string, debounce time.Duration, logger *log.Logger) (*Store, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.Default()
	}

	s := &Store{
		file:         filepath.Clean(filePath),
		logger:       logger,
		watcher:      watcher,
		refreshDelay: debounce,
		aliases:      make(map[string]string),
		done:         make(chan struct{}),
	}

	if err := s.refresh(); err != nil {
		watcher.Close()
		return nil, err
	}

	dir := filepath.Dir(s.file)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	if err := watcher.Add(s.file); err != nil {
		s.logger.Printf("alias watcher could not watch file directly: %v", err)
	}

	s.wg.Add(1)
	go s.run()

	return s, nil
}

// Close stops the file watcher and releases resources.
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

// Resolve follows the alias map from the requested slug to a canonical slug.
// Lookups are case- and punctuation-insensitive. Chains are followed a
// bounded number of steps so an accidental cycle in the file cannot hang a
// request; the second return value is false when no alias matched.
func (s *Store) Resolve(requested string) (string, bool) {
	key := Normalize(requested)
	if key == "" {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	target, ok := s.aliases[key]
	if !ok {
		return "", false
	}
	for i := 0; i < 8; i++ {
		next, ok := s.aliases[Normalize(target)]
		if !ok {
			return target, true
		}
		target = next
	}
	s.logger.Printf("alias cycle detected around %q", requested)
	return target, true
}

// Normalize reduces a requested name to its comparable slug form.
func Normalize(name string) string {
	return slug.Make(strings.TrimSpace(name))
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
			s.logger.Printf("alias watcher error: %v", err)
		case <-s.done:
			return
		}
	}
}

func (s *Store) handleEvent(event fsnotify.Event) {
	cleanName := filepath.Clean(event.Name)
	if cleanName != s.file {
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
		s.scheduleRefresh()
	}
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

	s.refreshTimer = time.AfterFunc(s.refreshDelay, func() {
		if err := s.refresh(); err != nil {
			s.logger.Printf("alias refresh error: %v", err)
		}

		s.refreshMu.Lock()
		if s.refreshTimer != nil {
			s.refreshTimer = nil
		}
		s.refreshMu.Unlock()
	})
}

func (s *Store) refresh() error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.mu.Lock()
			s.aliases = make(map[string]string)
			s.mu.Unlock()
			s.logger.Printf("alias file %s missing; no aliases loaded", s.file)
			return nil
		}
		return err
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	aliases := make(map[string]string, len(raw))
	for from, to := range raw {
		from = Normalize(from)
		to = strings.TrimSpace(to)
		if from == "" || to == "" {
			continue
		}
		aliases[from] = to
	}

	s.mu.Lock()
	s.aliases = aliases
	s.mu.Unlock()

	s.logger.Printf("loaded %d show aliases", len(aliases))
	return nil
}
