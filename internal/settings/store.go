package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Store holds the current settings for one file and reloads them when the
// file changes on disk.
type Store struct {
	path string

	mu       sync.RWMutex
	current  Settings
	onChange []func(Settings)
	watcher  *fsnotify.Watcher
	errChan  chan error
}

func NewStore(path string, initial Settings) *Store {
	return &Store{
		path:    path,
		current: initial,
		errChan: make(chan error, 1),
	}
}

// Open loads path, applies environment overrides and validates the result.
func Open(path string) (*Store, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := s.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return NewStore(path, s), nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update replaces the in-memory settings without notifying OnChange callbacks.
func (s *Store) Update(fn func(*Settings)) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.current)
	return s.current
}

// Save persists the in-memory settings.
func (s *Store) Save() error {
	return Save(s.path, s.Get())
}

// OnChange registers fn to run after a reload that changed at least one value.
func (s *Store) OnChange(fn func(Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Errors reports reload failures. Errors are dropped while the channel is full.
func (s *Store) Errors() <-chan error {
	return s.errChan
}

// Watch reloads the file on change until ctx is done. The parent directory is
// watched so atomic renames are seen.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch settings dir: %w", err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	go s.watchLoop(ctx, watcher)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	base := filepath.Base(s.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, s.reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.reportError(err)
		}
	}
}

func (s *Store) reload() {
	next, err := Load(s.path)
	if err != nil {
		s.reportError(fmt.Errorf("failed to reload settings: %w", err))
		return
	}
	if err := next.ApplyEnv(); err != nil {
		s.reportError(fmt.Errorf("invalid environment override: %w", err))
		return
	}
	if err := next.Validate(); err != nil {
		s.reportError(fmt.Errorf("invalid settings %s: %w", s.path, err))
		return
	}

	s.mu.Lock()
	if next == s.current {
		s.mu.Unlock()
		return
	}
	s.current = next
	callbacks := append([]func(Settings){}, s.onChange...)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(next)
	}
}

func (s *Store) reportError(err error) {
	select {
	case s.errChan <- err:
	default:
	}
}

// Close stops watching. Callers still cancel the Watch context.
func (s *Store) Close() error {
	s.mu.Lock()
	watcher := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if watcher == nil {
		return nil
	}
	return watcher.Close()
}
