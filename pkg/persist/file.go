package persist

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const itemSuffix = ".item"

// Change is a write to a FileStorage directory observed by Watch.
type Change struct {
	Key     string
	Value   string
	Removed bool
}

// FileStorage stores each key as a file in a directory. File names are the
// base64url encoding of the key, so any key is a valid name. Writes go
// through a temp file and a rename.
type FileStorage struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex
	known map[string]string
}

// FileOption configures a FileStorage.
type FileOption func(*FileStorage)

// WithFileLogger sets the logger.
func WithFileLogger(logger *slog.Logger) FileOption {
	return func(s *FileStorage) {
		s.logger = logger
	}
}

// NewFileStorage creates dir if needed and returns a storage rooted there.
func NewFileStorage(dir string, opts ...FileOption) (*FileStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("file storage directory is required")
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}

	s := &FileStorage{
		dir:    dir,
		logger: slog.Default(),
		known:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the storage directory.
func (s *FileStorage) Dir() string {
	return s.dir
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, base64.RawURLEncoding.EncodeToString([]byte(key))+itemSuffix)
}

func keyFromName(name string) (string, bool) {
	if !strings.HasSuffix(name, itemSuffix) {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSuffix(name, itemSuffix))
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// GetItem implements Storage.
func (s *FileStorage) GetItem(key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// SetItem implements Storage.
func (s *FileStorage) SetItem(key, value string) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return err
	}
	s.known[key] = value
	return nil
}

// RemoveItem implements Storage.
func (s *FileStorage) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	delete(s.known, key)
	return nil
}

// Keys implements Lister.
func (s *FileStorage) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if key, ok := keyFromName(e.Name()); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Watch reports changes made to the directory by other writers. Writes made
// through this FileStorage are not reported. The channel is closed when ctx
// is done.
func (s *FileStorage) Watch(ctx context.Context) (<-chan Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch dir %s: %w", s.dir, err)
	}

	if err := s.seed(); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan Change)

	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				key, ok := keyFromName(filepath.Base(event.Name))
				if !ok {
					continue
				}

				change, ok := s.observe(key, event)
				if !ok {
					continue
				}

				select {
				case out <- change:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("file storage watch error", "dir", s.dir, "error", err)
			}
		}
	}()

	return out, nil
}

// seed records the current directory contents so pre-existing items are
// not reported as new.
func (s *FileStorage) seed() error {
	keys, err := s.Keys()
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if data, err := os.ReadFile(s.path(key)); err == nil {
			s.known[key] = string(data)
		}
	}
	return nil
}

// observe reconciles an fsnotify event with the known contents and returns
// the change to report, if any.
func (s *FileStorage) observe(key string, event fsnotify.Event) (Change, bool) {
	if event.Op == fsnotify.Chmod {
		return Change{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Change{}, false
		}
		if _, had := s.known[key]; !had {
			return Change{}, false
		}
		delete(s.known, key)
		return Change{Key: key, Removed: true}, true
	}

	value := string(data)
	if prev, had := s.known[key]; had && prev == value {
		return Change{}, false
	}
	s.known[key] = value
	return Change{Key: key, Value: value}, true
}
