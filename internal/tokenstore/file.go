package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File is a Store backed by a JSON file so the session survives restarts.
// The file is written with 0600 permissions since it holds credentials.
type File struct {
	mu   sync.RWMutex
	path string
	pair Pair
	has  bool

	notifier
}

// NewFile opens a file-backed store at path, loading any existing pair.
// A missing file is not an error; the store starts empty.
func NewFile(path string) (*File, error) {
	f := &File{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var pair Pair
	if err := json.Unmarshal(data, &pair); err != nil {
		// A corrupt token file is treated as logged out rather than fatal;
		// the next Save overwrites it.
		return f, nil
	}
	if pair.Access != "" && pair.Refresh != "" {
		f.pair = pair
		f.has = true
	}

	return f, nil
}

// Load returns the current pair.
func (f *File) Load() (Pair, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pair, f.has
}

// Save replaces the stored pair and persists it to disk. The file is written
// to a temp path and renamed so a crash never leaves a partial pair.
func (f *File) Save(pair Pair) error {
	f.mu.Lock()
	if err := f.writeLocked(pair); err != nil {
		f.mu.Unlock()
		return err
	}
	f.pair = pair
	f.has = true
	f.mu.Unlock()

	f.notify()
	return nil
}

// Clear removes both tokens and deletes the file.
func (f *File) Clear() error {
	f.mu.Lock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.mu.Unlock()
		return fmt.Errorf("remove token file: %w", err)
	}
	f.pair = Pair{}
	f.has = false
	f.mu.Unlock()

	f.notify()
	return nil
}

// Subscribe registers fn to be called after every Save or Clear.
func (f *File) Subscribe(fn func()) func() {
	return f.subscribe(fn)
}

func (f *File) writeLocked(pair Pair) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}

	return nil
}
