package usecase

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/multierr"
)

// TempFiles owns every scratch file created during a run. Files are
// registered at creation so Release reclaims them on every exit path.
type TempFiles struct {
	mu    sync.Mutex
	paths []string
}

func NewTempFiles() *TempFiles {
	return &TempFiles{}
}

// Create makes a uniquely named file in dir and registers it before returning.
func (t *TempFiles) Create(dir, pattern string) (*os.File, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	t.paths = append(t.paths, f.Name())
	return f, nil
}

func (t *TempFiles) Track(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths = append(t.paths, path)
}

func (t *TempFiles) Paths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.paths...)
}

// Release removes every registered path. Already-missing files are ignored.
func (t *TempFiles) Release() error {
	t.mu.Lock()
	paths := t.paths
	t.paths = nil
	t.mu.Unlock()

	var errs error
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			errs = multierr.Append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errs
}
