package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/semmidev/snapvault/internal/domain"
)

// fakeDatabase writes "-- dump of <db>" unless the database is listed in
// fail or empty.
type fakeDatabase struct {
	mu      sync.Mutex
	dumped  []string
	paths   []string
	fail    map[string]error
	empty   map[string]bool
	pingErr error
	onDump  func(database string)
}

func (f *fakeDatabase) Backup(ctx context.Context, database, outputPath string) error {
	f.mu.Lock()
	f.dumped = append(f.dumped, database)
	f.paths = append(f.paths, outputPath)
	f.mu.Unlock()

	if f.onDump != nil {
		f.onDump(database)
	}
	if err := f.fail[database]; err != nil {
		return err
	}
	if f.empty[database] {
		return nil
	}
	return os.WriteFile(outputPath, []byte("-- dump of "+database+"\n"), 0600)
}

func (f *fakeDatabase) GetType() string { return "fake" }

func (f *fakeDatabase) Ping(ctx context.Context) error { return f.pingErr }

// memStorage records every write in memory. Setting failWith makes every
// write return that error.
type memStorage struct {
	mu       sync.Mutex
	dirs     []string
	files    map[string][]byte
	deleted  []string
	objects  []domain.StoredObject
	failWith error
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (m *memStorage) MakeDirectory(ctx context.Context, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.dirs = append(m.dirs, dir)
	return nil
}

func (m *memStorage) WriteStream(ctx context.Context, path string, r io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	return m.PutFile(ctx, path, buf.Bytes())
}

func (m *memStorage) PutFile(ctx context.Context, path string, contents []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.files[path] = contents
	return nil
}

func (m *memStorage) List(ctx context.Context, dir string) ([]domain.StoredObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.objects, nil
}

func (m *memStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, path)
	return nil
}

func (m *memStorage) file(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[path]
	return b, ok
}

// silentArchiver produces a zero-byte archive.
type silentArchiver struct{}

func (silentArchiver) Archive(dst io.Writer, entries []domain.ArchiveEntry) ([]string, error) {
	return nil, nil
}

type failingArchiver struct{}

func (failingArchiver) Archive(dst io.Writer, entries []domain.ArchiveEntry) ([]string, error) {
	return nil, errors.New("disk full")
}

func strPtr(s string) *string { return &s }

// recordingLogger keeps formatted debug lines.
type recordingLogger struct {
	mu    sync.Mutex
	debug []string
}

func (l *recordingLogger) Debugf(template string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = append(l.debug, fmt.Sprintf(template, args...))
}

func (l *recordingLogger) Infof(template string, args ...interface{})  {}
func (l *recordingLogger) Warnf(template string, args ...interface{})  {}
func (l *recordingLogger) Errorf(template string, args ...interface{}) {}
