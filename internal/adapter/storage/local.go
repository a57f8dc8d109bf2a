package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/semmidev/snapvault/internal/domain"
	"github.com/spf13/afero"
)

type LocalStorage struct {
	fs afero.Fs
}

// NewLocal roots a local disk at root, creating it when missing.
func NewLocal(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return NewLocalFs(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

func NewLocalFs(fs afero.Fs) *LocalStorage {
	return &LocalStorage{fs: fs}
}

func (l *LocalStorage) MakeDirectory(ctx context.Context, dir string) error {
	if err := l.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// WriteStream copies r into a sibling .part file and renames it into place,
// so a failed copy never leaves a truncated archive under the final name.
func (l *LocalStorage) WriteStream(ctx context.Context, p string, r io.Reader) error {
	partial := p + ".part"

	dest, err := l.fs.Create(partial)
	if err != nil {
		return fmt.Errorf("failed to create dest: %w", err)
	}

	if _, err := io.Copy(dest, readerWithContext(ctx, r)); err != nil {
		dest.Close()
		l.fs.Remove(partial)
		return fmt.Errorf("failed to copy: %w", err)
	}

	if err := dest.Close(); err != nil {
		l.fs.Remove(partial)
		return fmt.Errorf("failed to close dest: %w", err)
	}

	if err := l.fs.Rename(partial, p); err != nil {
		l.fs.Remove(partial)
		return fmt.Errorf("failed to move %s into place: %w", p, err)
	}

	return nil
}

func (l *LocalStorage) PutFile(ctx context.Context, p string, contents []byte) error {
	if err := afero.WriteFile(l.fs, p, contents, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

func (l *LocalStorage) List(ctx context.Context, dir string) ([]domain.StoredObject, error) {
	if dir == "" {
		dir = "."
	}

	entries, err := afero.ReadDir(l.fs, dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []domain.StoredObject
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, domain.StoredObject{
			Name:         entry.Name(),
			Size:         entry.Size(),
			LastModified: entry.ModTime(),
		})
	}

	return files, nil
}

func (l *LocalStorage) Delete(ctx context.Context, p string) error {
	if err := l.fs.Remove(path.Clean(p)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &contextReader{ctx: ctx, r: r}
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
