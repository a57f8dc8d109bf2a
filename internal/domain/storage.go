package domain

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrListUnsupported is returned by List on backends whose uploads cannot be
// enumerated, and therefore cannot be pruned.
var ErrListUnsupported = errors.New("listing is not supported")

type StoredObject struct {
	Name         string
	Size         int64
	LastModified time.Time
}

// Storage is a destination backend addressed by slash-separated paths.
type Storage interface {
	MakeDirectory(ctx context.Context, dir string) error
	WriteStream(ctx context.Context, path string, r io.Reader) error
	PutFile(ctx context.Context, path string, contents []byte) error
	List(ctx context.Context, dir string) ([]StoredObject, error)
	Delete(ctx context.Context, path string) error
}

// Destination is a configured storage backend the archive is copied to.
type Destination struct {
	Name               string
	Driver             string
	Storage            Storage
	SupportsMarkerFile bool
}
