package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/semmidev/snapvault/internal/config"
	"github.com/semmidev/snapvault/internal/domain"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GCSStorage struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCS(ctx context.Context, cfg *config.DiskConfig) (*GCSStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs: bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (g *GCSStorage) MakeDirectory(ctx context.Context, dir string) error {
	return nil
}

func (g *GCSStorage) WriteStream(ctx context.Context, p string, r io.Reader) error {
	w := g.client.Bucket(g.bucket).Object(objectKey(g.prefix, p)).NewWriter(ctx)
	w.ContentType = "application/zip"

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload to GCS: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS object: %w", err)
	}

	return nil
}

func (g *GCSStorage) PutFile(ctx context.Context, p string, contents []byte) error {
	w := g.client.Bucket(g.bucket).Object(objectKey(g.prefix, p)).NewWriter(ctx)

	if _, err := w.Write(contents); err != nil {
		w.Close()
		return fmt.Errorf("failed to write GCS object: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS object: %w", err)
	}

	return nil
}

func (g *GCSStorage) List(ctx context.Context, dir string) ([]domain.StoredObject, error) {
	prefix := listPrefix(g.prefix, dir)
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})

	var files []domain.StoredObject
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list GCS objects: %w", err)
		}

		// Delimited listings also yield synthetic prefix entries.
		if attrs.Prefix != "" {
			continue
		}

		name, ok := childName(attrs.Name, prefix)
		if !ok {
			continue
		}
		files = append(files, domain.StoredObject{
			Name:         name,
			Size:         attrs.Size,
			LastModified: attrs.Updated,
		})
	}

	return files, nil
}

func (g *GCSStorage) Delete(ctx context.Context, p string) error {
	err := g.client.Bucket(g.bucket).Object(objectKey(g.prefix, p)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete from GCS: %w", err)
	}

	return nil
}
