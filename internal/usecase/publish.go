package usecase

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"github.com/semmidev/snapvault/internal/domain"
)

const (
	TimestampLayout = "20060102150405"

	markerFileName    = ".gitignore"
	markerFileContent = "*\n!.gitignore\n"
)

type DestinationResult struct {
	Destination string
	Path        string
	Duration    time.Duration
	Err         error
}

func (r DestinationResult) Succeeded() bool {
	return r.Err == nil
}

type Publisher struct {
	basePath string
	prefix   string
	suffix   string
	logger   Logger
}

func NewPublisher(basePath, prefix, suffix string, logger Logger) *Publisher {
	return &Publisher{
		basePath: basePath,
		prefix:   prefix,
		suffix:   suffix,
		logger:   logger,
	}
}

func (p *Publisher) Filename(at time.Time) string {
	return p.prefix + at.Format(TimestampLayout) + p.suffix + ".zip"
}

func (p *Publisher) DestinationPath(at time.Time) string {
	if p.basePath == "" {
		return p.Filename(at)
	}
	return path.Join(p.basePath, p.Filename(at))
}

// PublishAll copies the archive to every destination concurrently and
// waits for all of them. One destination failing never stops the others.
func (p *Publisher) PublishAll(ctx context.Context, archive *domain.Archive, destinations []domain.Destination, at time.Time) []DestinationResult {
	target := p.DestinationPath(at)
	results := make([]DestinationResult, len(destinations))

	var wg sync.WaitGroup
	for i, dest := range destinations {
		wg.Add(1)
		go func(i int, dest domain.Destination) {
			defer wg.Done()
			results[i] = p.Publish(ctx, archive, dest, target)
		}(i, dest)
	}
	wg.Wait()

	return results
}

func (p *Publisher) Publish(ctx context.Context, archive *domain.Archive, dest domain.Destination, target string) DestinationResult {
	start := time.Now()
	result := DestinationResult{Destination: dest.Name, Path: target}

	p.logger.Infof("Copying zip to disk named %s...", dest.Name)

	if err := p.copy(ctx, archive, dest, target); err != nil {
		result.Err = NewPublishError(dest.Name, err)
		result.Duration = time.Since(start)
		p.logger.Errorf("Copying zip to disk named %s failed: %v", dest.Name, err)
		return result
	}

	result.Duration = time.Since(start)
	p.logger.Infof("Successfully copied zip to disk named %s (%s)", dest.Name, target)
	return result
}

func (p *Publisher) copy(ctx context.Context, archive *domain.Archive, dest domain.Destination, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := path.Dir(target)
	if !isRootDir(dir) {
		if err := dest.Storage.MakeDirectory(ctx, dir); err != nil {
			return fmt.Errorf("make directory: %w", err)
		}
	}

	if dest.SupportsMarkerFile {
		if err := dest.Storage.PutFile(ctx, path.Join(dir, markerFileName), []byte(markerFileContent)); err != nil {
			return fmt.Errorf("write marker file: %w", err)
		}
	}

	f, err := os.Open(archive.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	if err := dest.Storage.WriteStream(ctx, target, f); err != nil {
		return fmt.Errorf("write stream: %w", err)
	}

	return nil
}

func isRootDir(dir string) bool {
	return dir == "" || dir == "." || dir == "/"
}
