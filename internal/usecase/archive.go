package usecase

import (
	"context"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/semmidev/snapvault/internal/domain"
)

type ArchiveBuilder struct {
	archiver domain.Archiver
	tempDir  string
	temps    *TempFiles
	logger   Logger
	now      func() time.Time
}

func NewArchiveBuilder(archiver domain.Archiver, tempDir string, temps *TempFiles, logger Logger) *ArchiveBuilder {
	return &ArchiveBuilder{
		archiver: archiver,
		tempDir:  tempDir,
		temps:    temps,
		logger:   logger,
		now:      time.Now,
	}
}

// Build packs entries into a zip in the scratch directory. An empty result
// is logged, not rejected.
func (a *ArchiveBuilder) Build(ctx context.Context, entries []domain.ArchiveEntry) (*domain.Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewArchiveError("backup cancelled", err)
	}

	if err := os.MkdirAll(a.tempDir, 0700); err != nil {
		return nil, NewArchiveError("prepare scratch directory", err)
	}

	a.logger.Infof("Zipping %d files...", len(entries))

	f, err := a.temps.Create(a.tempDir, "archive-*.zip")
	if err != nil {
		return nil, NewArchiveError("create archive file", err)
	}

	added, err := a.archiver.Archive(f, entries)
	if err != nil {
		f.Close()
		return nil, NewArchiveError("write archive", err)
	}

	if err := f.Close(); err != nil {
		return nil, NewArchiveError("close archive", err)
	}

	for _, entry := range entries {
		if !slices.Contains(added, entry.Name) {
			a.logger.Debugf("Skipped %s: source %s no longer exists", entry.Name, entry.SourcePath)
		}
	}

	info, err := os.Stat(f.Name())
	if err != nil {
		return nil, NewArchiveError("stat archive", err)
	}

	archive := &domain.Archive{
		Path:      f.Name(),
		Size:      info.Size(),
		Entries:   added,
		CreatedAt: a.now(),
	}

	if archive.Empty() {
		a.logger.Warnf("Backup archive %s is empty", archive.Path)
	} else {
		a.logger.Infof("Created zip containing %d files. Size is %s", len(added), humanize.Bytes(uint64(archive.Size)))
	}

	return archive, nil
}
