package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/semmidev/snapvault/internal/domain"
)

type Dumper struct {
	db      domain.Database
	tempDir string
	temps   *TempFiles
	logger  Logger
}

func NewDumper(db domain.Database, tempDir string, temps *TempFiles, logger Logger) *Dumper {
	return &Dumper{
		db:      db,
		tempDir: tempDir,
		temps:   temps,
		logger:  logger,
	}
}

// DumpAll dumps each database in order and fails on the first dump that
// errors or produces an empty file.
func (d *Dumper) DumpAll(ctx context.Context, databases []string) ([]domain.DumpEntry, error) {
	if len(databases) == 0 {
		return nil, NewDumpError("nothing to back up", nil)
	}

	if err := resetScratchDir(d.tempDir); err != nil {
		return nil, NewDumpError("prepare scratch directory", err)
	}

	if err := d.db.Ping(ctx); err != nil {
		return nil, NewDumpError("database unreachable", err)
	}

	entries := make([]domain.DumpEntry, 0, len(databases))
	for _, database := range databases {
		if err := ctx.Err(); err != nil {
			return nil, NewDumpError("backup cancelled", err)
		}

		entry, err := d.dump(ctx, database)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (d *Dumper) dump(ctx context.Context, database string) (domain.DumpEntry, error) {
	d.logger.Infof("[%s] Dumping %s database...", database, d.db.GetType())

	f, err := d.temps.Create(d.tempDir, safeFileName(database)+"-*.sql")
	if err != nil {
		return domain.DumpEntry{}, NewDumpError("create dump file for "+database, err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return domain.DumpEntry{}, NewDumpError("create dump file for "+database, err)
	}

	if err := d.db.Backup(ctx, database, path); err != nil {
		return domain.DumpEntry{}, NewDumpError("dump of "+database+" failed", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.DumpEntry{}, NewDumpError("dump of "+database+" failed", err)
	}
	if info.Size() == 0 {
		return domain.DumpEntry{}, NewDumpError(fmt.Sprintf("dump of %s produced an empty file", database), nil)
	}

	d.logger.Infof("[%s] Dump complete, size: %s", database, humanize.Bytes(uint64(info.Size())))
	return domain.NewDumpEntry(database, path), nil
}

// resetScratchDir removes stale files left by an earlier run.
func resetScratchDir(dir string) error {
	clean := filepath.Clean(dir)
	if dir == "" || clean == "." || clean == string(filepath.Separator) {
		return fmt.Errorf("refusing to clear scratch directory %q", dir)
	}

	if err := os.RemoveAll(clean); err != nil {
		return fmt.Errorf("clear %s: %w", clean, err)
	}
	if err := os.MkdirAll(clean, 0700); err != nil {
		return fmt.Errorf("create %s: %w", clean, err)
	}
	return nil
}

func safeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?':
			return '_'
		}
		return r
	}, name)
}
