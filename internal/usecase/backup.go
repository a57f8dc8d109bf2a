package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/semmidev/snapvault/internal/domain"
	"go.uber.org/multierr"
)

type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// Settings is the configuration a backup run reads; nothing is looked up globally.
type Settings struct {
	TempDir   string
	Databases []string
	Files     []string
	BasePath  string
	Prefix    string
	Suffix    string
}

type Status string

const (
	StatusNothingToBackup Status = "nothing_to_backup"
	StatusCompleted       Status = "completed"
)

type Report struct {
	RunID   string
	Status  Status
	Archive *domain.Archive
	Results []DestinationResult
}

func (r *Report) Failed() []DestinationResult {
	var failed []DestinationResult
	for _, result := range r.Results {
		if !result.Succeeded() {
			failed = append(failed, result)
		}
	}
	return failed
}

// Err combines every destination failure, or returns nil.
func (r *Report) Err() error {
	var errs error
	for _, result := range r.Failed() {
		errs = multierr.Append(errs, result.Err)
	}
	return errs
}

type Backup struct {
	db           domain.Database
	archiver     domain.Archiver
	destinations []domain.Destination
	settings     Settings
	logger       Logger
	now          func() time.Time
}

func NewBackup(
	db domain.Database,
	archiver domain.Archiver,
	destinations []domain.Destination,
	settings Settings,
	logger Logger,
) *Backup {
	return &Backup{
		db:           db,
		archiver:     archiver,
		destinations: destinations,
		settings:     settings,
		logger:       logger,
		now:          time.Now,
	}
}

// Execute runs one backup. Validation, dump and archive failures abort the
// run with an error; destination failures are reported per destination.
// Temp files are released on every path out.
func (uc *Backup) Execute(ctx context.Context, opts Options) (*Report, error) {
	start := uc.now()

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString()}
	uc.logger.Infof("Starting backup %s...", report.RunID)

	databases, files := uc.sources(opts)
	if len(databases) == 0 && len(files) == 0 {
		uc.logger.Infof("Nothing to back up")
		report.Status = StatusNothingToBackup
		return report, nil
	}

	temps := NewTempFiles()
	defer func() {
		uc.logger.Infof("Cleaning up temporary files...")
		if releaseErr := temps.Release(); releaseErr != nil {
			uc.logger.Warnf("Failed to remove temporary files: %v", releaseErr)
		}
	}()

	var entries []domain.ArchiveEntry

	if len(databases) > 0 {
		dumps, err := NewDumper(uc.db, uc.settings.TempDir, temps, uc.logger).DumpAll(ctx, databases)
		if err != nil {
			uc.logger.Errorf("Backup failed: %v", err)
			return nil, err
		}
		for _, dump := range dumps {
			entries = append(entries, dump.ArchiveEntry)
		}
	}

	fileEntries, err := collectFiles(files, uc.logger)
	if err != nil {
		uc.logger.Errorf("Backup failed: %v", err)
		return nil, NewArchiveError("collect files", err)
	}
	entries = append(entries, fileEntries...)

	archive, err := NewArchiveBuilder(uc.archiver, uc.settings.TempDir, temps, uc.logger).Build(ctx, entries)
	if err != nil {
		uc.logger.Errorf("Backup failed: %v", err)
		return nil, err
	}
	report.Archive = archive

	publisher := NewPublisher(
		uc.settings.BasePath,
		opts.resolvePrefix(uc.settings.Prefix),
		opts.resolveSuffix(uc.settings.Suffix),
		uc.logger,
	)
	report.Results = publisher.PublishAll(ctx, archive, uc.destinations, start)
	report.Status = StatusCompleted

	if failed := len(report.Failed()); failed > 0 {
		uc.logger.Warnf("Backup completed with %d of %d destination(s) failing in %s",
			failed, len(report.Results), time.Since(start).Round(time.Second))
	} else {
		uc.logger.Infof("Backup completed in %s", time.Since(start).Round(time.Second))
	}

	return report, nil
}

func (uc *Backup) sources(opts Options) (databases, files []string) {
	if !opts.OnlyFiles {
		databases = uc.settings.Databases
	}
	if !opts.OnlyDB {
		files = uc.settings.Files
	}
	return databases, files
}
