package usecase

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/semmidev/snapvault/internal/domain"
	"go.uber.org/multierr"
)

// Cleanup prunes backups older than the retention window from every destination.
type Cleanup struct {
	destinations  []domain.Destination
	logger        Logger
	basePath      string
	prefix        string
	suffix        string
	retentionDays int
	now           func() time.Time
}

func NewCleanup(
	destinations []domain.Destination,
	logger Logger,
	settings Settings,
	retentionDays int,
) *Cleanup {
	return &Cleanup{
		destinations:  destinations,
		logger:        logger,
		basePath:      settings.BasePath,
		prefix:        settings.Prefix,
		suffix:        settings.Suffix,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

func (uc *Cleanup) Execute(ctx context.Context) error {
	if uc.retentionDays <= 0 {
		uc.logger.Infof("Retention disabled, nothing to clean up")
		return nil
	}

	uc.logger.Infof("Starting cleanup, retention: %d days", uc.retentionDays)

	cutoff := uc.now().AddDate(0, 0, -uc.retentionDays)
	errs := make([]error, len(uc.destinations))

	var wg sync.WaitGroup
	for i, dest := range uc.destinations {
		wg.Add(1)
		go func(i int, dest domain.Destination) {
			defer wg.Done()

			if err := uc.cleanupDestination(ctx, dest, cutoff); err != nil {
				uc.logger.Errorf("Cleanup failed for %s: %v", dest.Name, err)
				errs[i] = fmt.Errorf("%s: %w", dest.Name, err)
			}
		}(i, dest)
	}
	wg.Wait()

	uc.logger.Infof("Cleanup completed")
	return multierr.Combine(errs...)
}

func (uc *Cleanup) cleanupDestination(ctx context.Context, dest domain.Destination, cutoff time.Time) error {
	objects, err := dest.Storage.List(ctx, uc.basePath)
	if errors.Is(err, domain.ErrListUnsupported) {
		uc.logger.Debugf("Skipping %s: pruning is not supported by the %s driver", dest.Name, dest.Driver)
		return nil
	}
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}

	var errs error
	deleted := 0
	for _, object := range objects {
		createdAt, ok := uc.parseBackupTime(object.Name)
		if !ok || !createdAt.Before(cutoff) {
			continue
		}

		uc.logger.Infof("Deleting old backup from %s: %s", dest.Name, object.Name)

		if err := dest.Storage.Delete(ctx, path.Join(uc.basePath, object.Name)); err != nil {
			uc.logger.Errorf("Failed to delete %s from %s: %v", object.Name, dest.Name, err)
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", object.Name, err))
			continue
		}
		deleted++
	}

	uc.logger.Infof("Deleted %d old backup(s) from %s", deleted, dest.Name)
	return errs
}

// parseBackupTime extracts the timestamp from a name produced by the
// publisher. Names of any other shape are never touched.
func (uc *Cleanup) parseBackupTime(name string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(name, uc.prefix)
	if !ok {
		return time.Time{}, false
	}
	rest, ok = strings.CutSuffix(rest, uc.suffix+".zip")
	if !ok || len(rest) != len(TimestampLayout) {
		return time.Time{}, false
	}

	t, err := time.ParseInLocation(TimestampLayout, rest, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
