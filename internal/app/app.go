package app

import (
	"context"
	"fmt"
	"io"

	"github.com/semmidev/snapvault/internal/adapter/compressor"
	"github.com/semmidev/snapvault/internal/adapter/database"
	"github.com/semmidev/snapvault/internal/adapter/storage"
	"github.com/semmidev/snapvault/internal/config"
	"github.com/semmidev/snapvault/internal/domain"
	"github.com/semmidev/snapvault/internal/infrastructure/logger"
	"github.com/semmidev/snapvault/internal/usecase"
)

type App struct {
	config       *config.Config
	logger       *logger.Logger
	destinations []domain.Destination
	backupUC     *usecase.Backup
	cleanupUC    *usecase.Cleanup
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return newWithLogger(ctx, cfg, log)
}

func newWithLogger(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	log.Infof("Starting %s", cfg.App.Name)

	db, err := database.New(&cfg.Backup.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Infof("Found %d database(s) configured on %s", len(cfg.Backup.Databases), db.GetType())

	destinations := initializeDestinations(ctx, cfg, log)

	settings := usecase.Settings{
		TempDir:   cfg.Backup.TempDir,
		Databases: cfg.Backup.Databases,
		Files:     cfg.Backup.Files,
		BasePath:  cfg.Destination.Path,
		Prefix:    cfg.Destination.Prefix,
		Suffix:    cfg.Destination.Suffix,
	}

	return &App{
		config:       cfg,
		logger:       log,
		destinations: destinations,
		backupUC:     usecase.NewBackup(db, compressor.NewZip(), destinations, settings, log),
		cleanupUC:    usecase.NewCleanup(destinations, log, settings, cfg.Backup.RetentionDays),
	}, nil
}

// initializeDestinations builds one storage per configured destination, in
// order. A destination that cannot be initialized is kept as a failing
// placeholder so the run reports it instead of silently skipping it.
func initializeDestinations(ctx context.Context, cfg *config.Config, log *logger.Logger) []domain.Destination {
	disks := cfg.GetDestinations()
	destinations := make([]domain.Destination, 0, len(disks))

	for _, disk := range disks {
		stor, err := newStorage(ctx, disk.DiskConfig)
		if err != nil {
			log.Errorf("Failed to initialize disk %s (%s): %v", disk.Name, disk.Driver, err)
			stor = unavailableStorage{err: fmt.Errorf("disk %s unavailable: %w", disk.Name, err)}
		} else {
			log.Infof("✓ Disk %s enabled (%s)", disk.Name, disk.Driver)
		}

		destinations = append(destinations, domain.Destination{
			Name:               disk.Name,
			Driver:             disk.Driver,
			Storage:            stor,
			SupportsMarkerFile: disk.SupportsMarkerFile(),
		})
	}

	return destinations
}

func newStorage(ctx context.Context, disk config.DiskConfig) (domain.Storage, error) {
	switch disk.Driver {
	case "local":
		return storage.NewLocal(disk.Root)
	case "s3":
		return storage.NewS3(ctx, &disk)
	case "gcs":
		return storage.NewGCS(ctx, &disk)
	case "azure":
		return storage.NewAzure(&disk)
	case "gdrive":
		return storage.NewGDrive(ctx, &disk)
	case "telegram":
		return storage.NewTelegram(&disk)
	default:
		return nil, fmt.Errorf("unsupported driver %q", disk.Driver)
	}
}

type unavailableStorage struct {
	err error
}

func (u unavailableStorage) MakeDirectory(context.Context, string) error { return u.err }

func (u unavailableStorage) WriteStream(context.Context, string, io.Reader) error { return u.err }

func (u unavailableStorage) PutFile(context.Context, string, []byte) error { return u.err }

func (u unavailableStorage) List(context.Context, string) ([]domain.StoredObject, error) {
	return nil, u.err
}

func (u unavailableStorage) Delete(context.Context, string) error { return u.err }

func (a *App) RunBackup(ctx context.Context, opts usecase.Options) (*usecase.Report, error) {
	return a.backupUC.Execute(ctx, opts)
}

func (a *App) RunCleanup(ctx context.Context) error {
	return a.cleanupUC.Execute(ctx)
}

func (a *App) Destinations() []domain.Destination {
	return a.destinations
}

func (a *App) Logger() *logger.Logger {
	return a.logger
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down application...")
	a.logger.Close()
}
