package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/semmidev/snapvault/internal/config"
	_ "modernc.org/sqlite"
)

// SQLiteDatabase snapshots <path>/<database>.db files with VACUUM INTO.
type SQLiteDatabase struct {
	config *config.ConnectionConfig
}

func NewSQLite(cfg *config.ConnectionConfig) *SQLiteDatabase {
	return &SQLiteDatabase{config: cfg}
}

func (s *SQLiteDatabase) Backup(ctx context.Context, database, outputPath string) error {
	source := s.file(database)
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("sqlite database %s: %w", database, err)
	}

	db, err := sql.Open("sqlite", source)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer db.Close()

	// VACUUM INTO refuses to overwrite, and the caller pre-creates the file.
	if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear output file: %w", err)
	}

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", outputPath); err != nil {
		return fmt.Errorf("sqlite snapshot failed: %w", err)
	}

	return nil
}

func (s *SQLiteDatabase) GetType() string {
	return "sqlite"
}

func (s *SQLiteDatabase) Ping(ctx context.Context) error {
	info, err := os.Stat(s.config.Path)
	if err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("sqlite ping failed: %s is not a directory", s.config.Path)
	}
	return nil
}

func (s *SQLiteDatabase) file(database string) string {
	return filepath.Join(s.config.Path, database+".db")
}
