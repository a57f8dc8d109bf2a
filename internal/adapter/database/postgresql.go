package database

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/semmidev/snapvault/internal/config"
)

type PostgreSQLDatabase struct {
	config *config.ConnectionConfig
}

func NewPostgreSQL(cfg *config.ConnectionConfig) *PostgreSQLDatabase {
	return &PostgreSQLDatabase{config: cfg}
}

// Backup writes a plain SQL dump so the archive entry is readable as .sql.
func (p *PostgreSQLDatabase) Backup(ctx context.Context, database, outputPath string) error {
	cmd := exec.CommandContext(ctx, "pg_dump",
		fmt.Sprintf("--host=%s", p.config.Host),
		fmt.Sprintf("--port=%d", p.port()),
		fmt.Sprintf("--username=%s", p.config.Username),
		"--format=plain",
		"--no-password",
		fmt.Sprintf("--file=%s", outputPath),
		database,
	)
	cmd.Env = p.env()

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("pg_dump failed: %w, output: %s", err, string(output))
	}

	return nil
}

func (p *PostgreSQLDatabase) GetType() string {
	return "postgresql"
}

func (p *PostgreSQLDatabase) Ping(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "pg_isready",
		fmt.Sprintf("--host=%s", p.config.Host),
		fmt.Sprintf("--port=%d", p.port()),
		fmt.Sprintf("--username=%s", p.config.Username),
	)
	cmd.Env = p.env()

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("postgresql ping failed: %w, output: %s", err, string(output))
	}

	return nil
}

func (p *PostgreSQLDatabase) env() []string {
	env := commandEnv("PGPASSWORD", p.config.Password)
	if p.config.SSLMode != "" {
		env = append(env, "PGSSLMODE="+p.config.SSLMode)
	}
	return env
}

func (p *PostgreSQLDatabase) port() int {
	if p.config.Port == 0 {
		return 5432
	}
	return p.config.Port
}
