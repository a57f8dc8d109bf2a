package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os/exec"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/semmidev/snapvault/internal/config"
)

type MySQLDatabase struct {
	config *config.ConnectionConfig
	open   func(dsn string) (*sql.DB, error)
}

func NewMySQL(cfg *config.ConnectionConfig) *MySQLDatabase {
	return &MySQLDatabase{
		config: cfg,
		open: func(dsn string) (*sql.DB, error) {
			return sql.Open("mysql", dsn)
		},
	}
}

func (m *MySQLDatabase) Backup(ctx context.Context, database, outputPath string) error {
	args := []string{
		fmt.Sprintf("--host=%s", m.config.Host),
		fmt.Sprintf("--port=%d", m.port()),
		fmt.Sprintf("--user=%s", m.config.Username),
		"--single-transaction",
		"--quick",
		"--lock-tables=false",
		"--routines",
		"--triggers",
		"--events",
		fmt.Sprintf("--result-file=%s", outputPath),
		database,
	}

	cmd := exec.CommandContext(ctx, "mysqldump", args...)
	cmd.Env = commandEnv("MYSQL_PWD", m.config.Password)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("mysqldump failed: %w, output: %s", err, string(output))
	}

	return nil
}

func (m *MySQLDatabase) GetType() string {
	return "mysql"
}

// Ping opens a short-lived connection to the server without selecting a schema.
func (m *MySQLDatabase) Ping(ctx context.Context) error {
	db, err := m.open(m.dsn())
	if err != nil {
		return fmt.Errorf("mysql ping failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("mysql ping failed: %w", err)
	}

	return nil
}

func (m *MySQLDatabase) dsn() string {
	cfg := mysql.NewConfig()
	cfg.User = m.config.Username
	cfg.Passwd = m.config.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(m.config.Host, strconv.Itoa(m.port()))
	return cfg.FormatDSN()
}

func (m *MySQLDatabase) port() int {
	if m.config.Port == 0 {
		return 3306
	}
	return m.config.Port
}
