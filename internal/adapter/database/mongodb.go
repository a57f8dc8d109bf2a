package database

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"

	"github.com/semmidev/snapvault/internal/config"
)

type MongoDBDatabase struct {
	config *config.ConnectionConfig
}

func NewMongoDB(cfg *config.ConnectionConfig) *MongoDBDatabase {
	return &MongoDBDatabase{config: cfg}
}

func (m *MongoDBDatabase) Backup(ctx context.Context, database, outputPath string) error {
	args := []string{
		fmt.Sprintf("--uri=%s", m.uri(database)),
		fmt.Sprintf("--archive=%s", outputPath),
	}

	cmd := exec.CommandContext(ctx, "mongodump", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("mongodump failed: %w, output: %s", err, string(output))
	}

	return nil
}

func (m *MongoDBDatabase) GetType() string {
	return "mongodb"
}

func (m *MongoDBDatabase) Ping(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "mongosh", m.uri("admin"), "--quiet", "--eval", "db.runCommand({ ping: 1 })")
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mongodb ping failed: %w, output: %s", err, string(output))
	}

	return nil
}

func (m *MongoDBDatabase) uri(database string) string {
	port := m.config.Port
	if port == 0 {
		port = 27017
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   fmt.Sprintf("%s:%d", m.config.Host, port),
		Path:   "/" + database,
	}
	if m.config.Username != "" {
		u.User = url.UserPassword(m.config.Username, m.config.Password)
	}
	if m.config.AuthDatabase != "" {
		u.RawQuery = url.Values{"authSource": {m.config.AuthDatabase}}.Encode()
	}

	return u.String()
}
