package database

import (
	"fmt"
	"os"

	"github.com/semmidev/snapvault/internal/config"
	"github.com/semmidev/snapvault/internal/domain"
)

// New returns the dumper for the configured connection driver.
func New(cfg *config.ConnectionConfig) (domain.Database, error) {
	switch cfg.Driver {
	case "mysql", "mariadb":
		return NewMySQL(cfg), nil
	case "postgresql", "postgres", "pgsql":
		return NewPostgreSQL(cfg), nil
	case "mongodb":
		return NewMongoDB(cfg), nil
	case "sqlite":
		return NewSQLite(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func commandEnv(key, value string) []string {
	env := os.Environ()
	if value != "" {
		env = append(env, key+"="+value)
	}
	return env
}
