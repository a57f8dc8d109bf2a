package domain

import "context"

// Database dumps named databases reachable through one connection.
type Database interface {
	Backup(ctx context.Context, database, outputPath string) error
	GetType() string
	Ping(ctx context.Context) error
}
