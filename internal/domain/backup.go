package domain

import (
	"fmt"
	"time"
)

// ArchiveEntry is one file to be packed into the backup archive.
type ArchiveEntry struct {
	SourcePath string
	Name       string
}

// DumpEntry is the output of dumping a single database.
type DumpEntry struct {
	Database string
	ArchiveEntry
}

func NewDumpEntry(database, path string) DumpEntry {
	return DumpEntry{
		Database: database,
		ArchiveEntry: ArchiveEntry{
			SourcePath: path,
			Name:       DumpArchiveName(database),
		},
	}
}

// DumpArchiveName returns the in-archive name for a database dump.
func DumpArchiveName(database string) string {
	return fmt.Sprintf("%s_backup.sql", database)
}

type Archive struct {
	Path      string
	Size      int64
	Entries   []string
	CreatedAt time.Time
}

// Empty reports whether the archive file holds no bytes.
func (a *Archive) Empty() bool {
	return a.Size == 0
}
