package domain

import "io"

type Archiver interface {
	Archive(dst io.Writer, entries []ArchiveEntry) ([]string, error)
}
