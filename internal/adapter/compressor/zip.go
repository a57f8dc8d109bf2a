package compressor

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"
	"github.com/semmidev/snapvault/internal/domain"
)

type ZipArchiver struct{}

func NewZip() *ZipArchiver {
	return &ZipArchiver{}
}

// Archive writes a zip of every entry whose source still exists to dst and
// returns the names actually added. Missing sources are skipped.
func (z *ZipArchiver) Archive(dst io.Writer, entries []domain.ArchiveEntry) ([]string, error) {
	zw := zip.NewWriter(dst)

	added := make([]string, 0, len(entries))
	for _, entry := range entries {
		ok, err := z.addEntry(zw, entry)
		if err != nil {
			zw.Close()
			return nil, err
		}
		if ok {
			added = append(added, entry.Name)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return added, nil
}

func (z *ZipArchiver) addEntry(zw *zip.Writer, entry domain.ArchiveEntry) (bool, error) {
	source, err := os.Open(entry.SourcePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open source file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return false, fmt.Errorf("failed to stat source file: %w", err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return false, fmt.Errorf("failed to build header for %s: %w", entry.Name, err)
	}
	header.Name = entry.Name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return false, fmt.Errorf("failed to create archive entry %s: %w", entry.Name, err)
	}

	if _, err := io.Copy(w, source); err != nil {
		return false, fmt.Errorf("failed to compress %s: %w", entry.Name, err)
	}

	return true, nil
}
