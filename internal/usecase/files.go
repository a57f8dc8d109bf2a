package usecase

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/semmidev/snapvault/internal/domain"
)

// collectFiles expands configured file and directory paths into archive
// entries under files/<base>/. Missing paths are skipped with a warning.
func collectFiles(paths []string, logger Logger) ([]domain.ArchiveEntry, error) {
	var entries []domain.ArchiveEntry

	for _, root := range paths {
		info, err := os.Stat(root)
		if os.IsNotExist(err) {
			logger.Warnf("Skipping %s: path does not exist", root)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		base := filepath.Base(filepath.Clean(root))
		if !info.IsDir() {
			entries = append(entries, domain.ArchiveEntry{SourcePath: root, Name: path.Join("files", base)})
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}

			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			entries = append(entries, domain.ArchiveEntry{
				SourcePath: p,
				Name:       path.Join("files", base, filepath.ToSlash(rel)),
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	return entries, nil
}
