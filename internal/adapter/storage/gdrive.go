package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/semmidev/snapvault/internal/config"
	"github.com/semmidev/snapvault/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const driveFolderMimeType = "application/vnd.google-apps.folder"

// GDriveStorage maps slash-separated paths onto nested Drive folders below
// a root folder.
type GDriveStorage struct {
	service  *drive.Service
	folderID string

	mu      sync.Mutex
	folders map[string]string
}

// NewGDrive authenticates with a service-account key file, or with an OAuth
// client secret plus a refresh token obtained through auth:gdrive.
func NewGDrive(ctx context.Context, cfg *config.DiskConfig) (*GDriveStorage, error) {
	if cfg.FolderID == "" {
		return nil, fmt.Errorf("gdrive: folder_id is required")
	}

	var opt option.ClientOption
	switch {
	case cfg.ClientSecretFile != "" && cfg.RefreshToken != "":
		secret, err := os.ReadFile(cfg.ClientSecretFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read client secret: %w", err)
		}
		oauthCfg, err := google.ConfigFromJSON(secret, drive.DriveFileScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse client secret: %w", err)
		}
		opt = option.WithTokenSource(oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken}))
	case cfg.CredentialsFile != "":
		opt = option.WithCredentialsFile(cfg.CredentialsFile)
	default:
		return nil, fmt.Errorf("gdrive: credentials_file or client_secret_file with refresh_token is required")
	}

	service, err := drive.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &GDriveStorage{
		service:  service,
		folderID: cfg.FolderID,
		folders:  map[string]string{"": cfg.FolderID},
	}, nil
}

func (g *GDriveStorage) MakeDirectory(ctx context.Context, dir string) error {
	_, err := g.resolveFolder(ctx, dir, true)
	return err
}

func (g *GDriveStorage) WriteStream(ctx context.Context, p string, r io.Reader) error {
	parent, err := g.resolveFolder(ctx, path.Dir(p), true)
	if err != nil {
		return err
	}

	_, err = g.service.Files.Create(&drive.File{
		Name:     path.Base(p),
		Parents:  []string{parent},
		MimeType: "application/zip",
	}).Media(r).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to upload to gdrive: %w", err)
	}

	return nil
}

// PutFile replaces an existing file of the same name instead of adding a
// duplicate, which Drive would otherwise allow.
func (g *GDriveStorage) PutFile(ctx context.Context, p string, contents []byte) error {
	parent, err := g.resolveFolder(ctx, path.Dir(p), true)
	if err != nil {
		return err
	}

	existing, err := g.findChild(ctx, parent, path.Base(p), false)
	if err != nil {
		return err
	}

	if existing != "" {
		_, err = g.service.Files.Update(existing, &drive.File{}).Media(bytes.NewReader(contents)).Context(ctx).Do()
	} else {
		_, err = g.service.Files.Create(&drive.File{
			Name:    path.Base(p),
			Parents: []string{parent},
		}).Media(bytes.NewReader(contents)).Context(ctx).Do()
	}
	if err != nil {
		return fmt.Errorf("failed to write %s to gdrive: %w", p, err)
	}

	return nil
}

func (g *GDriveStorage) List(ctx context.Context, dir string) ([]domain.StoredObject, error) {
	parent, err := g.resolveFolder(ctx, dir, false)
	if err != nil || parent == "" {
		return nil, err
	}

	query := fmt.Sprintf("'%s' in parents and trashed=false and mimeType != '%s'", parent, driveFolderMimeType)

	var files []domain.StoredObject
	err = g.service.Files.List().
		Q(query).
		Fields("nextPageToken, files(id, name, size, createdTime)").
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, domain.StoredObject{
					Name:         f.Name,
					Size:         f.Size,
					LastModified: parseDriveTime(f.CreatedTime),
				})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

func (g *GDriveStorage) Delete(ctx context.Context, p string) error {
	parent, err := g.resolveFolder(ctx, path.Dir(p), false)
	if err != nil || parent == "" {
		return err
	}

	id, err := g.findChild(ctx, parent, path.Base(p), false)
	if err != nil || id == "" {
		return err
	}

	if err := g.service.Files.Delete(id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// resolveFolder walks dir one segment at a time from the root folder. With
// create unset, a missing segment yields an empty ID and no error.
func (g *GDriveStorage) resolveFolder(ctx context.Context, dir string, create bool) (string, error) {
	dir = strings.Trim(path.Clean("/"+dir), "/")

	g.mu.Lock()
	defer g.mu.Unlock()

	if id, ok := g.folders[dir]; ok {
		return id, nil
	}

	parent := g.folderID
	walked := ""
	for _, segment := range strings.Split(dir, "/") {
		walked = path.Join(walked, segment)
		if id, ok := g.folders[walked]; ok {
			parent = id
			continue
		}

		id, err := g.findChild(ctx, parent, segment, true)
		if err != nil {
			return "", err
		}

		if id == "" {
			if !create {
				return "", nil
			}
			folder, err := g.service.Files.Create(&drive.File{
				Name:     segment,
				MimeType: driveFolderMimeType,
				Parents:  []string{parent},
			}).Fields("id").Context(ctx).Do()
			if err != nil {
				return "", fmt.Errorf("failed to create folder %s: %w", walked, err)
			}
			id = folder.Id
		}

		g.folders[walked] = id
		parent = id
	}

	return parent, nil
}

func (g *GDriveStorage) findChild(ctx context.Context, parent, name string, folder bool) (string, error) {
	query := fmt.Sprintf("'%s' in parents and name='%s' and trashed=false", parent, escapeDriveQuery(name))
	if folder {
		query += fmt.Sprintf(" and mimeType='%s'", driveFolderMimeType)
	}

	fileList, err := g.service.Files.List().
		Q(query).
		Fields("files(id)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to find %s: %w", name, err)
	}

	if len(fileList.Files) == 0 {
		return "", nil
	}
	return fileList.Files[0].Id, nil
}

func escapeDriveQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func parseDriveTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
