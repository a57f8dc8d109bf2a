package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/semmidev/snapvault/internal/config"
	"github.com/semmidev/snapvault/internal/domain"
)

const azureUploadBufferSize = 4 * 1024 * 1024

type AzureStorage struct {
	container azblob.ContainerURL
	prefix    string
}

func NewAzure(cfg *config.DiskConfig) (*AzureStorage, error) {
	if cfg.AccountName == "" || cfg.AccountKey == "" || cfg.Container == "" {
		return nil, fmt.Errorf("azure: account_name, account_key and container are required")
	}

	credential, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credentials: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AccountName)
	}

	serviceURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Azure service URL: %w", err)
	}

	service := azblob.NewServiceURL(*serviceURL, azblob.NewPipeline(credential, azblob.PipelineOptions{}))

	return &AzureStorage{
		container: service.NewContainerURL(cfg.Container),
		prefix:    cfg.Prefix,
	}, nil
}

func (a *AzureStorage) MakeDirectory(ctx context.Context, dir string) error {
	return nil
}

func (a *AzureStorage) WriteStream(ctx context.Context, p string, r io.Reader) error {
	blob := a.container.NewBlockBlobURL(objectKey(a.prefix, p))

	_, err := azblob.UploadStreamToBlockBlob(ctx, r, blob, azblob.UploadStreamToBlockBlobOptions{
		BufferSize: azureUploadBufferSize,
		MaxBuffers: 4,
		BlobHTTPHeaders: azblob.BlobHTTPHeaders{
			ContentType: "application/zip",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload to Azure: %w", err)
	}

	return nil
}

func (a *AzureStorage) PutFile(ctx context.Context, p string, contents []byte) error {
	blob := a.container.NewBlockBlobURL(objectKey(a.prefix, p))

	if _, err := azblob.UploadBufferToBlockBlob(ctx, contents, blob, azblob.UploadToBlockBlobOptions{}); err != nil {
		return fmt.Errorf("failed to put blob to Azure: %w", err)
	}

	return nil
}

func (a *AzureStorage) List(ctx context.Context, dir string) ([]domain.StoredObject, error) {
	prefix := listPrefix(a.prefix, dir)

	var files []domain.StoredObject
	for marker := (azblob.Marker{}); marker.NotDone(); {
		resp, err := a.container.ListBlobsFlatSegment(ctx, marker, azblob.ListBlobsSegmentOptions{
			Prefix: prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list Azure blobs: %w", err)
		}

		for _, blob := range resp.Segment.BlobItems {
			name, ok := childName(blob.Name, prefix)
			if !ok {
				continue
			}

			var size int64
			if blob.Properties.ContentLength != nil {
				size = *blob.Properties.ContentLength
			}
			files = append(files, domain.StoredObject{
				Name:         name,
				Size:         size,
				LastModified: blob.Properties.LastModified,
			})
		}

		marker = resp.NextMarker
	}

	return files, nil
}

func (a *AzureStorage) Delete(ctx context.Context, p string) error {
	blob := a.container.NewBlockBlobURL(objectKey(a.prefix, p))

	if _, err := blob.Delete(ctx, azblob.DeleteSnapshotsOptionInclude, azblob.BlobAccessConditions{}); err != nil {
		if stgErr, ok := err.(azblob.StorageError); ok && stgErr.ServiceCode() == azblob.ServiceCodeBlobNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete from Azure: %w", err)
	}

	return nil
}
