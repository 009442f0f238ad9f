package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureOptions configures the Azure Blob (or Azurite) client.
type AzureOptions struct {
	ConnectionString string
	// APIVersion pins the service version; Azurite lags behind the SDK default.
	APIVersion string
	// TryTimeout bounds a single request. Zero leaves the SDK default.
	TryTimeout time.Duration
}

// AzureStore is a BlobStore backed by Azure Blob Storage.
type AzureStore struct {
	client *azblob.Client
}

// NewAzureStore builds a client from a connection string. Retries are disabled:
// every call is a single attempt and retrying is the caller's decision.
func NewAzureStore(opt AzureOptions) (*AzureStore, error) {
	if strings.TrimSpace(opt.ConnectionString) == "" {
		return nil, errors.New("storage connection string is not configured")
	}
	co := &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			APIVersion: opt.APIVersion,
			Retry: policy.RetryOptions{
				MaxRetries: -1,
				TryTimeout: opt.TryTimeout,
			},
		},
	}
	c, err := azblob.NewClientFromConnectionString(opt.ConnectionString, co)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}
	return &AzureStore{client: c}, nil
}

func (s *AzureStore) Get(ctx context.Context, container, blob string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return nil, mapErr(fmt.Sprintf("download %s/%s", container, blob), err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", container, blob, err)
	}
	return b, nil
}

func (s *AzureStore) Put(ctx context.Context, container, blob string, data []byte) error {
	if _, err := s.client.UploadBuffer(ctx, container, blob, data, nil); err != nil {
		return mapErr(fmt.Sprintf("upload %s/%s", container, blob), err)
	}
	return nil
}

func (s *AzureStore) List(ctx context.Context, container string) ([]BlobInfo, error) {
	var out []BlobInfo
	pager := s.client.NewListBlobsFlatPager(container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, mapErr(fmt.Sprintf("list %s", container), err)
		}
		for _, item := range page.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			bi := BlobInfo{Name: *item.Name}
			if item.Properties != nil && item.Properties.ContentLength != nil {
				bi.Size = *item.Properties.ContentLength
			}
			out = append(out, bi)
		}
	}
	return out, nil
}

func (s *AzureStore) EnsureContainer(ctx context.Context, container string) (bool, error) {
	_, err := s.client.CreateContainer(ctx, container, nil)
	if err == nil {
		return true, nil
	}
	if bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return false, nil
	}
	return false, fmt.Errorf("create container %s: %w", container, err)
}

func (s *AzureStore) URL(container, blob string) string {
	return strings.TrimSuffix(s.client.URL(), "/") + "/" + container + "/" + blob
}

func mapErr(op string, err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound) {
		return fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
