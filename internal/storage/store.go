// Package storage provides the blob store the dataset and reports travel through.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a container or blob does not exist.
var ErrNotFound = errors.New("blob not found")

// BlobInfo describes one stored object.
type BlobInfo struct {
	Name string
	Size int64
}

// BlobStore is a key/value object store addressed by container + blob name.
type BlobStore interface {
	Get(ctx context.Context, container, blob string) ([]byte, error)
	Put(ctx context.Context, container, blob string, data []byte) error
	List(ctx context.Context, container string) ([]BlobInfo, error)
	// EnsureContainer creates the container. created is false when it already existed.
	EnsureContainer(ctx context.Context, container string) (created bool, err error)
	// URL returns the address of a blob for display.
	URL(container, blob string) string
}
