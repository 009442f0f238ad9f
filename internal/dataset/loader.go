// Package dataset loads the diet recipe table from a local file or a blob store.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/dietloom-cli/internal/apperr"
	"github.com/KaramelBytes/dietloom-cli/internal/storage"
)

// StageLoad labels errors raised while loading.
const StageLoad = "load"

// Options controls decoding.
type Options struct {
	// Delimiter for delimited text. If 0, derived from the file extension (',' or '\t').
	Delimiter rune
	// DecimalSeparator for numeric cells. If 0, '.' is used.
	DecimalSeparator rune
	// SheetName selects the XLSX sheet; the first sheet when empty.
	SheetName string
}

// DefaultOptions returns the options used for All_Diets.csv.
func DefaultOptions() Options {
	return Options{DecimalSeparator: '.'}
}

// Source identifies where the table lives: a local Path, or Container + Blob.
type Source struct {
	Path      string
	Container string
	Blob      string
}

// FileSource returns a local file source.
func FileSource(path string) Source { return Source{Path: path} }

// BlobSource returns a blob store source.
func BlobSource(container, blob string) Source { return Source{Container: container, Blob: blob} }

// IsBlob reports whether the source lives in a blob store.
func (s Source) IsBlob() bool { return s.Path == "" }

func (s Source) String() string {
	if s.IsBlob() {
		return fmt.Sprintf("blob://%s/%s", s.Container, s.Blob)
	}
	return s.Path
}

// Loader fetches and decodes tables. Store is only needed for blob sources.
type Loader struct {
	Store   storage.BlobStore
	Options Options
	Logger  *slog.Logger
}

// NewLoader creates a loader with default options.
func NewLoader(store storage.BlobStore, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{Store: store, Options: DefaultOptions(), Logger: logger}
}

// Load fetches the source once and decodes it. Fetch failures are apperr.ErrSourceUnavailable,
// decoding failures are apperr.ErrParse.
func (l *Loader) Load(ctx context.Context, src Source) (*Table, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	data, name, err := l.fetch(ctx, src)
	if err != nil {
		return nil, apperr.SourceUnavailable(StageLoad, err)
	}
	logger.Debug("fetched dataset", slog.String("source", src.String()), slog.Int("bytes", len(data)))
	t, err := Decode(name, data, l.Options)
	if err != nil {
		return nil, apperr.ParseError(StageLoad, fmt.Errorf("%s: %w", src, err))
	}
	logger.Info("loaded dataset",
		slog.String("source", src.String()),
		slog.Int("records", t.Len()),
		slog.Int("columns", len(t.Header)))
	return t, nil
}

func (l *Loader) fetch(ctx context.Context, src Source) ([]byte, string, error) {
	if !src.IsBlob() {
		b, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, "", fmt.Errorf("read file: %w", err)
		}
		return b, src.Path, nil
	}
	if src.Container == "" || src.Blob == "" {
		return nil, "", errors.New("blob source needs both container and blob name")
	}
	if l.Store == nil {
		return nil, "", errors.New("no blob store configured")
	}
	b, err := l.Store.Get(ctx, src.Container, src.Blob)
	if err != nil {
		return nil, "", err
	}
	return b, filepath.Base(src.Blob), nil
}
