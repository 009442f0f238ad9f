package report

import (
	"context"
	"log/slog"

	"github.com/KaramelBytes/dietloom-cli/internal/apperr"
	"github.com/KaramelBytes/dietloom-cli/internal/storage"
	"github.com/KaramelBytes/dietloom-cli/internal/utils"
)

const (
	// StageSave labels local write failures.
	StageSave = "save"
	// StagePublish labels blob upload failures of the report.
	StagePublish = "publish"
)

// DefaultPath is where results land when nothing else is configured.
const DefaultPath = "outputs/nosql_results.json"

// WriteFile writes doc as pretty JSON to path, atomically. Failures are apperr.ErrWrite.
func WriteFile(doc any, path string) error {
	b, err := utils.PrettyJSON(doc)
	if err != nil {
		return apperr.WriteError(StageSave, err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return apperr.WriteError(StageSave, err)
	}
	slog.Debug("wrote report", slog.String("path", path), slog.Int("bytes", len(b)))
	return nil
}

// Publish uploads the same JSON bytes to the blob store.
func Publish(ctx context.Context, store storage.BlobStore, container, blob string, doc any) error {
	b, err := utils.PrettyJSON(doc)
	if err != nil {
		return apperr.WriteError(StagePublish, err)
	}
	if err := store.Put(ctx, container, blob, b); err != nil {
		return apperr.WriteError(StagePublish, err)
	}
	return nil
}
