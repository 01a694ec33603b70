package order

import (
	"context"
	"io"
	"time"

	"github.com/vertinimas/portal/internal/domain/shared"
)

// ErrStorageDisabled is returned when report files cannot be stored
var ErrStorageDisabled = shared.ErrInternal.WithReason("storage.disabled", "File storage is not configured")

// ObjectStorage stores valuation report files
type ObjectStorage interface {
	// Upload writes size bytes from body under key
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// DownloadURL returns a time-limited URL that downloads key as filename
	DownloadURL(ctx context.Context, key, filename string) (string, time.Time, error)

	Delete(ctx context.Context, key string) error
}
