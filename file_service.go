package blogapi

import (
	"context"
	"io"
	"time"
)

type FileService interface {
	IsExists(ctx context.Context, path string) (bool, error)
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	Upload(ctx context.Context, path string, body io.Reader, contentType string) error
	Delete(ctx context.Context, path string) error
	GetURL(ctx context.Context, path string) (string, error)
	GetURLWithExpiry(ctx context.Context, path string, expiry time.Duration) (string, error)
	GetUploadURL(ctx context.Context, fileName, path string) (string, error)
}
