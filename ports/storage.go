package ports

import (
	"context"
	"io"
)

// FileStorage keeps the raw bytes of uploaded files
type FileStorage interface {
	Store(ctx context.Context, r io.Reader, filename string) (path string, size int64, err error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}
