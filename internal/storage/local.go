// Package storage stores uploaded files on the local filesystem.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"walletlab/internal/errors"
	"walletlab/ports"
)

const copyBufferSize = 1024 * 1024

// LocalFileStorage implements ports.FileStorage on a directory
type LocalFileStorage struct {
	basePath string
	maxBytes int64
}

// NewLocalFileStorage creates a storage rooted at basePath. maxBytes <= 0 disables the size limit.
func NewLocalFileStorage(basePath string, maxBytes int64) *LocalFileStorage {
	return &LocalFileStorage{basePath: basePath, maxBytes: maxBytes}
}

// Store copies r into a new file with a unique name derived from filename
func (s *LocalFileStorage) Store(ctx context.Context, r io.Reader, filename string) (string, int64, error) {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create storage directory: %w", err)
	}

	filePath := filepath.Join(s.basePath, uniqueName(filename))
	destFile, err := os.Create(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	written, err := io.CopyBuffer(destFile, src, make([]byte, copyBufferSize))
	if err != nil {
		os.Remove(filePath)
		return "", 0, fmt.Errorf("failed to copy file contents: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		os.Remove(filePath)
		return "", 0, errors.InvalidInput(fmt.Sprintf("file exceeds the %d byte upload limit", s.maxBytes))
	}
	return filePath, written, nil
}

// uniqueName keeps the original base name and extension, e.g. wallets_20250101_120000_1a2b3c4d.csv
func uniqueName(filename string) string {
	filename = filepath.Base(filename)
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "upload"
	}
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s%s", base, timestamp, uuid.New().String()[:8], ext)
}

// Open returns a reader for a stored file
func (s *LocalFileStorage) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, errors.NotFound("stored file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *LocalFileStorage) Delete(ctx context.Context, filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists checks if a file exists in storage
func (s *LocalFileStorage) Exists(ctx context.Context, filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}

// ReadAll is a convenience for reading a stored file fully into memory
func ReadAll(ctx context.Context, s ports.FileStorage, filePath string) ([]byte, error) {
	rc, err := s.Open(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
