package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"walletlab/domain/core"
	"walletlab/domain/dataset"
	apperrors "walletlab/internal/errors"
	"walletlab/ports"
)

const uploadColumns = `id, user_id, slot, filename, storage_path, size_bytes, created_at`

// uploadRepository implements the UploadRepository interface
type uploadRepository struct {
	db *sqlx.DB
}

// NewUploadRepository creates a new upload repository
func NewUploadRepository(db *sqlx.DB) ports.UploadRepository {
	return &uploadRepository{db: db}
}

// Create inserts a new uploaded file record
func (r *uploadRepository) Create(ctx context.Context, file *dataset.UploadedFile) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO uploaded_files (`+uploadColumns+`)
		VALUES (:id, :user_id, :slot, :filename, :storage_path, :size_bytes, :created_at)
	`, file)
	if err != nil {
		return fmt.Errorf("failed to create uploaded file: %w", err)
	}
	return nil
}

// GetByID retrieves an uploaded file by its ID
func (r *uploadRepository) GetByID(ctx context.Context, id core.FileID) (*dataset.UploadedFile, error) {
	var file dataset.UploadedFile
	err := r.db.GetContext(ctx, &file, `SELECT `+uploadColumns+` FROM uploaded_files WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get uploaded file: %w", err)
	}
	return &file, nil
}

// ListByUser returns a user's uploads, newest first
func (r *uploadRepository) ListByUser(ctx context.Context, userID core.UserID, slot dataset.Slot, limit int) ([]*dataset.UploadedFile, error) {
	if limit <= 0 {
		limit = 50
	}

	files := []*dataset.UploadedFile{}
	err := r.db.SelectContext(ctx, &files, `
		SELECT `+uploadColumns+`
		FROM uploaded_files
		WHERE user_id = $1 AND ($2 = '' OR slot = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, slot, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploaded files: %w", err)
	}
	return files, nil
}
