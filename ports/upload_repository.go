package ports

import (
	"context"

	"walletlab/domain/core"
	"walletlab/domain/dataset"
)

// UploadRepository records the files users upload into workspace slots
type UploadRepository interface {
	Create(ctx context.Context, file *dataset.UploadedFile) error
	GetByID(ctx context.Context, id core.FileID) (*dataset.UploadedFile, error)
	// ListByUser returns the newest files first. An empty slot lists every slot.
	ListByUser(ctx context.Context, userID core.UserID, slot dataset.Slot, limit int) ([]*dataset.UploadedFile, error)
}
