package ports

import (
	"context"

	"walletlab/domain/core"
	"walletlab/domain/user"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Upsert creates the user or refreshes its name and avatar
	Upsert(ctx context.Context, u *user.User) error

	// GetByID retrieves a user by their ID
	GetByID(ctx context.Context, id core.UserID) (*user.User, error)

	// GetOrCreateDefault gets the default user or creates it if it doesn't exist
	GetOrCreateDefault(ctx context.Context) (*user.User, error)
}
