package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"walletlab/domain/core"
	"walletlab/domain/user"
	apperrors "walletlab/internal/errors"
	"walletlab/ports"
)

// userRepository implements UserRepository for PostgreSQL
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &userRepository{db: db}
}

// Upsert inserts the user or updates its display fields
func (r *userRepository) Upsert(ctx context.Context, u *user.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, name, avatar_url, created_at, updated_at)
		VALUES (:id, :name, :avatar_url, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, avatar_url = EXCLUDED.avatar_url, updated_at = NOW()
	`, u)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id core.UserID) (*user.User, error) {
	var u user.User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, name, avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetOrCreateDefault gets the default user or creates it if it doesn't exist
func (r *userRepository) GetOrCreateDefault(ctx context.Context) (*user.User, error) {
	u, err := r.GetByID(ctx, user.DefaultUserID)
	if err == nil {
		return u, nil
	}
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil, err
	}

	u = user.Default()
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, name, avatar_url, created_at, updated_at)
		VALUES (:id, :name, :avatar_url, NOW(), NOW())
	`, u)
	if err != nil {
		// another process may have created it first
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return r.GetByID(ctx, user.DefaultUserID)
		}
		return nil, fmt.Errorf("failed to create default user: %w", err)
	}
	return u, nil
}
