package migration

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"

	"walletlab/domain/user"
	"walletlab/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. Every statement is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	steps := []struct {
		name string
		sql  string
	}{
		{"users table", createUsersTable},
		{"uploaded_files table", createUploadedFilesTable},
		{"presets table", createPresetsTable},
	}
	for _, step := range steps {
		if _, err := db.ExecContext(ctx, step.sql); err != nil {
			return errors.Wrapf(err, "failed to create %s", step.name)
		}
	}

	r.createIndexes(ctx, db)

	if err := r.insertDefaultUser(ctx, db); err != nil {
		return errors.Wrap(err, "failed to insert default user")
	}

	log.Printf("[Migration] Schema version %s is up to date", r.version)
	return nil
}

const createUsersTable = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		avatar_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

const createUploadedFilesTable = `
	CREATE TABLE IF NOT EXISTS uploaded_files (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		slot VARCHAR(20) NOT NULL CHECK (slot IN ('dataset', 'dictionary', 'summary')),
		filename TEXT NOT NULL,
		storage_path TEXT NOT NULL,
		size_bytes BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

const createPresetsTable = `
	CREATE TABLE IF NOT EXISTS presets (
		id UUID PRIMARY KEY,
		kind VARCHAR(30) NOT NULL CHECK (kind IN ('filter', 'filter_chain', 'analysis', 'analysis_chain')),
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		payload JSONB NOT NULL,
		author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		author_name VARCHAR(255) NOT NULL,
		author_avatar TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_uploaded_files_user_slot ON uploaded_files(user_id, slot, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_presets_kind_created ON presets(kind, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_presets_author ON presets(author_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_presets_author_kind_name ON presets(author_id, kind, name)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			log.Printf("[Migration] Warning: failed to create index: %v", err)
		}
	}
}

func (r *MigrationRunner) insertDefaultUser(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, user.DefaultUserID, user.DefaultUserName)
	return err
}
