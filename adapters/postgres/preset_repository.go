package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"walletlab/domain/core"
	"walletlab/domain/preset"
	apperrors "walletlab/internal/errors"
	"walletlab/ports"
)

const presetColumns = `id, kind, name, description, payload, author_id, author_name, author_avatar, created_at`

// presetRow flattens the author into columns
type presetRow struct {
	ID           core.PresetID `db:"id"`
	Kind         preset.Kind   `db:"kind"`
	Name         string        `db:"name"`
	Description  string        `db:"description"`
	Payload      []byte        `db:"payload"`
	AuthorID     core.UserID   `db:"author_id"`
	AuthorName   string        `db:"author_name"`
	AuthorAvatar string        `db:"author_avatar"`
	CreatedAt    time.Time     `db:"created_at"`
}

func (row presetRow) toPreset() *preset.Preset {
	return &preset.Preset{
		ID:          row.ID,
		Kind:        row.Kind,
		Name:        row.Name,
		Description: row.Description,
		Payload:     row.Payload,
		Author:      preset.Author{ID: row.AuthorID, Name: row.AuthorName, AvatarURL: row.AuthorAvatar},
		CreatedAt:   row.CreatedAt,
	}
}

// presetRepository implements the PresetRepository interface
type presetRepository struct {
	db *sqlx.DB
}

// NewPresetRepository creates a new preset repository
func NewPresetRepository(db *sqlx.DB) ports.PresetRepository {
	return &presetRepository{db: db}
}

// Create inserts a preset
func (r *presetRepository) Create(ctx context.Context, p *preset.Preset) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO presets (`+presetColumns+`)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9)
	`, p.ID, p.Kind, p.Name, p.Description, string(p.Payload),
		p.Author.ID, p.Author.Name, p.Author.AvatarURL, p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.ValidationError(fmt.Sprintf("a %s preset named %q already exists", p.Kind, p.Name))
		}
		return fmt.Errorf("failed to create preset: %w", err)
	}
	return nil
}

// GetByID retrieves a preset by its ID
func (r *presetRepository) GetByID(ctx context.Context, id core.PresetID) (*preset.Preset, error) {
	var row presetRow
	err := r.db.GetContext(ctx, &row, `SELECT `+presetColumns+` FROM presets WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("preset")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preset: %w", err)
	}
	return row.toPreset(), nil
}

// List returns presets of the given kinds, newest first, optionally by one author
func (r *presetRepository) List(ctx context.Context, filters ports.PresetFilters) ([]*preset.Preset, error) {
	kinds := make([]string, 0, len(filters.Kinds))
	for _, k := range filters.Kinds {
		kinds = append(kinds, string(k))
	}
	if len(kinds) == 0 {
		for _, k := range preset.Kinds {
			kinds = append(kinds, string(k))
		}
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}

	var rows []presetRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+presetColumns+`
		FROM presets
		WHERE kind = ANY($1) AND ($2 = '' OR author_id = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, pq.Array(kinds), filters.AuthorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}

	presets := make([]*preset.Preset, 0, len(rows))
	for _, row := range rows {
		presets = append(presets, row.toPreset())
	}
	return presets, nil
}

// Delete removes a preset if authorID owns it
func (r *presetRepository) Delete(ctx context.Context, id core.PresetID, authorID core.UserID) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Author.ID != authorID {
		return apperrors.Unauthorized("only the author can delete this preset")
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM presets WHERE id = $1 AND author_id = $2`, id, authorID); err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	return nil
}
