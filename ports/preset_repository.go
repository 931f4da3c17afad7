package ports

import (
	"context"

	"walletlab/domain/core"
	"walletlab/domain/preset"
)

// PresetFilters narrows a preset listing
type PresetFilters struct {
	Kinds    []preset.Kind
	AuthorID core.UserID
	Limit    int
}

// PresetRepository stores named filters, analyses and chains
type PresetRepository interface {
	Create(ctx context.Context, p *preset.Preset) error
	GetByID(ctx context.Context, id core.PresetID) (*preset.Preset, error)
	List(ctx context.Context, filters PresetFilters) ([]*preset.Preset, error)
	// Delete removes a preset owned by authorID
	Delete(ctx context.Context, id core.PresetID, authorID core.UserID) error
}
