package preset

import (
	"encoding/json"
	"strings"
	"time"

	"walletlab/domain/core"
	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
	"walletlab/internal/errors"
)

// Kind is the type of object a preset stores
type Kind string

const (
	KindFilter        Kind = "filter"
	KindFilterChain   Kind = "filter_chain"
	KindAnalysis      Kind = "analysis"
	KindAnalysisChain Kind = "analysis_chain"
)

// Kinds lists every preset kind
var Kinds = []Kind{KindFilter, KindFilterChain, KindAnalysis, KindAnalysisChain}

// ParseKind validates a kind from a route parameter
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", errors.InvalidInput("unknown preset kind: " + s)
}

// Author is the display identity attached to a saved preset
type Author struct {
	ID        core.UserID `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	AvatarURL string      `json:"avatar_url,omitempty" db:"avatar_url"`
}

// Preset is a named, saved filter, analysis or chain
type Preset struct {
	ID          core.PresetID   `json:"id" db:"id"`
	Kind        Kind            `json:"kind" db:"kind"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	Author      Author          `json:"author"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// NewPreset validates the payload against the kind and returns a preset with a fresh ID
func NewPreset(kind Kind, name, description string, payload json.RawMessage, author Author) (*Preset, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.ValidationError("preset name is required")
	}
	if err := ValidatePayload(kind, payload); err != nil {
		return nil, err
	}
	return &Preset{
		ID:          core.PresetID(core.NewID()),
		Kind:        kind,
		Name:        strings.TrimSpace(name),
		Description: description,
		Payload:     payload,
		Author:      author,
		CreatedAt:   time.Now(),
	}, nil
}

// ValidatePayload decodes the payload into the type the kind stores and validates it
func ValidatePayload(kind Kind, payload json.RawMessage) error {
	if len(payload) == 0 {
		return errors.ValidationError("preset payload is required")
	}

	switch kind {
	case KindFilter:
		var f pipeline.FilterDefinition
		if err := json.Unmarshal(payload, &f); err != nil {
			return errors.Wrap(errors.ValidationError(err.Error()), "invalid filter preset")
		}
		return f.Validate()
	case KindFilterChain:
		var filters []pipeline.FilterDefinition
		if err := json.Unmarshal(payload, &filters); err != nil {
			return errors.Wrap(errors.ValidationError(err.Error()), "invalid filter chain preset")
		}
		if len(filters) == 0 {
			return errors.ValidationError("filter chain preset must contain at least one filter")
		}
		return pipeline.ValidateFilters(filters)
	case KindAnalysis:
		var step pipeline.AnalysisTemplate
		if err := json.Unmarshal(payload, &step); err != nil {
			return errors.Wrap(errors.ValidationError(err.Error()), "invalid analysis preset")
		}
		return step.Validate()
	case KindAnalysisChain:
		var chain pipeline.AnalysisChain
		if err := json.Unmarshal(payload, &chain); err != nil {
			return errors.Wrap(errors.ValidationError(err.Error()), "invalid analysis chain preset")
		}
		return chain.Validate()
	}
	return errors.InvalidInput("unknown preset kind: " + string(kind))
}

// WorkspaceVersion is the current export document version
const WorkspaceVersion = 1

// WorkspaceFile references one slot's file in an export, optionally embedding its text
type WorkspaceFile struct {
	FileID   core.FileID `json:"file_id,omitempty"`
	Filename string      `json:"filename"`
	Content  string      `json:"content,omitempty"`
}

// WorkspacePreset is the portable snapshot of a whole workspace
type WorkspacePreset struct {
	Version        int                            `json:"version"`
	Name           string                         `json:"name"`
	ExportedAt     time.Time                      `json:"exported_at"`
	Files          map[dataset.Slot]WorkspaceFile `json:"files"`
	Filters        []pipeline.FilterDefinition    `json:"filters"`
	AnalysisChains []pipeline.AnalysisChain       `json:"analysis_chains"`
}

// Validate checks the document version, slot names and the embedded pipeline
func (w *WorkspacePreset) Validate() error {
	if w.Version != WorkspaceVersion {
		return errors.ValidationError("unsupported workspace version")
	}
	for slot := range w.Files {
		if _, ok := dataset.ParseSlot(string(slot)); !ok {
			return errors.ValidationError("unknown workspace slot: " + string(slot))
		}
	}
	if err := pipeline.ValidateFilters(w.Filters); err != nil {
		return err
	}
	for i := range w.AnalysisChains {
		if err := w.AnalysisChains[i].Validate(); err != nil {
			return errors.Wrapf(err, "analysis chain %d is invalid", i+1)
		}
	}
	return nil
}
