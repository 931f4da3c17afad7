package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"walletlab/domain/core"
	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
	"walletlab/domain/preset"
	datasetloader "walletlab/internal/dataset"
	"walletlab/internal/errors"
)

// ContentResolver fetches the stored content of a file referenced by id
type ContentResolver func(ctx context.Context, slot dataset.Slot, fileID core.FileID) ([]byte, error)

// Export snapshots the workspace as a portable document. With embed the raw file text is included.
func (s *Store) Export(name string, embed bool) *preset.WorkspacePreset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.TrimSpace(name) == "" {
		name = "workspace"
	}
	doc := &preset.WorkspacePreset{
		Version:        preset.WorkspaceVersion,
		Name:           name,
		ExportedAt:     time.Now().UTC(),
		Files:          make(map[dataset.Slot]preset.WorkspaceFile, len(s.files)),
		Filters:        append([]pipeline.FilterDefinition(nil), s.filters...),
		AnalysisChains: append([]pipeline.AnalysisChain(nil), s.chains...),
	}
	for slot, entry := range s.files {
		f := preset.WorkspaceFile{FileID: entry.file.FileID, Filename: entry.file.Filename}
		if embed {
			f.Content = string(entry.content)
		}
		doc.Files[slot] = f
	}
	return doc
}

type parsedSlot struct {
	loaded  *datasetloader.Loaded
	file    SlotFile
	content []byte
}

// Import replaces the workspace with an exported document. Slot files are parsed concurrently from the
// embedded text or, without it, through resolve. Nothing changes unless every slot and the pipeline
// are valid.
func (s *Store) Import(ctx context.Context, doc *preset.WorkspacePreset, resolve ContentResolver) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	slots := make([]dataset.Slot, 0, len(doc.Files))
	for slot := range doc.Files {
		slots = append(slots, slot)
	}
	results := make([]parsedSlot, len(slots))

	g, gctx := errgroup.WithContext(ctx)
	for i, slot := range slots {
		ref := doc.Files[slot]
		g.Go(func() error {
			content := []byte(ref.Content)
			if ref.Content == "" {
				if resolve == nil || ref.FileID == "" {
					return errors.ValidationError(fmt.Sprintf("workspace %s file %s has no content", slot, ref.Filename))
				}
				var err error
				content, err = resolve(gctx, slot, ref.FileID)
				if err != nil {
					return errors.Wrapf(err, "failed to fetch %s file %s", slot, ref.Filename)
				}
			}

			loaded, err := s.loader.LoadFile(slot, ref.Filename, content)
			if err != nil {
				return err
			}
			results[i] = parsedSlot{
				loaded:  loaded,
				file:    SlotFile{FileID: ref.FileID, Filename: ref.Filename},
				content: content,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	filters, err := prepareFilters(doc.Filters)
	if err != nil {
		return err
	}
	chains, err := prepareChains(doc.AnalysisChains)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filters
	s.chains = chains
	s.files = make(map[dataset.Slot]slotEntry)
	s.data, s.dictionary, s.summary = nil, nil, nil
	for _, r := range results {
		s.applyLocked(r.loaded, r.file, r.content)
	}
	s.recomputeLocked()
	return nil
}
