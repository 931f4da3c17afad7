// Package workspace holds the per-session upload slots, filters and analysis chains and evaluates them.
package workspace

import (
	"log"
	"sync"
	"time"

	"walletlab/domain/core"
	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
	"walletlab/internal/analysis"
	datasetloader "walletlab/internal/dataset"
	"walletlab/internal/errors"
	"walletlab/internal/filter"
)

// SlotFile identifies the file loaded into a slot
type SlotFile struct {
	FileID   core.FileID `json:"file_id,omitempty"`
	Filename string      `json:"filename"`
}

// SlotState describes a loaded slot for display
type SlotState struct {
	SlotFile
	Loaded   bool      `json:"loaded"`
	Rows     int       `json:"rows,omitempty"`
	Columns  []string  `json:"columns,omitempty"`
	Records  int       `json:"records,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// State is a read-only snapshot of a workspace
type State struct {
	Slots          map[dataset.Slot]SlotState  `json:"slots"`
	Metadata       []dataset.ColumnMetadata    `json:"metadata"`
	Filters        []pipeline.FilterDefinition `json:"filters"`
	AnalysisChains []pipeline.AnalysisChain    `json:"analysis_chains"`
}

// Result is the outcome of evaluating the filters and chains over the dataset
type Result struct {
	Rows        []dataset.Row            `json:"rows"`
	Columns     []analysis.DerivedColumn `json:"columns"`
	TotalRows   int                      `json:"total_rows"`
	MatchedRows int                      `json:"matched_rows"`
}

type slotEntry struct {
	file     SlotFile
	content  []byte
	loadedAt time.Time
}

// Store is the state of one workspace. Every method is safe for concurrent use and the last write wins.
type Store struct {
	mu     sync.RWMutex
	loader *datasetloader.Loader

	files      map[dataset.Slot]slotEntry
	data       *dataset.Dataset
	dictionary []dataset.DictionaryRecord
	summary    dataset.SummaryStats
	metadata   []dataset.ColumnMetadata

	filters []pipeline.FilterDefinition
	chains  []pipeline.AnalysisChain
}

// NewStore creates an empty workspace
func NewStore(loader *datasetloader.Loader) *Store {
	if loader == nil {
		loader = datasetloader.NewLoader(nil)
	}
	return &Store{
		loader: loader,
		files:  make(map[dataset.Slot]slotEntry),
	}
}

// LoadSlot parses content into the slot. On failure the slot is cleared and the error returned.
func (s *Store) LoadSlot(slot dataset.Slot, file SlotFile, content []byte) error {
	loaded, err := s.loader.LoadFile(slot, file.Filename, content)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.clearLocked(slot)
		return err
	}
	s.applyLocked(loaded, file, content)
	return nil
}

// ClearSlot unloads a slot
func (s *Store) ClearSlot(slot dataset.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(slot)
}

func (s *Store) clearLocked(slot dataset.Slot) {
	delete(s.files, slot)
	switch slot {
	case dataset.SlotDataset:
		s.data = nil
	case dataset.SlotDictionary:
		s.dictionary = nil
	case dataset.SlotSummary:
		s.summary = nil
	}
	s.recomputeLocked()
}

func (s *Store) applyLocked(loaded *datasetloader.Loaded, file SlotFile, content []byte) {
	switch loaded.Slot {
	case dataset.SlotDataset:
		s.data = loaded.Dataset
	case dataset.SlotDictionary:
		s.dictionary = loaded.Dictionary
	case dataset.SlotSummary:
		s.summary = loaded.Summary
	}
	s.files[loaded.Slot] = slotEntry{file: file, content: content, loadedAt: time.Now()}
	s.recomputeLocked()
	log.Printf("[Workspace] Loaded %s slot from %s", loaded.Slot, file.Filename)
}

func (s *Store) recomputeLocked() {
	s.metadata = datasetloader.MergeColumnMetadata(s.dictionary, s.data.Columns(), s.summary)
}

// SetFilters validates and replaces the active filters
func (s *Store) SetFilters(filters []pipeline.FilterDefinition) error {
	prepared, err := prepareFilters(filters)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.filters = prepared
	s.mu.Unlock()
	return nil
}

// SetAnalysisChains validates and replaces the active analysis chains
func (s *Store) SetAnalysisChains(chains []pipeline.AnalysisChain) error {
	prepared, err := prepareChains(chains)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.chains = prepared
	s.mu.Unlock()
	return nil
}

func prepareFilters(filters []pipeline.FilterDefinition) ([]pipeline.FilterDefinition, error) {
	if err := pipeline.ValidateFilters(filters); err != nil {
		return nil, err
	}
	copied := append([]pipeline.FilterDefinition(nil), filters...)
	filter.Describe(copied)
	return copied, nil
}

// prepareChains validates chains and requires distinct result names
func prepareChains(chains []pipeline.AnalysisChain) ([]pipeline.AnalysisChain, error) {
	copied := append([]pipeline.AnalysisChain(nil), chains...)
	seen := make(map[string]bool, len(copied))
	for i := range copied {
		if err := copied[i].Validate(); err != nil {
			return nil, errors.Wrapf(err, "analysis chain %d is invalid", i+1)
		}
		if seen[copied[i].ResultName] {
			return nil, errors.ValidationError("duplicate analysis result name: " + copied[i].ResultName)
		}
		seen[copied[i].ResultName] = true
	}
	return copied, nil
}

// Dataset returns the loaded dataset, nil when the slot is empty
func (s *Store) Dataset() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Metadata returns the merged column metadata
func (s *Store) Metadata() []dataset.ColumnMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dataset.ColumnMetadata(nil), s.metadata...)
}

// Rows returns a page of the unfiltered dataset
func (s *Store) Rows(limit, offset int) ([]dataset.Row, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return []dataset.Row{}, 0
	}
	return page(s.data.Rows, limit, offset), len(s.data.Rows)
}

func page(rows []dataset.Row, limit, offset int) []dataset.Row {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []dataset.Row{}
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return rows[offset:end]
}

// State returns a snapshot of the workspace
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := State{
		Slots:          make(map[dataset.Slot]SlotState, len(s.files)),
		Metadata:       append([]dataset.ColumnMetadata(nil), s.metadata...),
		Filters:        append([]pipeline.FilterDefinition(nil), s.filters...),
		AnalysisChains: append([]pipeline.AnalysisChain(nil), s.chains...),
	}
	for slot, entry := range s.files {
		st := SlotState{SlotFile: entry.file, Loaded: true, LoadedAt: entry.loadedAt}
		switch slot {
		case dataset.SlotDataset:
			st.Rows = s.data.RowCount()
			st.Columns = s.data.Columns()
		case dataset.SlotDictionary:
			st.Records = len(s.dictionary)
		case dataset.SlotSummary:
			st.Records = len(s.summary)
		}
		state.Slots[slot] = st
	}
	return state
}

// Evaluate applies the filters on dataset columns, evaluates the chains over the retained rows, then
// applies filters that target a derived column.
func (s *Store) Evaluate() (*Result, error) {
	s.mu.RLock()
	data := s.data
	filters := s.filters
	chains := s.chains
	s.mu.RUnlock()

	if data == nil {
		return nil, errors.NotFound("dataset")
	}
	return Evaluate(data.Rows, filters, chains)
}

// Evaluate runs a filter and analysis pipeline over rows without any workspace state
func Evaluate(rows []dataset.Row, filters []pipeline.FilterDefinition, chains []pipeline.AnalysisChain) (*Result, error) {
	derived := make(map[string]bool, len(chains))
	for _, c := range chains {
		name := c.ResultName
		if name == "" {
			name = pipeline.DefaultResultName
		}
		derived[name] = true
	}

	var base, late []pipeline.FilterDefinition
	for _, f := range filters {
		if derived[f.ColumnKey] {
			late = append(late, f)
		} else {
			base = append(base, f)
		}
	}

	retained := filter.ApplyFilters(rows, base)
	columns, err := analysis.EvaluateChains(retained, chains)
	if err != nil {
		return nil, err
	}

	out := retained
	if len(columns) > 0 {
		out = analysis.AppendColumn(retained, columns...)
	}
	if len(late) > 0 {
		out, columns = applyDerivedFilters(out, columns, late)
	}

	return &Result{
		Rows:        out,
		Columns:     columns,
		TotalRows:   len(rows),
		MatchedRows: len(out),
	}, nil
}

// applyDerivedFilters filters rows on derived cells and keeps the derived values aligned with the rows
func applyDerivedFilters(rows []dataset.Row, columns []analysis.DerivedColumn, filters []pipeline.FilterDefinition) ([]dataset.Row, []analysis.DerivedColumn) {
	keep := make([]int, 0, len(rows))
	for i, row := range rows {
		if len(filter.ApplyFilters([]dataset.Row{row}, filters)) == 1 {
			keep = append(keep, i)
		}
	}

	kept := make([]dataset.Row, len(keep))
	for j, i := range keep {
		kept[j] = rows[i]
	}
	aligned := make([]analysis.DerivedColumn, len(columns))
	for c, col := range columns {
		values := make([]float64, len(keep))
		for j, i := range keep {
			values[j] = col.Values[i]
		}
		aligned[c] = analysis.DerivedColumn{Name: col.Name, Values: values}
	}
	return kept, aligned
}
