package api

import (
	"net/http"
	"strings"

	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
	datasetloader "walletlab/internal/dataset"
	"walletlab/internal/errors"
	"walletlab/internal/filter"
	"walletlab/internal/workspace"
)

// Handler serves the evaluation API
type Handler struct {
	loader *datasetloader.Loader
}

// NewHandler creates a handler. A nil loader falls back to CSV-only parsing.
func NewHandler(loader *datasetloader.Loader) *Handler {
	if loader == nil {
		loader = datasetloader.NewLoader(nil)
	}
	return &Handler{loader: loader}
}

type parseRequest struct {
	Slot     string `json:"slot"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type parseResponse struct {
	Slot       dataset.Slot               `json:"slot"`
	Filename   string                     `json:"filename"`
	Headers    []string                   `json:"headers,omitempty"`
	RowCount   int                        `json:"row_count"`
	Rows       []dataset.Row              `json:"rows,omitempty"`
	Suggested  []dataset.DictionaryRecord `json:"suggested_dictionary,omitempty"`
	Dictionary []dataset.DictionaryRecord `json:"dictionary,omitempty"`
	Summary    dataset.SummaryStats       `json:"summary,omitempty"`
}

// ParseFile parses a dataset, dictionary or summary file sent as text
func (h *Handler) ParseFile(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	slot := dataset.SlotDataset
	if req.Slot != "" {
		parsed, ok := dataset.ParseSlot(req.Slot)
		if !ok {
			writeError(w, errors.InvalidInput("unknown slot: "+req.Slot))
			return
		}
		slot = parsed
	}
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = string(slot) + ".csv"
	}

	loaded, err := h.loader.LoadFile(slot, filename, []byte(req.Content))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := parseResponse{Slot: slot, Filename: filename}
	switch slot {
	case dataset.SlotDataset:
		resp.Headers = loaded.Dataset.Headers
		resp.RowCount = loaded.Dataset.RowCount()
		resp.Rows = loaded.Dataset.Rows
		resp.Suggested = datasetloader.SuggestDictionary(loaded.Dataset)
	case dataset.SlotDictionary:
		resp.Dictionary = loaded.Dictionary
		resp.RowCount = len(loaded.Dictionary)
	case dataset.SlotSummary:
		resp.Summary = loaded.Summary
		resp.RowCount = len(loaded.Summary)
	}
	writeJSON(w, http.StatusOK, resp)
}

type filtersRequest struct {
	Dataset string                      `json:"dataset"`
	Filters []pipeline.FilterDefinition `json:"filters"`
}

type filtersResponse struct {
	Rows        []dataset.Row               `json:"rows"`
	Filters     []pipeline.FilterDefinition `json:"filters"`
	TotalRows   int                         `json:"total_rows"`
	MatchedRows int                         `json:"matched_rows"`
}

// ApplyFilters keeps the dataset rows that satisfy every filter
func (h *Handler) ApplyFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ds, err := datasetloader.ParseDataset(req.Dataset)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := pipeline.ValidateFilters(req.Filters); err != nil {
		writeError(w, err)
		return
	}
	filter.Describe(req.Filters)

	rows := filter.ApplyFilters(ds.Rows, req.Filters)
	writeJSON(w, http.StatusOK, filtersResponse{
		Rows:        rows,
		Filters:     req.Filters,
		TotalRows:   ds.RowCount(),
		MatchedRows: len(rows),
	})
}

type analysisRequest struct {
	Dataset        string                      `json:"dataset"`
	Filters        []pipeline.FilterDefinition `json:"filters"`
	AnalysisChains []pipeline.AnalysisChain    `json:"analysis_chains"`
}

// EvaluateAnalysis filters the dataset, then evaluates every analysis chain over the retained rows
func (h *Handler) EvaluateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ds, err := datasetloader.ParseDataset(req.Dataset)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := pipeline.ValidateFilters(req.Filters); err != nil {
		writeError(w, err)
		return
	}
	if len(req.AnalysisChains) == 0 {
		writeError(w, errors.ValidationError("at least one analysis chain is required"))
		return
	}

	result, err := workspace.Evaluate(ds.Rows, req.Filters, req.AnalysisChains)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type metadataRequest struct {
	Dictionary       string   `json:"dictionary"`
	DictionaryFormat string   `json:"dictionary_format"`
	Dataset          string   `json:"dataset"`
	Columns          []string `json:"columns"`
	Summary          string   `json:"summary"`
}

type metadataResponse struct {
	Metadata []dataset.ColumnMetadata `json:"metadata"`
	Columns  []string                 `json:"columns"`
}

// MergeMetadata joins a dictionary with dataset columns and summary statistics
func (h *Handler) MergeMetadata(w http.ResponseWriter, r *http.Request) {
	var req metadataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	var (
		dictionary []dataset.DictionaryRecord
		err        error
	)
	switch strings.ToLower(strings.TrimSpace(req.DictionaryFormat)) {
	case "", "csv":
		dictionary, err = datasetloader.ParseDictionaryCSV(req.Dictionary)
	case "json":
		dictionary, err = datasetloader.ParseDictionaryJSON(req.Dictionary)
	default:
		err = errors.UnsupportedFormat("unsupported dictionary format: " + req.DictionaryFormat)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	columns := req.Columns
	if strings.TrimSpace(req.Dataset) != "" {
		if columns, err = datasetloader.ParseDatasetHeaders(req.Dataset); err != nil {
			writeError(w, err)
			return
		}
	}

	var summary dataset.SummaryStats
	if strings.TrimSpace(req.Summary) != "" {
		if summary, err = datasetloader.ParseSummaryCSV(req.Summary); err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, metadataResponse{
		Metadata: datasetloader.MergeColumnMetadata(dictionary, columns, summary),
		Columns:  columns,
	})
}
