package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"walletlab/adapters/excel"
	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
	"walletlab/internal/config"
	datasetloader "walletlab/internal/dataset"
	"walletlab/internal/filter"
	"walletlab/internal/tabular"
	"walletlab/ports"
)

var workbooks = excel.NewWorkbookReader()

// sheets renders xlsx output
var sheets ports.SpreadsheetWriter = workbooks

// readInput reads a file, honoring the configured upload limit
func readInput(path string) ([]byte, error) {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	limit := cfg.Storage.MaxUploadBytes
	content, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(content)) > limit {
		return nil, fmt.Errorf("%s exceeds the %d byte limit", path, limit)
	}
	return content, nil
}

func loadSlot(slot dataset.Slot, path string) (*datasetloader.Loaded, error) {
	content, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return datasetloader.NewLoader(workbooks).LoadFile(slot, filepath.Base(path), content)
}

func loadDataset(path string) (*dataset.Dataset, error) {
	loaded, err := loadSlot(dataset.SlotDataset, path)
	if err != nil {
		return nil, err
	}
	return loaded.Dataset, nil
}

// decodePipelineFile decodes YAML or JSON into a JSON-shaped value. YAML is normalized through JSON
// so the same json tags and custom decoders apply to both formats.
func decodePipelineFile(path string) (json.RawMessage, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc interface{}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", path, err)
	}
	return raw, nil
}

// readFilters accepts a list of filters or {"filters": [...]}
func readFilters(path string) ([]pipeline.FilterDefinition, error) {
	raw, err := decodePipelineFile(path)
	if err != nil {
		return nil, err
	}

	var filters []pipeline.FilterDefinition
	if err := json.Unmarshal(raw, &filters); err != nil {
		var doc struct {
			Filters []pipeline.FilterDefinition `json:"filters"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		filters = doc.Filters
	}

	for i := range filters {
		if filters[i].Operator.Type == "" {
			filters[i].Operator.Type = filters[i].DataType.Family()
		}
	}
	if err := pipeline.ValidateFilters(filters); err != nil {
		return nil, err
	}
	filter.Describe(filters)
	return filters, nil
}

// readChains accepts one chain, a list of chains or {"analysis_chains": [...]}
func readChains(path string) ([]pipeline.AnalysisChain, error) {
	raw, err := decodePipelineFile(path)
	if err != nil {
		return nil, err
	}

	var chains []pipeline.AnalysisChain
	if err := json.Unmarshal(raw, &chains); err != nil {
		var doc struct {
			AnalysisChains []pipeline.AnalysisChain `json:"analysis_chains"`
			pipeline.AnalysisChain
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		chains = doc.AnalysisChains
		if len(chains) == 0 && len(doc.Steps) > 0 {
			chains = []pipeline.AnalysisChain{doc.AnalysisChain}
		}
	}

	if len(chains) == 0 {
		return nil, fmt.Errorf("%s: no analysis chains", path)
	}
	for i := range chains {
		if err := chains[i].Validate(); err != nil {
			return nil, fmt.Errorf("chain %d: %w", i+1, err)
		}
	}
	return chains, nil
}

// writeRows writes headers and rows as CSV, or as a workbook when path ends in .xlsx. An empty path
// writes CSV to stdout.
func writeRows(stdout io.Writer, path string, headers []string, rows []dataset.Row) error {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, headers)
	for _, row := range rows {
		record := make([]string, len(headers))
		for i, h := range headers {
			record[i] = row[h]
		}
		table = append(table, record)
	}

	if path == "" {
		text, err := tabular.FormatCSV(table)
		if err != nil {
			return err
		}
		_, err = io.WriteString(stdout, text)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return sheets.WriteRows(f, "Results", table)
	}
	text, err := tabular.FormatCSV(table)
	if err != nil {
		return err
	}
	_, err = io.WriteString(f, text)
	return err
}
