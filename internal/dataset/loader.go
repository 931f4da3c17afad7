// Package dataset turns uploaded dataset, dictionary and summary files into in-memory structures.
package dataset

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"walletlab/domain/dataset"
	"walletlab/internal/errors"
	"walletlab/internal/tabular"
	"walletlab/ports"
)

// Loaded holds the parsed content of one slot. Exactly one field is set, matching Slot.
type Loaded struct {
	Slot       dataset.Slot
	Filename   string
	Dataset    *dataset.Dataset
	Dictionary []dataset.DictionaryRecord
	Summary    dataset.SummaryStats
}

// Loader dispatches uploaded files to the parser for their slot and extension
type Loader struct {
	spreadsheets ports.SpreadsheetReader
}

// NewLoader creates a loader. A nil reader disables .xlsx datasets.
func NewLoader(spreadsheets ports.SpreadsheetReader) *Loader {
	return &Loader{spreadsheets: spreadsheets}
}

// SupportedExtensions lists the file extensions a slot accepts
func (l *Loader) SupportedExtensions(slot dataset.Slot) []string {
	switch slot {
	case dataset.SlotDataset:
		if l.spreadsheets != nil {
			return []string{".csv", ".xlsx"}
		}
		return []string{".csv"}
	case dataset.SlotDictionary:
		return []string{".csv", ".json"}
	case dataset.SlotSummary:
		return []string{".csv"}
	}
	return nil
}

// LoadFile parses content according to the slot and the extension of filename
func (l *Loader) LoadFile(slot dataset.Slot, filename string, content []byte) (*Loaded, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	loaded := &Loaded{Slot: slot, Filename: filename}

	var err error
	switch slot {
	case dataset.SlotDataset:
		loaded.Dataset, err = l.loadDataset(ext, content)
		if loaded.Dataset != nil {
			loaded.Dataset.Filename = filename
		}
	case dataset.SlotDictionary:
		switch ext {
		case ".csv":
			loaded.Dictionary, err = ParseDictionaryCSV(string(content))
		case ".json":
			loaded.Dictionary, err = ParseDictionaryJSON(string(content))
		default:
			err = unsupported(slot, ext)
		}
	case dataset.SlotSummary:
		if ext != ".csv" {
			err = unsupported(slot, ext)
		} else {
			loaded.Summary, err = ParseSummaryCSV(string(content))
		}
	default:
		err = errors.InvalidInput(fmt.Sprintf("unknown slot %q", slot))
	}

	if err != nil {
		log.Printf("[Loader] Failed to load %s file %s: %v", slot, filename, err)
		return nil, errors.Wrapf(err, "failed to load %s file %s", slot, filename)
	}
	return loaded, nil
}

func (l *Loader) loadDataset(ext string, content []byte) (*dataset.Dataset, error) {
	switch ext {
	case ".csv":
		return ParseDataset(string(content))
	case ".xlsx":
		if l.spreadsheets == nil {
			return nil, unsupported(dataset.SlotDataset, ext)
		}
		rows, err := l.spreadsheets.ReadRows(content)
		if err != nil {
			return nil, err
		}
		return DatasetFromRows(rows)
	case ".parquet":
		return nil, errors.UnsupportedFormat("columnar dataset files are not supported, export the table as CSV or XLSX")
	}
	return nil, unsupported(dataset.SlotDataset, ext)
}

func unsupported(slot dataset.Slot, ext string) error {
	if ext == "" {
		ext = "(none)"
	}
	return errors.UnsupportedFormat(fmt.Sprintf("unsupported %s file extension %s", slot, ext))
}

// ParseDataset tokenizes text and maps every data row onto the raw header cells
func ParseDataset(text string) (*dataset.Dataset, error) {
	rows, err := tabular.ParseCSV(text)
	if err != nil {
		return nil, err
	}
	return DatasetFromRows(rows)
}

// DatasetFromRows builds a dataset from tokenized rows. Missing trailing cells become "" and surplus
// cells are dropped.
func DatasetFromRows(rows [][]string) (*dataset.Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.MalformedInput("dataset is empty")
	}

	headers := rows[0]
	ds := &dataset.Dataset{
		Headers: headers,
		Rows:    make([]dataset.Row, 0, len(rows)-1),
	}
	for _, record := range rows[1:] {
		row := make(dataset.Row, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// ParseDatasetHeaders returns the trimmed, non-empty cells of the first row
func ParseDatasetHeaders(text string) ([]string, error) {
	rows, err := tabular.ParseCSV(text)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []string{}, nil
	}
	ds := &dataset.Dataset{Headers: rows[0]}
	return ds.Columns(), nil
}

// Value returns the cell for column, matching a header that differs only by surrounding whitespace
// when there is no exact key. Several such headers resolve to the smallest raw key.
func Value(row dataset.Row, column string) (string, bool) {
	if v, ok := row[column]; ok {
		return v, true
	}
	want := strings.TrimSpace(column)
	match, found := "", false
	for key := range row {
		if strings.TrimSpace(key) == want && (!found || key < match) {
			match, found = key, true
		}
	}
	if !found {
		return "", false
	}
	return row[match], true
}
