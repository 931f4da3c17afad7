package dataset

import (
	"strings"
	"time"

	"walletlab/domain/core"
)

// Slot identifies one of the three upload slots of a workspace
type Slot string

const (
	SlotDataset    Slot = "dataset"
	SlotDictionary Slot = "dictionary"
	SlotSummary    Slot = "summary"
)

// Slots lists every upload slot in load order
var Slots = []Slot{SlotDataset, SlotDictionary, SlotSummary}

// ParseSlot validates a slot name coming from a route or a preset document
func ParseSlot(s string) (Slot, bool) {
	switch Slot(strings.ToLower(strings.TrimSpace(s))) {
	case SlotDataset:
		return SlotDataset, true
	case SlotDictionary:
		return SlotDictionary, true
	case SlotSummary:
		return SlotSummary, true
	}
	return "", false
}

// Row maps a column name to its raw cell text
type Row map[string]string

// Dataset is the primary uploaded table, one row per wallet
type Dataset struct {
	Filename string   `json:"filename"`
	Headers  []string `json:"headers"` // raw header cells, used as row keys
	Rows     []Row    `json:"rows"`
}

// Columns returns the trimmed, non-empty header names
func (d *Dataset) Columns() []string {
	if d == nil {
		return nil
	}
	columns := make([]string, 0, len(d.Headers))
	for _, h := range d.Headers {
		if trimmed := strings.TrimSpace(h); trimmed != "" {
			columns = append(columns, trimmed)
		}
	}
	return columns
}

// RowCount returns the number of data rows
func (d *Dataset) RowCount() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// DataType is the declared type of a dictionary column
type DataType string

const (
	DataTypeNumeric  DataType = "numeric"
	DataTypeText     DataType = "text"
	DataTypePercent  DataType = "percent"
	DataTypeCurrency DataType = "currency"
	DataTypeRatio    DataType = "ratio"
)

// TypeFamily groups data types that share an operator set
type TypeFamily string

const (
	FamilyNumeric TypeFamily = "numeric"
	FamilyText    TypeFamily = "text"
)

// Family returns the operator family of the data type. Unknown types are treated as numeric.
func (t DataType) Family() TypeFamily {
	if t == DataTypeText {
		return FamilyText
	}
	return FamilyNumeric
}

// ParseDataType normalizes a raw value, falling back to numeric
func ParseDataType(raw string) DataType {
	switch DataType(strings.ToLower(strings.TrimSpace(raw))) {
	case DataTypeNumeric:
		return DataTypeNumeric
	case DataTypeText:
		return DataTypeText
	case DataTypePercent:
		return DataTypePercent
	case DataTypeCurrency:
		return DataTypeCurrency
	case DataTypeRatio:
		return DataTypeRatio
	}
	return DataTypeNumeric
}

// HigherIs describes whether larger values of a metric are desirable
type HigherIs string

const (
	HigherIsBetter  HigherIs = "better"
	HigherIsWorse   HigherIs = "worse"
	HigherIsDepends HigherIs = "depends"
)

// ParseHigherIs normalizes a raw value, falling back to depends
func ParseHigherIs(raw string) HigherIs {
	switch HigherIs(strings.ToLower(strings.TrimSpace(raw))) {
	case HigherIsBetter:
		return HigherIsBetter
	case HigherIsWorse:
		return HigherIsWorse
	}
	return HigherIsDepends
}

// DictionaryRecord describes one dataset column
type DictionaryRecord struct {
	Metric       string   `json:"metric"`
	WhatItIs     string   `json:"what_it_is"`
	DataType     DataType `json:"data_type"`
	HigherIs     HigherIs `json:"higher_is"`
	UnitsOrRange string   `json:"units_or_range,omitempty"`
}

// ColumnStats holds the aggregate values supplied by a summary file
type ColumnStats struct {
	Mean   *float64 `json:"mean,omitempty"`
	Median *float64 `json:"median,omitempty"`
}

// SummaryStats maps a column name to its aggregates
type SummaryStats map[string]ColumnStats

// ColumnMetadata is a dictionary record enriched with summary statistics
type ColumnMetadata struct {
	DictionaryRecord
	Average *float64 `json:"average,omitempty"`
	Median  *float64 `json:"median,omitempty"`
}

// UploadedFile is the stored copy of an upload, owned by the persistence layer
type UploadedFile struct {
	ID          core.FileID `json:"id" db:"id"`
	UserID      core.UserID `json:"user_id" db:"user_id"`
	Slot        Slot        `json:"slot" db:"slot"`
	Filename    string      `json:"filename" db:"filename"`
	StoragePath string      `json:"-" db:"storage_path"`
	SizeBytes   int64       `json:"size_bytes" db:"size_bytes"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// NewUploadedFile creates a file record with a fresh ID
func NewUploadedFile(userID core.UserID, slot Slot, filename string, size int64) *UploadedFile {
	return &UploadedFile{
		ID:        core.FileID(core.NewID()),
		UserID:    userID,
		Slot:      slot,
		Filename:  filename,
		SizeBytes: size,
		CreatedAt: time.Now(),
	}
}
