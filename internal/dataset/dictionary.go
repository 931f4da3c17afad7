package dataset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"walletlab/domain/dataset"
	"walletlab/internal/errors"
	"walletlab/internal/tabular"
)

// ParseDictionaryCSV reads dictionary records from CSV text whose headers are matched case-insensitively
func ParseDictionaryCSV(text string) ([]dataset.DictionaryRecord, error) {
	rows, err := tabular.ParseCSV(text)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.MalformedInput("dictionary is empty")
	}

	keys := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		keys[i] = normalizeKey(h)
	}

	raw := make([]map[string]string, 0, len(rows)-1)
	for _, record := range rows[1:] {
		fields := make(map[string]string, len(keys))
		for i, key := range keys {
			if i < len(record) {
				fields[key] = record[i]
			}
		}
		raw = append(raw, fields)
	}
	return buildDictionary(raw)
}

// ParseDictionaryJSON reads dictionary records from a JSON array of objects. Scalar values of any type
// are converted to text.
func ParseDictionaryJSON(text string) ([]dataset.DictionaryRecord, error) {
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, &errors.AppError{
			Code:    errors.CodeMalformedInput,
			Message: "dictionary JSON must be an array of objects",
			Cause:   err,
		}
	}

	raw := make([]map[string]string, 0, len(items))
	for _, item := range items {
		fields := make(map[string]string, len(item))
		for key, value := range item {
			s, err := cast.ToStringE(value)
			if err != nil {
				continue
			}
			fields[normalizeKey(key)] = s
		}
		raw = append(raw, fields)
	}
	return buildDictionary(raw)
}

func buildDictionary(raw []map[string]string) ([]dataset.DictionaryRecord, error) {
	records := make([]dataset.DictionaryRecord, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, fields := range raw {
		metric := strings.TrimSpace(fields["metric"])
		if metric == "" || seen[metric] {
			continue
		}
		seen[metric] = true

		records = append(records, dataset.DictionaryRecord{
			Metric:       metric,
			WhatItIs:     strings.TrimSpace(fields["what_it_is"]),
			DataType:     dataset.ParseDataType(fields["data_type"]),
			HigherIs:     dataset.ParseHigherIs(fields["higher_is"]),
			UnitsOrRange: strings.TrimSpace(fields["units_or_range"]),
		})
	}

	if len(records) == 0 {
		return nil, errors.MalformedInput(fmt.Sprintf("dictionary has no records with a metric (%d rows read)", len(raw)))
	}
	return records, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
