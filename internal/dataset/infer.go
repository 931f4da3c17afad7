package dataset

import (
	"math"
	"strings"
	"unicode"

	"walletlab/domain/dataset"
	"walletlab/internal/tabular"
)

const (
	inferSampleSize       = 500
	inferNumericThreshold = 0.9
)

// SuggestDictionary drafts a dictionary for a dataset that was uploaded without one. Types are inferred
// from a stratified sample of each column.
func SuggestDictionary(ds *dataset.Dataset) []dataset.DictionaryRecord {
	indices := stratifiedSample(ds.RowCount(), inferSampleSize)
	records := make([]dataset.DictionaryRecord, 0, len(ds.Headers))

	for _, column := range ds.Columns() {
		values := make([]string, 0, len(indices))
		for _, idx := range indices {
			if v, ok := Value(ds.Rows[idx], column); ok {
				values = append(values, v)
			}
		}
		records = append(records, dataset.DictionaryRecord{
			Metric:   column,
			DataType: InferDataType(values),
			HigherIs: dataset.HigherIsDepends,
		})
	}
	return records
}

// InferDataType guesses the declared type of a column from its cells. Blank cells are ignored and cells
// containing letters never count as numbers.
func InferDataType(values []string) dataset.DataType {
	var filled, numeric, percent, currency int
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		filled++
		if strings.IndexFunc(v, unicode.IsLetter) >= 0 || !tabular.IsFinite(tabular.ParseNumber(v)) {
			continue
		}
		numeric++
		if strings.HasSuffix(v, "%") {
			percent++
		}
		if strings.ContainsAny(v, "$€£¥") {
			currency++
		}
	}

	if filled == 0 {
		return dataset.DataTypeNumeric
	}
	if float64(numeric)/float64(filled) < inferNumericThreshold {
		return dataset.DataTypeText
	}
	switch {
	case percent*2 > numeric:
		return dataset.DataTypePercent
	case currency*2 > numeric:
		return dataset.DataTypeCurrency
	}
	return dataset.DataTypeNumeric
}

// stratifiedSample returns up to size row indices spread evenly over total rows
func stratifiedSample(total, size int) []int {
	if size >= total {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	indices := make([]int, 0, size)
	step := float64(total) / float64(size)
	last := -1
	for i := 0; i < size; i++ {
		idx := int(math.Round(float64(i) * step))
		if idx >= total || idx == last {
			continue
		}
		indices = append(indices, idx)
		last = idx
	}
	return indices
}
