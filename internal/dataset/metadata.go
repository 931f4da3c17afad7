package dataset

import "walletlab/domain/dataset"

// MergeColumnMetadata joins dictionary entries with summary statistics. When datasetColumns is non-empty
// only entries naming one of those columns are kept. Dictionary order is preserved.
func MergeColumnMetadata(dictionary []dataset.DictionaryRecord, datasetColumns []string, summary dataset.SummaryStats) []dataset.ColumnMetadata {
	var present map[string]bool
	if len(datasetColumns) > 0 {
		present = make(map[string]bool, len(datasetColumns))
		for _, c := range datasetColumns {
			present[c] = true
		}
	}

	merged := make([]dataset.ColumnMetadata, 0, len(dictionary))
	for _, record := range dictionary {
		if present != nil && !present[record.Metric] {
			continue
		}
		meta := dataset.ColumnMetadata{DictionaryRecord: record}
		if stats, ok := summary[record.Metric]; ok {
			meta.Average = copyFloat(stats.Mean)
			meta.Median = copyFloat(stats.Median)
		}
		merged = append(merged, meta)
	}
	return merged
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// ColumnIndex looks metadata up by metric
func ColumnIndex(metadata []dataset.ColumnMetadata) map[string]dataset.ColumnMetadata {
	index := make(map[string]dataset.ColumnMetadata, len(metadata))
	for _, m := range metadata {
		index[m.Metric] = m
	}
	return index
}
