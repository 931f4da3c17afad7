package dataset

import (
	"strings"

	"walletlab/domain/dataset"
	"walletlab/internal/errors"
	"walletlab/internal/tabular"
)

// ParseSummaryCSV reads per-column mean and median values. Each row names its statistic in a "stat"
// column; rows with any other statistic are ignored and cells that are not numbers are skipped.
func ParseSummaryCSV(text string) (dataset.SummaryStats, error) {
	rows, err := tabular.ParseCSV(text)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.MalformedInput("summary is empty")
	}

	headers := rows[0]
	statIdx := -1
	for i, h := range headers {
		if normalizeKey(h) == "stat" {
			statIdx = i
			break
		}
	}
	if statIdx < 0 {
		return nil, errors.MalformedInput("summary has no stat column")
	}

	stats := make(dataset.SummaryStats)
	for _, record := range rows[1:] {
		if statIdx >= len(record) {
			continue
		}

		var median bool
		switch normalizeKey(record[statIdx]) {
		case "mean", "average":
		case "median":
			median = true
		default:
			continue
		}

		for i, cell := range record {
			if i == statIdx || i >= len(headers) {
				continue
			}
			column := strings.TrimSpace(headers[i])
			if column == "" {
				continue
			}
			value := tabular.ParseNumber(cell)
			if !tabular.IsFinite(value) {
				continue
			}

			entry := stats[column]
			v := value
			if median {
				entry.Median = &v
			} else {
				entry.Mean = &v
			}
			stats[column] = entry
		}
	}

	if len(stats) == 0 {
		return nil, errors.MalformedInput("summary has no mean or median values")
	}
	return stats, nil
}
