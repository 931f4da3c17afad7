package filter

import (
	"strings"

	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
	datasetloader "walletlab/internal/dataset"
	"walletlab/internal/tabular"
)

// RowMatchesFilter reports whether a row satisfies one filter. Text comparisons ignore case. Numeric
// cells that do not parse never match, and an operator outside the column's family never matches.
func RowMatchesFilter(row dataset.Row, f *pipeline.FilterDefinition) bool {
	cell, _ := datasetloader.Value(row, f.ColumnKey)

	if f.DataType.Family() == dataset.FamilyText {
		return matchText(cell, f.Operator.Operator, f.Value)
	}
	return matchNumber(cell, f.Operator.Operator, f.Value)
}

func matchText(cell string, op pipeline.OperatorID, value pipeline.FilterValue) bool {
	cell = strings.ToLower(cell)
	target := strings.ToLower(value.String())

	switch op {
	case pipeline.OpEquals:
		return cell == target
	case pipeline.OpContains:
		return strings.Contains(cell, target)
	}
	return false
}

func matchNumber(cell string, op pipeline.OperatorID, value pipeline.FilterValue) bool {
	x := tabular.ParseNumber(cell)
	if tabular.IsNaN(x) {
		return false
	}

	switch op {
	case pipeline.OpRange:
		if !value.IsPair() {
			return false
		}
		lo, hi := orderedBounds(value.Pair)
		return x >= lo && x <= hi
	case pipeline.OpGreaterThan:
		return value.IsScalar() && x > value.Number
	case pipeline.OpLessThan:
		return value.IsScalar() && x < value.Number
	}
	return false
}

// ApplyFilters keeps the rows that match every filter. With no filters the input slice is returned as is.
func ApplyFilters(rows []dataset.Row, filters []pipeline.FilterDefinition) []dataset.Row {
	if len(filters) == 0 {
		return rows
	}

	kept := make([]dataset.Row, 0, len(rows))
	for _, row := range rows {
		if matchesAll(row, filters) {
			kept = append(kept, row)
		}
	}
	return kept
}

func matchesAll(row dataset.Row, filters []pipeline.FilterDefinition) bool {
	for i := range filters {
		if !RowMatchesFilter(row, &filters[i]) {
			return false
		}
	}
	return true
}
