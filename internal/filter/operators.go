// Package filter evaluates filter definitions against dataset rows.
package filter

import (
	"fmt"
	"strconv"

	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
)

// OperatorInfo describes an operator for selection lists
type OperatorInfo struct {
	Type     dataset.TypeFamily  `json:"type"`
	Operator pipeline.OperatorID `json:"operator"`
	Label    string              `json:"label"`
	Symbol   string              `json:"symbol"`
}

var operatorLabels = map[pipeline.OperatorID]struct{ label, symbol string }{
	pipeline.OpRange:       {"Between", "↔"},
	pipeline.OpGreaterThan: {"Greater than", ">"},
	pipeline.OpLessThan:    {"Less than", "<"},
	pipeline.OpEquals:      {"Equals", "="},
	pipeline.OpContains:    {"Contains", "∋"},
}

// AvailableOperators lists the operators that apply to a data type
func AvailableOperators(dataType dataset.DataType) []OperatorInfo {
	family := dataType.Family()
	ids := pipeline.OperatorsFor(family)

	infos := make([]OperatorInfo, 0, len(ids))
	for _, id := range ids {
		l := operatorLabels[id]
		infos = append(infos, OperatorInfo{Type: family, Operator: id, Label: l.label, Symbol: l.symbol})
	}
	return infos
}

// DescribeOperator returns a human label, falling back to the raw id for unknown operators
func DescribeOperator(op pipeline.OperatorID) string {
	if l, ok := operatorLabels[op]; ok {
		return l.label
	}
	if op == "" {
		return "Unknown operator"
	}
	return string(op)
}

// DescribeFilter renders the sentence stored as a filter's description
func DescribeFilter(f *pipeline.FilterDefinition) string {
	label := f.ColumnLabel
	if label == "" {
		label = f.ColumnKey
	}

	switch f.Operator.Operator {
	case pipeline.OpRange:
		lo, hi := orderedBounds(f.Value.Pair)
		return fmt.Sprintf("%s between %s and %s", label, formatNumber(lo), formatNumber(hi))
	case pipeline.OpGreaterThan:
		return fmt.Sprintf("%s > %s", label, f.Value.String())
	case pipeline.OpLessThan:
		return fmt.Sprintf("%s < %s", label, f.Value.String())
	case pipeline.OpEquals:
		return fmt.Sprintf("%s equals %q", label, f.Value.String())
	case pipeline.OpContains:
		return fmt.Sprintf("%s contains %q", label, f.Value.String())
	}
	return fmt.Sprintf("%s %s %s", label, DescribeOperator(f.Operator.Operator), f.Value.String())
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orderedBounds(pair [2]float64) (float64, float64) {
	if pair[0] > pair[1] {
		return pair[1], pair[0]
	}
	return pair[0], pair[1]
}

// NewDefinition builds a validated filter and fills in its description
func NewDefinition(columnKey, columnLabel string, dataType dataset.DataType, op pipeline.OperatorID, value pipeline.FilterValue) (*pipeline.FilterDefinition, error) {
	f, err := pipeline.NewFilterDefinition(columnKey, columnLabel, dataType, op, value)
	if err != nil {
		return nil, err
	}
	f.Description = DescribeFilter(f)
	return f, nil
}

// Describe fills in missing descriptions, for filters decoded from files or requests
func Describe(filters []pipeline.FilterDefinition) {
	for i := range filters {
		if filters[i].Description == "" {
			filters[i].Description = DescribeFilter(&filters[i])
		}
	}
}
