package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"walletlab/domain/core"
	"walletlab/domain/dataset"
	"walletlab/internal/errors"
)

// OperatorID names a comparison
type OperatorID string

const (
	OpRange       OperatorID = "range"
	OpGreaterThan OperatorID = "greaterThan"
	OpLessThan    OperatorID = "lessThan"
	OpEquals      OperatorID = "equals"
	OpContains    OperatorID = "contains"
)

// OperatorsFor returns the operator set of a type family
func OperatorsFor(family dataset.TypeFamily) []OperatorID {
	if family == dataset.FamilyText {
		return []OperatorID{OpEquals, OpContains}
	}
	return []OperatorID{OpRange, OpGreaterThan, OpLessThan}
}

// Operator pairs a comparison with the family it applies to
type Operator struct {
	Type     dataset.TypeFamily `json:"type"`
	Operator OperatorID         `json:"operator"`
}

// ValueKind tags the active member of FilterValue
type ValueKind string

const (
	ValueNone   ValueKind = ""
	ValueText   ValueKind = "text"
	ValueNumber ValueKind = "number"
	ValuePair   ValueKind = "pair"
)

// FilterValue is the operand of a filter: a string, a number or an ordered pair of numbers.
// It encodes to JSON as "abc", 5 or [5, 10].
type FilterValue struct {
	Kind   ValueKind
	Text   string
	Number float64
	Pair   [2]float64
}

func TextValue(s string) FilterValue    { return FilterValue{Kind: ValueText, Text: s} }
func NumberValue(n float64) FilterValue { return FilterValue{Kind: ValueNumber, Number: n} }
func PairValue(a, b float64) FilterValue {
	return FilterValue{Kind: ValuePair, Pair: [2]float64{a, b}}
}

// IsPair reports whether the value is a two-element pair
func (v FilterValue) IsPair() bool { return v.Kind == ValuePair }

// IsScalar reports whether the value is a single number
func (v FilterValue) IsScalar() bool { return v.Kind == ValueNumber }

// String renders the value the way text comparisons see it
func (v FilterValue) String() string {
	switch v.Kind {
	case ValueText:
		return v.Text
	case ValueNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ValuePair:
		return strconv.FormatFloat(v.Pair[0], 'f', -1, 64) + "," + strconv.FormatFloat(v.Pair[1], 'f', -1, 64)
	}
	return ""
}

func (v FilterValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueText:
		return json.Marshal(v.Text)
	case ValueNumber:
		return json.Marshal(v.Number)
	case ValuePair:
		return json.Marshal(v.Pair)
	}
	return []byte("null"), nil
}

func (v *FilterValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = FilterValue{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	case '[':
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("filter value pair must hold numbers: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("filter value pair must have exactly two elements, got %d", len(pair))
		}
		*v = PairValue(pair[0], pair[1])
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("filter value must be a string, number or pair: %w", err)
		}
		*v = NumberValue(n)
	}
	return nil
}

// FilterDefinition is a single predicate over one column
type FilterDefinition struct {
	ID          core.ID          `json:"id"`
	ColumnKey   string           `json:"column_key"`
	ColumnLabel string           `json:"column_label"`
	DataType    dataset.DataType `json:"data_type"`
	Operator    Operator         `json:"operator"`
	Value       FilterValue      `json:"value"`
	Description string           `json:"description"`
}

// NewFilterDefinition builds a validated filter with a fresh ID. The operator family is derived
// from the data type.
func NewFilterDefinition(columnKey, columnLabel string, dataType dataset.DataType, op OperatorID, value FilterValue) (*FilterDefinition, error) {
	if columnLabel == "" {
		columnLabel = columnKey
	}
	f := &FilterDefinition{
		ID:          core.NewID(),
		ColumnKey:   columnKey,
		ColumnLabel: columnLabel,
		DataType:    dataType,
		Operator:    Operator{Type: dataType.Family(), Operator: op},
		Value:       value,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the structural invariants of the definition
func (f *FilterDefinition) Validate() error {
	if strings.TrimSpace(f.ColumnKey) == "" {
		return errors.ValidationError("filter column is required")
	}

	family := f.DataType.Family()
	if f.Operator.Type != family {
		return errors.ValidationError(fmt.Sprintf(
			"filter on %q: operator type %q does not match data type %q", f.ColumnKey, f.Operator.Type, f.DataType))
	}

	known := false
	for _, op := range OperatorsFor(family) {
		if op == f.Operator.Operator {
			known = true
			break
		}
	}
	if !known {
		return errors.ValidationError(fmt.Sprintf(
			"filter on %q: operator %q is not available for %s columns", f.ColumnKey, f.Operator.Operator, family))
	}

	if (f.Operator.Operator == OpRange) != f.Value.IsPair() {
		if f.Operator.Operator == OpRange {
			return errors.ValidationError(fmt.Sprintf("filter on %q: range needs a [min, max] pair", f.ColumnKey))
		}
		return errors.ValidationError(fmt.Sprintf("filter on %q: only range accepts a pair value", f.ColumnKey))
	}
	return nil
}

// ValidateFilters validates every definition in order
func ValidateFilters(filters []FilterDefinition) error {
	for i := range filters {
		if err := filters[i].Validate(); err != nil {
			return errors.Wrapf(err, "filter %d is invalid", i+1)
		}
	}
	return nil
}
