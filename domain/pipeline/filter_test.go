package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletlab/domain/dataset"
	"walletlab/internal/errors"
)

func TestFilterValueJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected FilterValue
	}{
		{"text", `"whale"`, TextValue("whale")},
		{"number", `5`, NumberValue(5)},
		{"negative float", `-2.5`, NumberValue(-2.5)},
		{"pair", `[5, 10]`, PairValue(5, 10)},
		{"null", `null`, FilterValue{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v FilterValue
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestFilterValueJSONRejectsBadPairs(t *testing.T) {
	var v FilterValue
	assert.Error(t, json.Unmarshal([]byte(`[1, 2, 3]`), &v))
	assert.Error(t, json.Unmarshal([]byte(`["a", "b"]`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"min": 1}`), &v))
}

func TestFilterDefinitionRoundTrip(t *testing.T) {
	f, err := NewFilterDefinition("pnl", "PnL", dataset.DataTypeCurrency, OpRange, PairValue(10, 0))
	require.NoError(t, err)

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"value":[10,0]`)
	assert.Contains(t, string(data), `"operator":{"type":"numeric","operator":"range"}`)

	var decoded FilterDefinition
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *f, decoded)
}

func TestFilterDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		filter  FilterDefinition
		wantErr bool
	}{
		{
			name: "numeric greaterThan",
			filter: FilterDefinition{ColumnKey: "pnl", DataType: dataset.DataTypeNumeric,
				Operator: Operator{Type: dataset.FamilyNumeric, Operator: OpGreaterThan}, Value: NumberValue(0)},
		},
		{
			name: "text contains",
			filter: FilterDefinition{ColumnKey: "label", DataType: dataset.DataTypeText,
				Operator: Operator{Type: dataset.FamilyText, Operator: OpContains}, Value: TextValue("bot")},
		},
		{
			name: "family mismatch",
			filter: FilterDefinition{ColumnKey: "label", DataType: dataset.DataTypeText,
				Operator: Operator{Type: dataset.FamilyNumeric, Operator: OpGreaterThan}, Value: NumberValue(1)},
			wantErr: true,
		},
		{
			name: "text operator on numeric column",
			filter: FilterDefinition{ColumnKey: "pnl", DataType: dataset.DataTypePercent,
				Operator: Operator{Type: dataset.FamilyNumeric, Operator: OpContains}, Value: TextValue("1")},
			wantErr: true,
		},
		{
			name: "range without pair",
			filter: FilterDefinition{ColumnKey: "pnl", DataType: dataset.DataTypeNumeric,
				Operator: Operator{Type: dataset.FamilyNumeric, Operator: OpRange}, Value: NumberValue(3)},
			wantErr: true,
		},
		{
			name: "pair on lessThan",
			filter: FilterDefinition{ColumnKey: "pnl", DataType: dataset.DataTypeNumeric,
				Operator: Operator{Type: dataset.FamilyNumeric, Operator: OpLessThan}, Value: PairValue(1, 2)},
			wantErr: true,
		},
		{
			name:    "missing column",
			filter:  FilterDefinition{DataType: dataset.DataTypeNumeric, Operator: Operator{Type: dataset.FamilyNumeric, Operator: OpLessThan}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
