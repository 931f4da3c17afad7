package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
)

func rows() []dataset.Row {
	return []dataset.Row{
		{"wallet": "0xa", "pnl": "5", "label": "Whale"},
		{"wallet": "0xb", "pnl": "-2", "label": "bot"},
		{"wallet": "0xc", "pnl": "abc", "label": "whale-bot"},
		{"wallet": "0xd", "pnl": "10", "label": ""},
		{"wallet": "0xe", "pnl": "1,000.5", "label": "fund"},
	}
}

func mustFilter(t *testing.T, column string, dataType dataset.DataType, op pipeline.OperatorID, value pipeline.FilterValue) pipeline.FilterDefinition {
	t.Helper()
	f, err := NewDefinition(column, "", dataType, op, value)
	require.NoError(t, err)
	return *f
}

func wallets(rs []dataset.Row) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r["wallet"])
	}
	return out
}

func TestRowMatchesFilter(t *testing.T) {
	tests := []struct {
		name     string
		column   string
		dataType dataset.DataType
		op       pipeline.OperatorID
		value    pipeline.FilterValue
		expected []string
	}{
		{"greater than", "pnl", dataset.DataTypeNumeric, pipeline.OpGreaterThan, pipeline.NumberValue(0), []string{"0xa", "0xd", "0xe"}},
		{"greater than is strict", "pnl", dataset.DataTypeNumeric, pipeline.OpGreaterThan, pipeline.NumberValue(5), []string{"0xd", "0xe"}},
		{"less than", "pnl", dataset.DataTypeCurrency, pipeline.OpLessThan, pipeline.NumberValue(5), []string{"0xb"}},
		{"range inclusive", "pnl", dataset.DataTypeNumeric, pipeline.OpRange, pipeline.PairValue(-2, 5), []string{"0xa", "0xb"}},
		{"equals ignores case", "label", dataset.DataTypeText, pipeline.OpEquals, pipeline.TextValue("WHALE"), []string{"0xa"}},
		{"contains", "label", dataset.DataTypeText, pipeline.OpContains, pipeline.TextValue("Bot"), []string{"0xb", "0xc"}},
		{"missing column", "nope", dataset.DataTypeNumeric, pipeline.OpGreaterThan, pipeline.NumberValue(-100), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFilter(t, tt.column, tt.dataType, tt.op, tt.value)
			assert.Equal(t, tt.expected, wallets(ApplyFilters(rows(), []pipeline.FilterDefinition{f})))
		})
	}
}

func TestRangeBoundsOrderIndependent(t *testing.T) {
	forward := mustFilter(t, "pnl", dataset.DataTypeNumeric, pipeline.OpRange, pipeline.PairValue(0, 10))
	reversed := mustFilter(t, "pnl", dataset.DataTypeNumeric, pipeline.OpRange, pipeline.PairValue(10, 0))

	for _, r := range rows() {
		assert.Equal(t, RowMatchesFilter(r, &forward), RowMatchesFilter(r, &reversed), r["wallet"])
	}
	assert.True(t, RowMatchesFilter(dataset.Row{"pnl": "0"}, &forward))
	assert.True(t, RowMatchesFilter(dataset.Row{"pnl": "10"}, &reversed))
}

func TestNonMatchingOperatorsAndTargets(t *testing.T) {
	row := dataset.Row{"pnl": "5", "label": "whale"}

	scalarOnPair := pipeline.FilterDefinition{ColumnKey: "pnl", DataType: dataset.DataTypeNumeric,
		Operator: pipeline.Operator{Type: dataset.FamilyNumeric, Operator: pipeline.OpGreaterThan}, Value: pipeline.PairValue(1, 2)}
	assert.False(t, RowMatchesFilter(row, &scalarOnPair))

	rangeOnScalar := pipeline.FilterDefinition{ColumnKey: "pnl", DataType: dataset.DataTypeNumeric,
		Operator: pipeline.Operator{Type: dataset.FamilyNumeric, Operator: pipeline.OpRange}, Value: pipeline.NumberValue(5)}
	assert.False(t, RowMatchesFilter(row, &rangeOnScalar))

	textOpOnNumber := pipeline.FilterDefinition{ColumnKey: "pnl", DataType: dataset.DataTypeNumeric,
		Operator: pipeline.Operator{Type: dataset.FamilyNumeric, Operator: pipeline.OpEquals}, Value: pipeline.TextValue("5")}
	assert.False(t, RowMatchesFilter(row, &textOpOnNumber))

	unknown := pipeline.FilterDefinition{ColumnKey: "label", DataType: dataset.DataTypeText,
		Operator: pipeline.Operator{Type: dataset.FamilyText, Operator: "startsWith"}, Value: pipeline.TextValue("wh")}
	assert.False(t, RowMatchesFilter(row, &unknown))
}

func TestApplyFiltersIdentity(t *testing.T) {
	input := rows()
	assert.Equal(t, input, ApplyFilters(input, nil))
	assert.Len(t, ApplyFilters(input, []pipeline.FilterDefinition{}), len(input))
}

func TestApplyFiltersIdempotentAndConjunctive(t *testing.T) {
	positive := mustFilter(t, "pnl", dataset.DataTypeNumeric, pipeline.OpGreaterThan, pipeline.NumberValue(0))
	small := mustFilter(t, "pnl", dataset.DataTypeNumeric, pipeline.OpLessThan, pipeline.NumberValue(100))
	filters := []pipeline.FilterDefinition{positive, small}

	once := ApplyFilters(rows(), filters)
	twice := ApplyFilters(once, filters)
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"0xa", "0xd"}, wallets(once))

	sequential := ApplyFilters(ApplyFilters(rows(), filters[:1]), filters[1:])
	assert.Equal(t, once, sequential)
}

func TestAvailableOperators(t *testing.T) {
	numeric := AvailableOperators(dataset.DataTypePercent)
	require.Len(t, numeric, 3)
	assert.Equal(t, pipeline.OpRange, numeric[0].Operator)
	assert.Equal(t, dataset.FamilyNumeric, numeric[0].Type)

	text := AvailableOperators(dataset.DataTypeText)
	require.Len(t, text, 2)
	assert.Equal(t, "Equals", text[0].Label)

	assert.Equal(t, "Greater than", DescribeOperator(pipeline.OpGreaterThan))
	assert.Equal(t, "startsWith", DescribeOperator("startsWith"))
	assert.Equal(t, "Unknown operator", DescribeOperator(""))
}

func TestDescribeFilter(t *testing.T) {
	f, err := NewDefinition("pnl", "PnL", dataset.DataTypeCurrency, pipeline.OpRange, pipeline.PairValue(10, -5))
	require.NoError(t, err)
	assert.Equal(t, "PnL between -5 and 10", f.Description)

	f, err = NewDefinition("label", "", dataset.DataTypeText, pipeline.OpContains, pipeline.TextValue("bot"))
	require.NoError(t, err)
	assert.Equal(t, `label contains "bot"`, f.Description)
}
