package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
	"walletlab/internal/errors"
)

func walletRows() []dataset.Row {
	return []dataset.Row{
		{"wallet": "a", "pnl": "2", "vol": "1"},
		{"wallet": "b", "pnl": "4", "vol": "1"},
		{"wallet": "c", "pnl": "4", "vol": "1"},
		{"wallet": "d", "pnl": "4", "vol": "1"},
		{"wallet": "e", "pnl": "5", "vol": "1"},
		{"wallet": "f", "pnl": "5", "vol": "1"},
		{"wallet": "g", "pnl": "7", "vol": "1"},
		{"wallet": "h", "pnl": "9", "vol": "1"},
		{"wallet": "i", "pnl": "n/a", "vol": "1"},
	}
}

func template(t *testing.T, column string, id pipeline.MethodID) pipeline.AnalysisTemplate {
	t.Helper()
	step, ok := NewTemplate(column, "", dataset.DataTypeNumeric, id)
	require.True(t, ok)
	return *step
}

func TestEvaluateStepBellCurve(t *testing.T) {
	values, err := EvaluateStep(walletRows(), template(t, "pnl", pipeline.MethodBellCurve))
	require.NoError(t, err)
	require.Len(t, values, 9)

	// mean 5, population std-dev 2
	assert.InDelta(t, 1.5, values[0], 1e-9)
	assert.InDelta(t, 0.5, values[1], 1e-9)
	assert.InDelta(t, 0.0, values[4], 1e-9)
	assert.InDelta(t, 2.0, values[7], 1e-9)
	assert.True(t, math.IsNaN(values[8]))
}

func TestEvaluateStepZeroVariance(t *testing.T) {
	values, err := EvaluateStep(walletRows(), template(t, "vol", pipeline.MethodBellCurve))
	require.NoError(t, err)
	for _, v := range values {
		assert.Equal(t, 0.0, v)
	}
}

func TestEvaluateStepUnknownMethod(t *testing.T) {
	_, err := EvaluateStep(walletRows(), pipeline.AnalysisTemplate{ColumnKey: "pnl", MethodID: "median"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestEvaluateStepNoNumbers(t *testing.T) {
	values, err := EvaluateStep(walletRows(), template(t, "wallet", pipeline.MethodZScore))
	require.NoError(t, err)
	for _, v := range values {
		assert.True(t, math.IsNaN(v))
	}
}

func TestEvaluateChain(t *testing.T) {
	rows := walletRows()

	chain := pipeline.AnalysisChain{
		ResultName: "risk",
		Steps:      []pipeline.AnalysisTemplate{template(t, "pnl", pipeline.MethodZScore), template(t, "pnl", pipeline.MethodBellCurve)},
		Operators:  []pipeline.ArithmeticOperator{pipeline.OpAdd},
	}
	col, err := EvaluateChain(rows, chain)
	require.NoError(t, err)
	assert.Equal(t, "risk", col.Name)
	assert.InDelta(t, 0.0, col.Values[0], 1e-9)
	assert.InDelta(t, 4.0, col.Values[7], 1e-9)
	assert.True(t, math.IsNaN(col.Values[8]))
}

func TestEvaluateChainDivisionByZero(t *testing.T) {
	chain := pipeline.AnalysisChain{
		Steps:     []pipeline.AnalysisTemplate{template(t, "pnl", pipeline.MethodBellCurve), template(t, "vol", pipeline.MethodBellCurve)},
		Operators: []pipeline.ArithmeticOperator{pipeline.OpDivide},
	}
	col, err := EvaluateChain(walletRows(), chain)
	require.NoError(t, err)
	assert.Equal(t, pipeline.DefaultResultName, col.Name)
	for _, v := range col.Values {
		assert.True(t, math.IsNaN(v))
	}

	data, err := json.Marshal(col)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"values":[null,null`)
}

func TestEvaluateChainRejectsMismatch(t *testing.T) {
	chain := pipeline.AnalysisChain{
		Steps: []pipeline.AnalysisTemplate{template(t, "pnl", pipeline.MethodBellCurve), template(t, "vol", pipeline.MethodBellCurve)},
	}
	_, err := EvaluateChain(walletRows(), chain)
	assert.Error(t, err)

	chain.Operators = []pipeline.ArithmeticOperator{pipeline.OpAdd}
	_, err = EvaluateChain(walletRows(), chain)
	assert.NoError(t, err)
}

func TestAppendColumn(t *testing.T) {
	rows := []dataset.Row{{"pnl": "1"}, {"pnl": "x"}}
	col := DerivedColumn{Name: "score", Values: []float64{1.5, math.NaN()}}

	out := AppendColumn(rows, col)
	assert.Equal(t, "1.5", out[0]["score"])
	assert.Equal(t, "", out[1]["score"])
	assert.NotContains(t, rows[0], "score")
}

func TestDerivedColumnJSONRoundTrip(t *testing.T) {
	col := DerivedColumn{Name: "score", Values: []float64{1, math.NaN(), -2.5}}
	data, err := json.Marshal(col)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"score","values":[1,null,-2.5]}`, string(data))

	var decoded DerivedColumn
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "score", decoded.Name)
	assert.True(t, math.IsNaN(decoded.Values[1]))
	assert.Equal(t, -2.5, decoded.Values[2])
}

func TestMethods(t *testing.T) {
	all := Methods()
	require.NotEmpty(t, all)
	assert.Equal(t, pipeline.MethodBellCurve, all[0].ID)
	assert.True(t, all[0].Primary)

	_, ok := LookupMethod("nope")
	assert.False(t, ok)
}
