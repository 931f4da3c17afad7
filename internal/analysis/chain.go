package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
	"walletlab/internal/errors"
	"walletlab/internal/profiling"
)

// DerivedColumn holds one value per evaluated row. NaN marks rows without a result.
type DerivedColumn struct {
	Name   string
	Values []float64
}

type derivedColumnJSON struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// MarshalJSON encodes NaN and infinite values as null
func (c DerivedColumn) MarshalJSON() ([]byte, error) {
	out := derivedColumnJSON{Name: c.Name, Values: make([]*float64, len(c.Values))}
	for i, v := range c.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		v := v
		out.Values[i] = &v
	}
	return json.Marshal(out)
}

func (c *DerivedColumn) UnmarshalJSON(data []byte) error {
	var in derivedColumnJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.Name = in.Name
	c.Values = make([]float64, len(in.Values))
	for i, v := range in.Values {
		if v == nil {
			c.Values[i] = math.NaN()
		} else {
			c.Values[i] = *v
		}
	}
	return nil
}

// Cell renders the value of row i as cell text, "" when there is no result
func (c DerivedColumn) Cell(i int) string {
	if i >= len(c.Values) {
		return ""
	}
	v := c.Values[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EvaluateStep computes the step's method for every row. The normal fit uses the finite values of the
// column across rows. Cells that are not numbers give NaN.
func EvaluateStep(rows []dataset.Row, step pipeline.AnalysisTemplate) ([]float64, error) {
	method, ok := LookupMethod(step.MethodID)
	if !ok {
		return nil, errors.ValidationError(fmt.Sprintf("unknown analysis method %q", step.MethodID))
	}

	values := profiling.ColumnValues(rows, step.ColumnKey)
	results := make([]float64, len(values))

	fit, err := profiling.FitNormal(values)
	if err != nil {
		for i := range results {
			results[i] = math.NaN()
		}
		return results, nil
	}

	for i, x := range values {
		results[i] = method.compute(fit, x)
	}
	return results, nil
}

// EvaluateChain folds the chain's steps left to right with its operators
func EvaluateChain(rows []dataset.Row, chain pipeline.AnalysisChain) (*DerivedColumn, error) {
	if err := chain.Validate(); err != nil {
		return nil, err
	}

	acc, err := EvaluateStep(rows, chain.Steps[0])
	if err != nil {
		return nil, err
	}

	for i, step := range chain.Steps[1:] {
		next, err := EvaluateStep(rows, step)
		if err != nil {
			return nil, err
		}
		op := chain.Operators[i]
		for j := range acc {
			acc[j] = combine(acc[j], next[j], op)
		}
	}

	return &DerivedColumn{Name: chain.ResultName, Values: acc}, nil
}

// EvaluateChains evaluates every chain over the same rows
func EvaluateChains(rows []dataset.Row, chains []pipeline.AnalysisChain) ([]DerivedColumn, error) {
	columns := make([]DerivedColumn, 0, len(chains))
	for i, chain := range chains {
		col, err := EvaluateChain(rows, chain)
		if err != nil {
			return nil, errors.Wrapf(err, "analysis chain %d", i+1)
		}
		columns = append(columns, *col)
	}
	return columns, nil
}

func combine(a, b float64, op pipeline.ArithmeticOperator) float64 {
	switch op {
	case pipeline.OpAdd:
		return a + b
	case pipeline.OpSubtract:
		return a - b
	case pipeline.OpMultiply:
		return a * b
	case pipeline.OpDivide:
		if b == 0 {
			return math.NaN()
		}
		return a / b
	}
	return math.NaN()
}

// AppendColumn returns copies of rows with each derived value added as a text cell
func AppendColumn(rows []dataset.Row, columns ...DerivedColumn) []dataset.Row {
	out := make([]dataset.Row, len(rows))
	for i, row := range rows {
		copied := make(dataset.Row, len(row)+len(columns))
		for k, v := range row {
			copied[k] = v
		}
		for _, col := range columns {
			copied[col.Name] = col.Cell(i)
		}
		out[i] = copied
	}
	return out
}
