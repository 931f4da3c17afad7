package pipeline

import (
	"fmt"
	"strings"

	"walletlab/domain/dataset"
	"walletlab/internal/errors"
)

// MethodID names a statistical transform
type MethodID string

const (
	MethodBellCurve  MethodID = "bellCurve"
	MethodZScore     MethodID = "zScore"
	MethodPercentile MethodID = "percentile"
)

// ArithmeticOperator joins two analysis steps
type ArithmeticOperator string

const (
	OpAdd      ArithmeticOperator = "+"
	OpSubtract ArithmeticOperator = "-"
	OpMultiply ArithmeticOperator = "*"
	OpDivide   ArithmeticOperator = "/"
)

// Valid reports whether the operator is one of + - * /
func (o ArithmeticOperator) Valid() bool {
	switch o {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	}
	return false
}

// DefaultResultName is used when a chain is saved without a name
const DefaultResultName = "analysis_result"

// AnalysisTemplate applies one method to one column
type AnalysisTemplate struct {
	ColumnKey   string           `json:"column_key"`
	ColumnLabel string           `json:"column_label"`
	DataType    dataset.DataType `json:"data_type"`
	MethodID    MethodID         `json:"method_id"`
	MethodName  string           `json:"method_name"`
	Description string           `json:"description,omitempty"`
}

// Validate checks that the step names a column and a method
func (t *AnalysisTemplate) Validate() error {
	if strings.TrimSpace(t.ColumnKey) == "" {
		return errors.ValidationError("analysis step column is required")
	}
	if strings.TrimSpace(string(t.MethodID)) == "" {
		return errors.ValidationError(fmt.Sprintf("analysis step on %q has no method", t.ColumnKey))
	}
	return nil
}

// AnalysisChain combines steps left to right into one derived column
type AnalysisChain struct {
	ResultName string               `json:"result_name"`
	Steps      []AnalysisTemplate   `json:"steps"`
	Operators  []ArithmeticOperator `json:"operators"`
}

// NewAnalysisChain builds a chain, rejecting it unless there is exactly one operator between each pair of steps
func NewAnalysisChain(resultName string, steps []AnalysisTemplate, operators []ArithmeticOperator) (*AnalysisChain, error) {
	chain := &AnalysisChain{
		ResultName: resultName,
		Steps:      steps,
		Operators:  operators,
	}
	if err := chain.Validate(); err != nil {
		return nil, err
	}
	return chain, nil
}

// Validate enforces len(Operators) == len(Steps)-1 and fills in a default result name
func (c *AnalysisChain) Validate() error {
	if len(c.Steps) == 0 {
		return errors.ValidationError("analysis chain needs at least one step")
	}
	if len(c.Operators) != len(c.Steps)-1 {
		return errors.ValidationError(fmt.Sprintf(
			"analysis chain has %d steps and %d operators, expected %d operators",
			len(c.Steps), len(c.Operators), len(c.Steps)-1))
	}
	for i := range c.Steps {
		if err := c.Steps[i].Validate(); err != nil {
			return err
		}
	}
	for _, op := range c.Operators {
		if !op.Valid() {
			return errors.ValidationError(fmt.Sprintf("unknown chain operator %q", op))
		}
	}
	c.ResultName = strings.TrimSpace(c.ResultName)
	if c.ResultName == "" {
		c.ResultName = DefaultResultName
	}
	return nil
}
