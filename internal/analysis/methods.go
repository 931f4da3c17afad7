// Package analysis evaluates statistical methods over dataset columns and composes them into derived
// columns.
package analysis

import (
	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
	"walletlab/internal/profiling"
)

// Method is a per-row transform computed against a normal fit of the whole column
type Method struct {
	ID          pipeline.MethodID `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Primary     bool              `json:"primary"`

	compute func(fit profiling.NormalFit, x float64) float64
}

var methods = []Method{
	{
		ID:          pipeline.MethodBellCurve,
		Name:        "Bell curve distance",
		Description: "How many standard deviations a wallet sits from the column mean, ignoring direction.",
		Primary:     true,
		compute:     profiling.NormalFit.Distance,
	},
	{
		ID:          pipeline.MethodZScore,
		Name:        "Z-score",
		Description: "Signed number of standard deviations from the column mean.",
		compute:     profiling.NormalFit.ZScore,
	},
	{
		ID:          pipeline.MethodPercentile,
		Name:        "Normal percentile",
		Description: "Share of a fitted normal distribution below the value, from 0 to 100.",
		compute:     profiling.NormalFit.Percentile,
	},
}

// Methods lists the registered methods, primary first
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// LookupMethod finds a method by id
func LookupMethod(id pipeline.MethodID) (Method, bool) {
	for _, m := range methods {
		if m.ID == id {
			return m, true
		}
	}
	return Method{}, false
}

// NewTemplate builds an analysis step for a column, naming it after the method
func NewTemplate(columnKey, columnLabel string, dataType dataset.DataType, id pipeline.MethodID) (*pipeline.AnalysisTemplate, bool) {
	m, ok := LookupMethod(id)
	if !ok {
		return nil, false
	}
	if columnLabel == "" {
		columnLabel = columnKey
	}
	return &pipeline.AnalysisTemplate{
		ColumnKey:   columnKey,
		ColumnLabel: columnLabel,
		DataType:    dataType,
		MethodID:    m.ID,
		MethodName:  m.Name,
		Description: m.Description,
	}, true
}
