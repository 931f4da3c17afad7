// Package profiling computes descriptive statistics and distribution fits for dataset columns.
package profiling

import (
	"math"

	"github.com/montanaflynn/stats"

	"walletlab/domain/dataset"
	datasetloader "walletlab/internal/dataset"
	"walletlab/internal/tabular"
)

// ColumnProfile summarizes the numeric content of one column
type ColumnProfile struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Outliers int     `json:"outliers"`
}

// ColumnValues parses a column of rows into numbers, NaN for cells that do not parse
func ColumnValues(rows []dataset.Row, column string) []float64 {
	values := make([]float64, len(rows))
	for i, row := range rows {
		cell, _ := datasetloader.Value(row, column)
		values[i] = tabular.ParseNumber(cell)
	}
	return values
}

// ProfileColumn profiles the numeric cells of a column. A column with no numbers reports only counts.
func ProfileColumn(column string, values []float64) ColumnProfile {
	data := finiteValues(values)
	profile := ColumnProfile{
		Column:  column,
		Count:   len(data),
		Missing: len(values) - len(data),
	}
	if len(data) == 0 {
		return profile
	}

	profile.Mean, _ = stats.Mean(data)
	profile.StdDev, _ = stats.StandardDeviationPopulation(data)
	profile.Min, _ = stats.Min(data)
	profile.Max, _ = stats.Max(data)
	profile.Median, _ = stats.Median(data)
	profile.Q25, _ = stats.Percentile(data, 25)
	profile.Q75, _ = stats.Percentile(data, 75)
	// too few values for a quartile
	for _, v := range []*float64{&profile.Q25, &profile.Q75} {
		if math.IsNaN(*v) {
			*v = profile.Median
		}
	}
	profile.Skewness = calculateSkewness(data, profile.Mean, profile.StdDev)
	profile.Outliers = detectOutliers(data, profile.Q25, profile.Q75)
	return profile
}

// ProfileDataset profiles every column of the dataset that holds at least one number
func ProfileDataset(ds *dataset.Dataset) []ColumnProfile {
	if ds == nil {
		return nil
	}
	profiles := make([]ColumnProfile, 0, len(ds.Headers))
	for _, column := range ds.Columns() {
		profile := ProfileColumn(column, ColumnValues(ds.Rows, column))
		if profile.Count == 0 {
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles
}
