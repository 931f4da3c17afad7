package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// NormalFit is a normal distribution fitted to a column by its mean and population standard deviation
type NormalFit struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	N      int     `json:"n"`
}

// FitNormal fits a normal distribution to the finite values in data
func FitNormal(data []float64) (NormalFit, error) {
	finite := finiteValues(data)

	mean, err := stats.Mean(finite)
	if err != nil {
		return NormalFit{}, err
	}
	stdDev, err := stats.StandardDeviationPopulation(finite)
	if err != nil {
		return NormalFit{}, err
	}
	return NormalFit{Mean: mean, StdDev: stdDev, N: len(finite)}, nil
}

// Distance is the number of standard deviations between x and the mean. A degenerate fit gives 0.
func (f NormalFit) Distance(x float64) float64 {
	return math.Abs(f.ZScore(x))
}

// ZScore is the signed number of standard deviations from the mean
func (f NormalFit) ZScore(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if f.StdDev == 0 {
		return 0
	}
	return (x - f.Mean) / f.StdDev
}

// Percentile is the normal CDF at x scaled to 0-100
func (f NormalFit) Percentile(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if f.StdDev == 0 {
		switch {
		case x < f.Mean:
			return 0
		case x > f.Mean:
			return 100
		}
		return 50
	}
	dist := distuv.Normal{Mu: f.Mean, Sigma: f.StdDev}
	return dist.CDF(x) * 100
}

func finiteValues(data []float64) []float64 {
	finite := make([]float64, 0, len(data))
	for _, x := range data {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			finite = append(finite, x)
		}
	}
	return finite
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	return skewness * math.Sqrt(n*(n-1)) / (n - 2)
}

// detectOutliers counts values outside 1.5 IQR of the quartiles
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}
	return outlierCount
}
