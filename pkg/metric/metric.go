package metric

import (
	"math"

	"github.com/raykavin/sectorview/pkg/core"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Mean is the arithmetic mean, 0 for an empty sample
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Summary describes a sample of one quantity
type Summary struct {
	Name         string   `json:"name"`
	Count        int      `json:"count"`
	Min          float64  `json:"min"`
	Max          float64  `json:"max"`
	Mean         float64  `json:"mean"`
	StdDev       float64  `json:"std_dev"`
	MeanInterval Interval `json:"mean_interval"`
}

// Describe summarizes values. The standard deviation of fewer than two
// values is 0.
func Describe(name string, values []float64, options ...BootstrapOption) Summary {
	summary := Summary{Name: name, Count: len(values)}
	if len(values) == 0 {
		return summary
	}

	summary.Min, summary.Max = lo.Min(values), lo.Max(values)
	summary.Mean, summary.StdDev = stat.MeanStdDev(values, nil)
	if len(values) < 2 || math.IsNaN(summary.StdDev) {
		summary.StdDev = 0
	}
	summary.MeanInterval = Bootstrap(values, Mean, options...)

	return summary
}

// SeriesValues returns the values of a series
func SeriesValues(series []core.SeriesPoint) []float64 {
	return lo.Map(series, func(p core.SeriesPoint, _ int) float64 { return p.Value })
}

// Volatilities returns the volatility of every scatter point
func Volatilities(scatter []core.ScatterPoint) []float64 {
	return lo.Map(scatter, func(p core.ScatterPoint, _ int) float64 { return p.Volatility })
}

// Betas returns the beta of every scatter point
func Betas(scatter []core.ScatterPoint) []float64 {
	return lo.Map(scatter, func(p core.ScatterPoint, _ int) float64 { return p.Beta })
}
