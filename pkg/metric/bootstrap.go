// Package metric summarizes the values behind a derived view.
package metric

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Defaults used by Bootstrap
const (
	DefaultResamples  = 1000
	DefaultConfidence = 0.95
)

// Measure reduces a sample to one statistic, e.g. stat.Mean
type Measure func([]float64) float64

// Interval is the confidence interval estimated by the bootstrap method
type Interval struct {
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	StdDev     float64 `json:"std_dev"`
	Mean       float64 `json:"mean"`
	Confidence float64 `json:"confidence"`
}

// BootstrapOption configures Bootstrap
type BootstrapOption func(*bootstrap)

type bootstrap struct {
	resamples  int
	confidence float64
	seed       int64
}

// WithResamples sets how many resamples are drawn
func WithResamples(n int) BootstrapOption {
	return func(b *bootstrap) {
		b.resamples = n
	}
}

// WithConfidence sets the confidence level, e.g. 0.9
func WithConfidence(confidence float64) BootstrapOption {
	return func(b *bootstrap) {
		b.confidence = confidence
	}
}

// WithSeed sets the resampling seed. The same seed and values always give
// the same interval.
func WithSeed(seed int64) BootstrapOption {
	return func(b *bootstrap) {
		b.seed = seed
	}
}

// Bootstrap estimates a confidence interval of measure over values by
// resampling with replacement. An empty sample gives the zero Interval.
func Bootstrap(values []float64, measure Measure, options ...BootstrapOption) Interval {
	b := bootstrap{
		resamples:  DefaultResamples,
		confidence: DefaultConfidence,
		seed:       1,
	}
	for _, option := range options {
		option(&b)
	}

	if len(values) == 0 || b.resamples <= 0 {
		return Interval{}
	}
	if b.confidence <= 0 || b.confidence >= 1 {
		b.confidence = DefaultConfidence
	}

	data := resample(values, measure, b.resamples, rand.New(rand.NewSource(b.seed)))
	sort.Float64s(data)

	tail := 1 - b.confidence
	mean, stdDev := stat.MeanStdDev(data, nil)

	return Interval{
		Lower:      stat.Quantile(tail/2, stat.LinInterp, data, nil),
		Upper:      stat.Quantile(1-tail/2, stat.LinInterp, data, nil),
		StdDev:     stdDev,
		Mean:       mean,
		Confidence: b.confidence,
	}
}

// resample applies measure to n samples drawn with replacement
func resample(values []float64, measure Measure, n int, rng *rand.Rand) []float64 {
	data := make([]float64, 0, n)
	sample := make([]float64, len(values))

	for i := 0; i < n; i++ {
		for j := range sample {
			sample[j] = values[rng.Intn(len(values))]
		}
		data = append(data, measure(sample))
	}

	return data
}
