package plot

import (
	"math"

	"github.com/raykavin/sectorview/pkg/core"
)

// defaultDomain is used for an axis with no data
var defaultDomain = Domain{0, 1}

// Domain is the [min, max] input range of a linear axis
type Domain [2]float64

// Min returns the lower bound
func (d Domain) Min() float64 { return d[0] }

// Max returns the upper bound
func (d Domain) Max() float64 { return d[1] }

// linearDomain returns the niced extent of the values selected by fn.
// An empty collection falls back to [0,1]. A single distinct value v is
// widened by 10% of |v| on each side, or by 1 when v is zero.
func linearDomain[E any](items []E, fn func(E) float64) Domain {
	ext, ok := core.ExtentOf(items, fn)
	if !ok {
		return defaultDomain
	}

	low, high := ext.Min, ext.Max
	if low == high {
		pad := math.Abs(low) * 0.1
		if pad == 0 {
			pad = 1
		}
		low, high = low-pad, high+pad
	}

	return nice(Domain{low, high}, 10)
}

// nice extends the domain so that it starts and ends on round tick values
func nice(d Domain, count int) Domain {
	start, stop := d[0], d[1]
	if stop < start {
		start, stop = stop, start
	}

	var prestep float64
	for i := 0; i < 10; i++ {
		step := tickIncrement(start, stop, count)
		if step == prestep {
			break
		}

		switch {
		case step > 0:
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		case step < 0:
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		default:
			return Domain{start, stop}
		}
		prestep = step
	}

	return Domain{start, stop}
}

// tickIncrement returns the tick step for about count ticks in [start, stop].
// Negative results are inverse steps (-10 means 0.1) and keep the division exact.
func tickIncrement(start, stop float64, count int) float64 {
	var (
		e10 = math.Sqrt(50)
		e5  = math.Sqrt(10)
		e2  = math.Sqrt(2)
	)

	step := (stop - start) / math.Max(0, float64(count))
	if step <= 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return 0
	}

	power := math.Floor(math.Log10(step))
	err := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case err >= e10:
		factor = 10
	case err >= e5:
		factor = 5
	case err >= e2:
		factor = 2
	}

	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// timeDomain returns the first and last date of the series, nil when empty
func timeDomain(series []core.SeriesPoint) []core.Date {
	if len(series) == 0 {
		return nil
	}
	return []core.Date{series[0].Date, series[len(series)-1].Date}
}
