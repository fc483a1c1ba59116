// Package pipeline derives the dashboard views from the dataset and the
// current control state.
//
// Derive is a pure function: it keeps no state between calls, never modifies
// the dataset and never fails. Degenerate inputs (empty dataset, a sector with
// no rows, a metric with no values) produce empty views.
package pipeline

import (
	"math"
	"slices"

	"github.com/raykavin/sectorview/pkg/core"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// View is the pair of projections drawn by the dashboard
type View struct {
	State   core.ControlState   `json:"state"`
	Series  []core.SeriesPoint  `json:"series"`
	Scatter []core.ScatterPoint `json:"scatter"`

	// LastDate is the date of the scatter snapshot, nil when the series is empty
	LastDate *core.Date `json:"last_date"`
}

type settings struct {
	volatility string
	beta       string
}

// Option configures Derive
type Option func(*settings)

// WithVolatilityColumn sets the column plotted on the scatter x axis
func WithVolatilityColumn(name string) Option {
	return func(s *settings) {
		s.volatility = name
	}
}

// WithBetaColumn sets the column plotted on the scatter y axis
func WithBetaColumn(name string) Option {
	return func(s *settings) {
		s.beta = name
	}
}

// Derive computes the metric series and the volatility/beta snapshot for state.
// The range percentage is clamped to [0,100] before use.
func Derive(ds *core.Dataset, state core.ControlState, options ...Option) View {
	cfg := settings{
		volatility: core.DefaultVolatilityColumn,
		beta:       core.DefaultBetaColumn,
	}
	for _, option := range options {
		option(&cfg)
	}

	state = state.Normalize()
	filtered := FilterSector(ds.Rows(), state.Sector)
	series := Truncate(Aggregate(filtered, state.Metric), state.RangePct)

	view := View{
		State:   state,
		Series:  series,
		Scatter: []core.ScatterPoint{},
	}

	if len(series) == 0 {
		return view
	}

	last := series[len(series)-1].Date
	view.LastDate = &last
	view.Scatter = Snapshot(filtered, last, cfg.volatility, cfg.beta)

	return view
}

// FilterSector keeps the rows of sector, or every row for "All"
func FilterSector(rows []core.Row, sector string) []core.Row {
	if (core.ControlState{Sector: sector}).IsAllSectors() {
		return rows
	}
	return lo.Filter(rows, func(r core.Row, _ int) bool {
		return r.Sector == sector
	})
}

// Aggregate returns the mean of metric per date, ascending by date.
// Absent values are ignored; a date without any value yields no point.
func Aggregate(rows []core.Row, metric string) []core.SeriesPoint {
	groups := lo.GroupBy(rows, func(r core.Row) core.Date { return r.Date })

	series := make([]core.SeriesPoint, 0, len(groups))
	for date, group := range groups {
		values := lo.FilterMap(group, func(r core.Row, _ int) (float64, bool) {
			return r.Value(metric)
		})
		if len(values) == 0 {
			continue
		}

		series = append(series, core.SeriesPoint{
			Date:  date,
			Value: stat.Mean(values, nil),
		})
	}

	slices.SortFunc(series, func(a, b core.SeriesPoint) int {
		return a.Date.Compare(b.Date)
	})

	return series
}

// Truncate keeps the points up to floor(pct/100 * (len-1)), inclusive.
// pct is clamped to [0,100]; an empty series stays empty.
func Truncate(series []core.SeriesPoint, pct int) []core.SeriesPoint {
	if len(series) == 0 {
		return series
	}

	pct = min(max(pct, core.MinRangePct), core.MaxRangePct)
	cutoff := int(math.Floor(float64(pct) / 100 * float64(len(series)-1)))

	return series[:cutoff+1]
}

// Snapshot returns the volatility and beta of every row on date, in row order.
// Rows missing either value are dropped.
func Snapshot(rows []core.Row, date core.Date, volatilityColumn, betaColumn string) []core.ScatterPoint {
	return lo.FilterMap(rows, func(r core.Row, _ int) (core.ScatterPoint, bool) {
		if r.Date != date {
			return core.ScatterPoint{}, false
		}

		volatility, ok := r.Value(volatilityColumn)
		if !ok {
			return core.ScatterPoint{}, false
		}

		beta, ok := r.Value(betaColumn)
		if !ok {
			return core.ScatterPoint{}, false
		}

		return core.ScatterPoint{
			Symbol:     r.Symbol,
			Volatility: volatility,
			Beta:       beta,
		}, true
	})
}

// Sectors returns the sector choices offered by the dashboard, "All" first
func Sectors(ds *core.Dataset) []string {
	return append([]string{core.AllSectors}, ds.Sectors()...)
}
