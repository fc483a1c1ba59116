// Package report prints derived views and dataset summaries to a terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/sectorview/pkg/core"
	"github.com/raykavin/sectorview/pkg/dataset"
	"github.com/raykavin/sectorview/pkg/metric"
	"github.com/raykavin/sectorview/pkg/pipeline"
)

const histogramBins = 10

// Series writes the metric series as a table
func Series(w io.Writer, view pipeline.View) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", view.State.Metric})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	for _, p := range view.Series {
		table.Append([]string{p.Date.String(), fmt.Sprintf("%.4f", p.Value)})
	}

	table.SetFooter([]string{"Points", strconv.Itoa(len(view.Series))})
	table.Render()
}

// Scatter writes the volatility/beta snapshot as a table
func Scatter(w io.Writer, view pipeline.View) {
	title := "no visible date"
	if view.LastDate != nil {
		title = view.LastDate.String()
	}
	fmt.Fprintf(w, "Snapshot: %s\n", title)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Symbol", "Volatility", "Beta"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})

	for _, p := range view.Scatter {
		table.Append([]string{
			p.Symbol,
			fmt.Sprintf("%.3f", p.Volatility),
			fmt.Sprintf("%.2f", p.Beta),
		})
	}

	table.Render()
}

// Histogram writes the volatility distribution of the snapshot
func Histogram(w io.Writer, view pipeline.View) error {
	if len(view.Scatter) == 0 {
		_, err := fmt.Fprintln(w, "No volatility values on the snapshot date")
		return err
	}

	volatility := metric.Volatilities(view.Scatter)

	if ext, _ := core.ExtentOf(volatility, func(v float64) float64 { return v }); ext.Min == ext.Max {
		_, err := fmt.Fprintf(w, "All %d symbols have volatility %.3f\n", len(volatility), ext.Min)
		return err
	}

	hist := histogram.Hist(histogramBins, volatility)
	return histogram.Fprint(w, hist, histogram.Linear(10))
}

// Summary writes descriptive statistics of the series and the snapshot,
// with a bootstrap interval of each mean
func Summary(w io.Writer, view pipeline.View, options ...metric.BootstrapOption) {
	summaries := []metric.Summary{
		metric.Describe(view.State.Metric, metric.SeriesValues(view.Series), options...),
		metric.Describe("Volatility", metric.Volatilities(view.Scatter), options...),
		metric.Describe("Beta", metric.Betas(view.Scatter), options...),
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Values", "Count", "Min", "Max", "Mean", "Std dev", "Mean interval"})
	for _, s := range summaries {
		if s.Count == 0 {
			table.Append([]string{s.Name, "0", "-", "-", "-", "-", "-"})
			continue
		}
		table.Append([]string{
			s.Name,
			strconv.Itoa(s.Count),
			formatFloat(s.Min),
			formatFloat(s.Max),
			formatFloat(s.Mean),
			formatFloat(s.StdDev),
			fmt.Sprintf("%s .. %s (%.0f%%)",
				formatFloat(s.MeanInterval.Lower),
				formatFloat(s.MeanInterval.Upper),
				s.MeanInterval.Confidence*100),
		})
	}
	table.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Dataset writes the column schema and the loader statistics
func Dataset(w io.Writer, ds *core.Dataset, stats dataset.Stats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Column", "Kind"})
	for _, column := range ds.Columns() {
		table.Append([]string{column.Name, column.Kind.String()})
	}
	table.Render()

	dates := ds.Dates()
	span := "-"
	if len(dates) > 0 {
		span = dates[0].String() + " .. " + dates[len(dates)-1].String()
	}

	summary := tablewriter.NewWriter(w)
	summary.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	summary.AppendBulk([][]string{
		{"Rows", strconv.Itoa(stats.Rows)},
		{"Skipped rows", strconv.Itoa(stats.SkippedRows)},
		{"Malformed cells", strconv.Itoa(stats.MalformedCells)},
		{"Malformed columns", strings.Join(stats.MalformedColumns, ", ")},
		{"Dates", strconv.Itoa(len(dates))},
		{"Span", span},
		{"Sectors", strings.Join(ds.Sectors(), ", ")},
	})
	summary.Render()
}
