package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/raykavin/sectorview/pkg/core"
	"github.com/raykavin/sectorview/pkg/dataset"
	"github.com/raykavin/sectorview/pkg/metric"
	"github.com/raykavin/sectorview/pkg/pipeline"
	"github.com/stretchr/testify/require"
)

const sample = `Date,Symbol,Sector,M,Volatility_30d,Beta_60d
2020-01-01,A,Tech,10,0.2,1.1
2020-01-01,B,Tech,20,0.3,0.9
2020-01-02,A,Tech,30,0.25,1.0
2020-01-02,B,Tech,x,0.35,1.2
bad,C,Tech,1,1,1
`

func load(t *testing.T) (*core.Dataset, dataset.Stats) {
	t.Helper()
	ds, stats, err := dataset.Load(strings.NewReader(sample))
	require.NoError(t, err)
	return ds, stats
}

func TestSeries(t *testing.T) {
	ds, _ := load(t)
	view := pipeline.Derive(ds, core.ControlState{Sector: "Tech", Metric: "M", RangePct: 100})

	var buf bytes.Buffer
	Series(&buf, view)

	out := buf.String()
	require.Contains(t, out, "2020-01-01")
	require.Contains(t, out, "15.0000")
	require.Contains(t, out, "30.0000")
}

func TestScatter(t *testing.T) {
	ds, _ := load(t)
	view := pipeline.Derive(ds, core.ControlState{Sector: "Tech", Metric: "M", RangePct: 100})

	var buf bytes.Buffer
	Scatter(&buf, view)

	out := buf.String()
	require.Contains(t, out, "Snapshot: 2020-01-02")
	require.Contains(t, out, "0.250")
	require.Contains(t, out, "1.20")
}

func TestScatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	Scatter(&buf, pipeline.View{})
	require.Contains(t, buf.String(), "no visible date")
}

func TestHistogram(t *testing.T) {
	ds, _ := load(t)
	view := pipeline.Derive(ds, core.ControlState{Metric: "M", RangePct: 100})

	var buf bytes.Buffer
	require.NoError(t, Histogram(&buf, view))
	require.NotEmpty(t, buf.String())

	buf.Reset()
	require.NoError(t, Histogram(&buf, pipeline.View{}))
	require.Contains(t, buf.String(), "No volatility values")
}

func TestDataset(t *testing.T) {
	ds, stats := load(t)

	var buf bytes.Buffer
	Dataset(&buf, ds, stats)

	out := buf.String()
	require.Contains(t, out, "Volatility_30d")
	require.Contains(t, out, "number")
	require.Contains(t, out, "2020-01-01 .. 2020-01-02")
	require.Contains(t, out, "Tech")
}

func TestHistogram_SingleValue(t *testing.T) {
	view := pipeline.View{Scatter: []core.ScatterPoint{{Symbol: "A", Volatility: 0.2, Beta: 1}}}

	var buf bytes.Buffer
	require.NoError(t, Histogram(&buf, view))
	require.Contains(t, buf.String(), "All 1 symbols have volatility 0.200")
}

func TestSummary(t *testing.T) {
	ds, _ := load(t)
	view := pipeline.Derive(ds, core.ControlState{Sector: "Tech", Metric: "M", RangePct: 100})

	var buf bytes.Buffer
	Summary(&buf, view, metric.WithSeed(3), metric.WithResamples(200))

	out := buf.String()
	require.Contains(t, out, "22.5000")
	require.Contains(t, out, "0.3000")
	require.Contains(t, out, "(95%)")
}

func TestSummary_Empty(t *testing.T) {
	ds, _ := load(t)
	view := pipeline.Derive(ds, core.ControlState{Sector: "Nope", Metric: "M", RangePct: 100})

	var buf bytes.Buffer
	Summary(&buf, view)

	require.Contains(t, buf.String(), "Volatility")
	require.NotContains(t, buf.String(), "%)")
}
