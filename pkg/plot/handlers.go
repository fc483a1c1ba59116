package plot

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/raykavin/sectorview/pkg/core"
	"github.com/raykavin/sectorview/pkg/metric"
	"github.com/raykavin/sectorview/pkg/pipeline"
)

// handleHealth reports whether there is data to show
func (d *Dashboard) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := http.StatusOK
	if d.dataset.Len() == 0 {
		status = http.StatusServiceUnavailable
	}

	d.writeJSON(w, status, map[string]any{
		"rows":      d.dataset.Len(),
		"loaded_at": d.loadedAt.Format(time.RFC3339),
	})
}

// handleIndex renders the dashboard page
func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := d.indexHTML.Execute(w, map[string]any{
		"options": d.Options(),
	})
	if err != nil {
		d.log.Error("Template execution failed: ", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleOptions returns the control choices
func (d *Dashboard) handleOptions(w http.ResponseWriter, _ *http.Request) {
	d.writeJSON(w, http.StatusOK, d.Options())
}

// handleView derives the view for the controls in the query string
func (d *Dashboard) handleView(w http.ResponseWriter, r *http.Request) {
	view, ok := d.viewFromQuery(w, r.URL.Query())
	if !ok {
		return
	}
	d.writeJSON(w, http.StatusOK, NewViewModel(view))
}

// handleSeriesCSV exports the visible series
func (d *Dashboard) handleSeriesCSV(w http.ResponseWriter, r *http.Request) {
	view, ok := d.viewFromQuery(w, r.URL.Query())
	if !ok {
		return
	}

	records := make([][]string, 0, len(view.Series))
	for _, p := range view.Series {
		records = append(records, []string{
			p.Date.String(),
			strconv.FormatFloat(p.Value, 'f', -1, 64),
		})
	}

	d.writeCSV(w, "series_"+view.State.Metric+".csv", []string{"date", view.State.Metric}, records)
}

// handleScatterCSV exports the volatility/beta snapshot
func (d *Dashboard) handleScatterCSV(w http.ResponseWriter, r *http.Request) {
	view, ok := d.viewFromQuery(w, r.URL.Query())
	if !ok {
		return
	}

	date := dateString(view.LastDate)
	records := make([][]string, 0, len(view.Scatter))
	for _, p := range view.Scatter {
		records = append(records, []string{
			date,
			p.Symbol,
			strconv.FormatFloat(p.Volatility, 'f', -1, 64),
			strconv.FormatFloat(p.Beta, 'f', -1, 64),
		})
	}

	d.writeCSV(w, "scatter.csv", []string{"date", "symbol", "volatility", "beta"}, records)
}

// handleSummary describes the visible series and the snapshot
func (d *Dashboard) handleSummary(w http.ResponseWriter, r *http.Request) {
	view, ok := d.viewFromQuery(w, r.URL.Query())
	if !ok {
		return
	}
	d.writeJSON(w, http.StatusOK, Summarize(view))
}

// Summarize describes the series values, volatilities and betas of a view
func Summarize(view pipeline.View) []metric.Summary {
	return []metric.Summary{
		metric.Describe(view.State.Metric, metric.SeriesValues(view.Series)),
		metric.Describe("volatility", metric.Volatilities(view.Scatter)),
		metric.Describe("beta", metric.Betas(view.Scatter)),
	}
}

// viewFromQuery derives the view for query, answering 400 on bad input
func (d *Dashboard) viewFromQuery(w http.ResponseWriter, query url.Values) (pipeline.View, bool) {
	req := StateRequest{}
	if query.Has("sector") {
		sector := query.Get("sector")
		req.Sector = &sector
	}
	if query.Has("metric") {
		metric := query.Get("metric")
		req.Metric = &metric
	}

	var err error
	if req.Range, err = parseRange(query.Get("range")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return pipeline.View{}, false
	}

	view, err := d.deriveFor(transportHTTP, req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUnknownMetric) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return pipeline.View{}, false
	}

	return view, true
}

func (d *Dashboard) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		d.log.Error("JSON encoding failed: ", err)
	}
}

// writeCSV sends records as a CSV attachment
func (d *Dashboard) writeCSV(w http.ResponseWriter, filename string, header []string, records [][]string) {
	buffer := bytes.NewBuffer(nil)
	csvWriter := csv.NewWriter(buffer)

	if err := csvWriter.Write(header); err != nil {
		d.log.Error("Failed writing CSV header: ", err)
		http.Error(w, "Failed to generate CSV", http.StatusInternalServerError)
		return
	}
	if err := csvWriter.WriteAll(records); err != nil {
		d.log.Error("Failed writing CSV data: ", err)
		http.Error(w, "Failed to generate CSV", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment;filename="+filename)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buffer.Bytes()); err != nil {
		d.log.Error("Failed writing CSV response: ", err)
	}
}

// dateString formats an optional date
func dateString(d *core.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
