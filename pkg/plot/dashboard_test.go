package plot

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raykavin/sectorview/pkg/core"
	"github.com/raykavin/sectorview/pkg/dataset"
	"github.com/raykavin/sectorview/pkg/logger"
	"github.com/raykavin/sectorview/pkg/metric"
	"github.com/raykavin/sectorview/pkg/pipeline"
	zl "github.com/raykavin/sectorview/pkg/logger/zerolog"
	"github.com/stretchr/testify/require"
)

const sample = `Date,Symbol,Sector,M,Return_1d,Volatility_30d,Beta_60d
2020-01-01,A,Tech,10,0.01,0.2,1.1
2020-01-01,B,Tech,20,0.02,0.3,0.9
2020-01-02,A,Tech,30,0.03,0.25,1.0
2020-01-02,X,Energy,50,,0.4,
`

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := zl.New(zl.Config{Level: "debug", JSON: true, Out: io.Discard})
	require.NoError(t, err)
	return zl.NewAdapter(log)
}

func testDashboard(t *testing.T, options ...Option) *Dashboard {
	t.Helper()

	ds, _, err := dataset.Load(strings.NewReader(sample))
	require.NoError(t, err)

	d, err := NewDashboard(ds, testLogger(t), options...)
	require.NoError(t, err)
	return d
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewDashboard_Defaults(t *testing.T) {
	d := testDashboard(t)

	opts := d.Options()
	require.Equal(t, []string{"All", "Energy", "Tech"}, opts.Sectors)
	require.Equal(t, []string{"M", "Return_1d", "Volatility_30d", "Beta_60d"}, opts.Metrics)
	require.Equal(t, core.ControlState{Sector: "All", Metric: "M", RangePct: 100}, opts.Defaults)
	require.NotEmpty(t, d.scriptContent)
}

func TestNewDashboard_Errors(t *testing.T) {
	ds, _, err := dataset.Load(strings.NewReader(sample))
	require.NoError(t, err)

	_, err = NewDashboard(ds, testLogger(t), WithMetrics("M", "Nope"))
	require.ErrorIs(t, err, ErrUnknownMetric)

	_, err = NewDashboard(ds, testLogger(t), WithDefaults(core.ControlState{Metric: "Nope"}))
	require.ErrorIs(t, err, ErrUnknownMetric)

	empty, _, err := dataset.Load(strings.NewReader("Date,Symbol,Sector\n"))
	require.NoError(t, err)
	_, err = NewDashboard(empty, testLogger(t))
	require.ErrorIs(t, err, ErrNoMetrics)
}

func TestHandleView(t *testing.T) {
	handler := testDashboard(t, WithMetrics("M", "Return_1d")).Handler()

	rec := get(t, handler, "/api/view?sector=Tech&metric=M&range=100")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var view ViewModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))

	require.Equal(t, core.ControlState{Sector: "Tech", Metric: "M", RangePct: 100}, view.State)
	require.Len(t, view.Series, 2)
	require.Equal(t, 15.0, view.Series[0].Value)
	require.Equal(t, []string{"Date: 2020-01-01", "M: 15.0000"}, view.Series[0].Tooltip)
	require.Equal(t, 30.0, view.Series[1].Value)

	require.Len(t, view.Scatter, 1)
	require.Equal(t, "A", view.Scatter[0].Symbol)
	require.Equal(t, []string{"A", "Vol: 0.250", "β: 1.00"}, view.Scatter[0].Tooltip)
	require.Equal(t, core.MustParseDate("2020-01-02"), *view.LastDate)
	require.Equal(t, []core.Date{core.MustParseDate("2020-01-01"), core.MustParseDate("2020-01-02")}, view.Domains.Time)
	require.Equal(t, Domain{14, 30}, view.Domains.Value)
}

func TestHandleView_DefaultsBeforeInteraction(t *testing.T) {
	handler := testDashboard(t).Handler()

	rec := get(t, handler, "/api/view")
	require.Equal(t, http.StatusOK, rec.Code)

	var view ViewModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, core.ControlState{Sector: "All", Metric: "M", RangePct: 100}, view.State)

	// 2020-01-01 mean(10, 20), 2020-01-02 mean(30, 50)
	require.Equal(t, 15.0, view.Series[0].Value)
	require.Equal(t, 40.0, view.Series[1].Value)

	// X has no beta on the last date
	require.Len(t, view.Scatter, 1)
}

func TestHandleView_BadInput(t *testing.T) {
	handler := testDashboard(t).Handler()

	require.Equal(t, http.StatusBadRequest, get(t, handler, "/api/view?metric=Nope").Code)
	require.Equal(t, http.StatusBadRequest, get(t, handler, "/api/view?range=half").Code)
	require.Equal(t, http.StatusBadRequest, get(t, handler, "/api/view?range=12.5").Code)
}

func TestHandleView_EmptySelection(t *testing.T) {
	handler := testDashboard(t).Handler()

	rec := get(t, handler, "/api/view?sector=Utilities&range=500")
	require.Equal(t, http.StatusOK, rec.Code)

	var view ViewModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Empty(t, view.Series)
	require.Empty(t, view.Scatter)
	require.Nil(t, view.LastDate)
	require.Nil(t, view.Domains.Time)
	require.Equal(t, defaultDomain, view.Domains.Value)
	require.Equal(t, defaultDomain, view.Domains.Volatility)
	require.Equal(t, 100, view.State.RangePct)
	require.Contains(t, rec.Body.String(), `"series":[]`)
	require.Contains(t, rec.Body.String(), `"scatter":[]`)
}

func TestHandleSeriesCSV(t *testing.T) {
	handler := testDashboard(t).Handler()

	rec := get(t, handler, "/api/series.csv?sector=Tech&metric=M&range=0")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "series_M.csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{{"date", "M"}, {"2020-01-01", "15"}}, records)
}

func TestHandleScatterCSV(t *testing.T) {
	handler := testDashboard(t).Handler()

	rec := get(t, handler, "/api/scatter.csv?sector=Tech&range=0")
	require.Equal(t, http.StatusOK, rec.Code)

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"date", "symbol", "volatility", "beta"},
		{"2020-01-01", "A", "0.2", "1.1"},
		{"2020-01-01", "B", "0.3", "0.9"},
	}, records)
}

func TestHandleSummary(t *testing.T) {
	handler := testDashboard(t).Handler()

	rec := get(t, handler, "/api/summary?sector=Tech&metric=M&range=0")
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []metric.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 3)

	require.Equal(t, "M", summaries[0].Name)
	require.Equal(t, 1, summaries[0].Count)
	require.Equal(t, 15.0, summaries[0].Mean)
	require.Equal(t, 15.0, summaries[0].MeanInterval.Lower)
	require.Equal(t, 15.0, summaries[0].MeanInterval.Upper)

	require.Equal(t, "volatility", summaries[1].Name)
	require.Equal(t, 2, summaries[1].Count)
	require.InDelta(t, 0.25, summaries[1].Mean, 1e-12)
	require.InDelta(t, 0.2, summaries[1].Min, 1e-12)
	require.InDelta(t, 0.3, summaries[1].Max, 1e-12)

	rec = get(t, handler, "/api/summary?metric=Nope")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMetrics(t *testing.T) {
	handler := testDashboard(t).Handler()

	require.Equal(t, http.StatusOK, get(t, handler, "/api/view?sector=Tech").Code)
	require.Equal(t, http.StatusBadRequest, get(t, handler, "/api/view?metric=Nope").Code)

	rec := get(t, handler, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, `sectorview_http_requests_total{route="/api/view",status="200"} 1`)
	require.Contains(t, body, `sectorview_http_requests_total{route="/api/view",status="400"} 1`)
	require.Contains(t, body, `sectorview_derive_duration_seconds_count{transport="http"} 1`)
	require.Contains(t, body, `sectorview_rejected_states_total{transport="http"} 1`)
}

func TestHandleIndex(t *testing.T) {
	handler := testDashboard(t).Handler()

	rec := get(t, handler, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `<option value="All" selected>All</option>`)
	require.Contains(t, body, `<option value="Energy">Energy</option>`)
	require.Contains(t, body, `value="M" checked`)
	require.Contains(t, body, `value="Return_1d"`)

	require.Equal(t, http.StatusNotFound, get(t, handler, "/nope").Code)
}

func TestHandleAssets(t *testing.T) {
	handler := testDashboard(t).Handler()

	rec := get(t, handler, "/assets/dashboard.js")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/javascript", rec.Header().Get("Content-Type"))
	require.NotEmpty(t, rec.Body.String())

	rec = get(t, handler, "/assets/style.css")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), ".tooltip")
}

func TestHandleAssets_SocketFallback(t *testing.T) {
	handler := testDashboard(t, WithDebug()).Handler()

	script := get(t, handler, "/assets/dashboard.js").Body.String()
	require.Contains(t, script, "fellBack = true")
	require.Contains(t, script, "/api/view?")
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, testDashboard(t).Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, float64(4), health["rows"])
}

func TestHandleOptions(t *testing.T) {
	rec := get(t, testDashboard(t, WithMetrics("Return_1d")).Handler(), "/api/options")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"sectors": ["All", "Energy", "Tech"],
		"metrics": ["Return_1d"],
		"defaults": {"sector": "All", "metric": "Return_1d", "range": 100}
	}`, rec.Body.String())
}

func TestWebSocket(t *testing.T) {
	server := httptest.NewServer(testDashboard(t).Handler())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var options struct {
		Type    string  `json:"type"`
		Payload Options `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&options))
	require.Equal(t, MessageOptions, options.Type)
	require.Equal(t, []string{"All", "Energy", "Tech"}, options.Payload.Sectors)

	type viewMessage struct {
		Type    string    `json:"type"`
		Payload ViewModel `json:"payload"`
	}

	var initial viewMessage
	require.NoError(t, conn.ReadJSON(&initial))
	require.Equal(t, MessageView, initial.Type)
	require.Equal(t, "All", initial.Payload.State.Sector)

	// replies come back in the order the states were sent
	for _, pct := range []int{0, 100, 0} {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"type":    "state",
			"payload": map[string]any{"sector": "Tech", "metric": "M", "range": pct},
		}))
	}

	wantLen := []int{1, 2, 1}
	for _, want := range wantLen {
		var msg viewMessage
		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, MessageView, msg.Type)
		require.Len(t, msg.Payload.Series, want)
		require.Equal(t, "Tech", msg.Payload.State.Sector)
	}

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "state",
		"payload": map[string]any{"metric": "Nope"},
	}))

	var failure struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&failure))
	require.Equal(t, MessageError, failure.Type)
	require.Contains(t, failure.Payload["message"], "unknown metric")
}

func TestWebSocket_InitialViewError(t *testing.T) {
	d := testDashboard(t)
	d.defaults.Metric = "Gone"

	server := httptest.NewServer(d.Handler())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, MessageOptions, msg.Type)

	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, MessageError, msg.Type)
	require.Contains(t, string(msg.Payload), "unknown metric")

	// the connection stays usable
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "state",
		"payload": map[string]any{"metric": "M"},
	}))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, MessageView, msg.Type)
}

func TestSummarize(t *testing.T) {
	view := pipeline.View{
		State:   core.ControlState{Sector: "Tech", Metric: "M", RangePct: 100},
		Series:  []core.SeriesPoint{{Value: 10}, {Value: 20}},
		Scatter: []core.ScatterPoint{{Symbol: "A", Volatility: 0.2, Beta: 1.5}},
	}

	summaries := Summarize(view)
	require.Len(t, summaries, 3)
	require.Equal(t, "M", summaries[0].Name)
	require.Equal(t, 15.0, summaries[0].Mean)
	require.Equal(t, 1, summaries[1].Count)
	require.Equal(t, 0.2, summaries[1].Mean)
	require.Equal(t, 1.5, summaries[2].Max)
}

func TestStart_Shutdown(t *testing.T) {
	d := testDashboard(t, WithPort(0), WithTimeouts(time.Second, time.Second, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- d.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("dashboard did not shut down")
	}
}
