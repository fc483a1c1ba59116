// Package plot serves the sector dashboard: an HTML page, its script and the
// JSON and WebSocket endpoints that derive views for the current controls.
package plot

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/gorilla/websocket"
	"github.com/raykavin/sectorview/pkg/core"
	"github.com/raykavin/sectorview/pkg/logger"
	"github.com/raykavin/sectorview/pkg/pipeline"
	"github.com/samber/lo"
)

var (
	ErrUnknownMetric = errors.New("unknown metric")
	ErrInvalidRange  = errors.New("invalid range")
	ErrNoMetrics     = errors.New("dataset has no numeric metric")
)

// Static assets embedded in the binary
var (
	//go:embed assets
	staticFiles embed.FS
)

// Dashboard serves the views of one immutable dataset
type Dashboard struct {
	port            int
	debug           bool
	dataset         *core.Dataset
	metrics         []string
	defaults        core.ControlState
	pipelineOptions []pipeline.Option
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	loadedAt        time.Time
	indexHTML       *template.Template
	scriptContent   string
	upgrader        websocket.Upgrader
	stats           *recorder
	log             logger.Logger
}

// Option configures a Dashboard
type Option func(*Dashboard)

// WithPort sets the HTTP server port
func WithPort(port int) Option {
	return func(d *Dashboard) {
		d.port = port
	}
}

// WithDebug disables script minification
func WithDebug() Option {
	return func(d *Dashboard) {
		d.debug = true
	}
}

// WithMetrics restricts the metrics offered by the metric control.
// By default every numeric column is offered.
func WithMetrics(metrics ...string) Option {
	return func(d *Dashboard) {
		d.metrics = metrics
	}
}

// WithDefaults sets the control state used before any interaction.
// Empty fields fall back to "All", the first metric and the full range.
func WithDefaults(state core.ControlState) Option {
	return func(d *Dashboard) {
		d.defaults = state
	}
}

// WithPipelineOptions forwards options to every derive
func WithPipelineOptions(options ...pipeline.Option) Option {
	return func(d *Dashboard) {
		d.pipelineOptions = options
	}
}

// WithTimeouts sets the server read, write and shutdown timeouts
func WithTimeouts(read, write, shutdown time.Duration) Option {
	return func(d *Dashboard) {
		d.readTimeout = read
		d.writeTimeout = write
		d.shutdownTimeout = shutdown
	}
}

// NewDashboard creates a dashboard for ds
func NewDashboard(ds *core.Dataset, log logger.Logger, options ...Option) (*Dashboard, error) {
	d := &Dashboard{
		port:            8080,
		dataset:         ds,
		defaults:        core.ControlState{RangePct: core.MaxRangePct},
		readTimeout:     10 * time.Second,
		writeTimeout:    30 * time.Second,
		shutdownTimeout: 5 * time.Second,
		loadedAt:        time.Now(),
		stats:           newRecorder(),
		log:             log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	for _, option := range options {
		option(d)
	}

	if len(d.metrics) == 0 {
		d.metrics = ds.NumericColumns()
	}
	if len(d.metrics) == 0 {
		return nil, ErrNoMetrics
	}

	numeric := ds.NumericColumns()
	if unknown := lo.Without(d.metrics, numeric...); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownMetric, unknown)
	}

	if d.defaults.Metric == "" {
		d.defaults.Metric = d.metrics[0]
	}
	if !slices.Contains(d.metrics, d.defaults.Metric) {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownMetric, d.defaults.Metric)
	}
	d.defaults = d.defaults.Normalize()

	var err error
	d.indexHTML, err = template.ParseFS(staticFiles, "assets/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	script, err := staticFiles.ReadFile("assets/dashboard.js")
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard.js: %w", err)
	}

	result := api.Transform(string(script), api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2015,
		MinifySyntax:      !d.debug,
		MinifyIdentifiers: !d.debug,
		MinifyWhitespace:  !d.debug,
	})
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("dashboard script failed with: %v", result.Errors)
	}
	d.scriptContent = string(result.Code)

	return d, nil
}

// Options returns the control choices and defaults
func (d *Dashboard) Options() Options {
	return Options{
		Sectors:  pipeline.Sectors(d.dataset),
		Metrics:  slices.Clone(d.metrics),
		Defaults: d.defaults,
	}
}

// Derive resolves a partial control state against the defaults and derives its view
func (d *Dashboard) Derive(req StateRequest) (ViewModel, error) {
	view, err := d.derive(req)
	if err != nil {
		return ViewModel{}, err
	}
	return NewViewModel(view), nil
}

func (d *Dashboard) derive(req StateRequest) (pipeline.View, error) {
	state, err := d.resolve(req)
	if err != nil {
		return pipeline.View{}, err
	}
	return pipeline.Derive(d.dataset, state, d.pipelineOptions...), nil
}

// deriveFor derives a view and records it under transport
func (d *Dashboard) deriveFor(transport string, req StateRequest) (pipeline.View, error) {
	start := time.Now()
	view, err := d.derive(req)
	d.stats.observeDerive(transport, start, err)
	return view, err
}

// resolve fills absent fields from the defaults and checks the metric
func (d *Dashboard) resolve(req StateRequest) (core.ControlState, error) {
	state := d.defaults
	if req.Sector != nil && *req.Sector != "" {
		state.Sector = *req.Sector
	}
	if req.Metric != nil && *req.Metric != "" {
		state.Metric = *req.Metric
	}
	if req.Range != nil {
		state.RangePct = *req.Range
	}

	if !slices.Contains(d.metrics, state.Metric) {
		return core.ControlState{}, fmt.Errorf("%w: %q", ErrUnknownMetric, state.Metric)
	}

	return state.Normalize(), nil
}

// parseRange reads the range control value, an integer percentage
func parseRange(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRange, raw)
	}
	return &value, nil
}

// Handler returns the HTTP handler with every dashboard route
func (d *Dashboard) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/assets/", http.FileServer(http.FS(staticFiles)))
	mux.HandleFunc("/assets/dashboard.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		fmt.Fprint(w, d.scriptContent)
	})

	mux.HandleFunc("/health", d.stats.instrument("/health", d.handleHealth))
	mux.Handle("/metrics", d.stats.handler())
	mux.HandleFunc("/api/options", d.stats.instrument("/api/options", d.handleOptions))
	mux.HandleFunc("/api/view", d.stats.instrument("/api/view", d.handleView))
	mux.HandleFunc("/api/series.csv", d.stats.instrument("/api/series.csv", d.handleSeriesCSV))
	mux.HandleFunc("/api/scatter.csv", d.stats.instrument("/api/scatter.csv", d.handleScatterCSV))
	mux.HandleFunc("/api/summary", d.stats.instrument("/api/summary", d.handleSummary))
	mux.HandleFunc("/ws", d.handleWebSocket)
	mux.HandleFunc("/", d.stats.instrument("/", d.handleIndex))

	return mux
}

// Start serves the dashboard until ctx is cancelled
func (d *Dashboard) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", d.port),
		Handler:      d.Handler(),
		ReadTimeout:  d.readTimeout,
		WriteTimeout: d.writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.ListenAndServe()
	}()

	d.log.WithField("port", d.port).Infof("Dashboard available at http://localhost:%d", d.port)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.shutdownTimeout)
	defer cancel()

	d.log.Info("Shutting down dashboard")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down dashboard: %w", err)
	}
	return nil
}
