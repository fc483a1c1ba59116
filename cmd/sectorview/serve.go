package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/raykavin/sectorview/internal/config"
	"github.com/raykavin/sectorview/pkg/pipeline"
	"github.com/raykavin/sectorview/pkg/plot"
	"github.com/spf13/cobra"
)

func (a *app) buildServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard",
		RunE:  a.runServe,
	}

	flags := serveCmd.Flags()
	flags.IntP("port", "p", 0, "HTTP port (default 8080)")
	flags.Bool("debug", false, "Serve the dashboard script unminified")
	addStateFlags(serveCmd)

	if err := bindFlags(a.v, flags, map[string]string{
		"server.port":  "port",
		"server.debug": "debug",
	}); err != nil {
		panic(err)
	}

	return serveCmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	if err := a.bindStateFlags(cmd); err != nil {
		return err
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	ds, _, err := a.loadDataset(cmd, cfg)
	if err != nil {
		return err
	}

	options, err := dashboardOptions(cfg)
	if err != nil {
		return err
	}

	dashboard, err := plot.NewDashboard(ds, a.log, options...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return dashboard.Start(ctx)
}

// dashboardOptions maps the configuration onto dashboard options
func dashboardOptions(cfg *config.Config) ([]plot.Option, error) {
	read, write, shutdown, err := cfg.Server.Timeouts()
	if err != nil {
		return nil, err
	}

	options := []plot.Option{
		plot.WithPort(cfg.Server.Port),
		plot.WithTimeouts(read, write, shutdown),
		plot.WithDefaults(cfg.Defaults.ControlState()),
		plot.WithPipelineOptions(pipelineOptions(cfg)...),
	}

	if len(cfg.Data.Metrics) > 0 {
		options = append(options, plot.WithMetrics(cfg.Data.Metrics...))
	}

	if cfg.Server.Debug {
		options = append(options, plot.WithDebug())
	}

	return options, nil
}

func pipelineOptions(cfg *config.Config) []pipeline.Option {
	return []pipeline.Option{
		pipeline.WithVolatilityColumn(cfg.Data.VolatilityColumn),
		pipeline.WithBetaColumn(cfg.Data.BetaColumn),
	}
}
