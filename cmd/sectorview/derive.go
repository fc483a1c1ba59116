package main

import (
	"fmt"
	"slices"

	"github.com/raykavin/sectorview/pkg/pipeline"
	"github.com/raykavin/sectorview/pkg/report"
	"github.com/spf13/cobra"
)

// addStateFlags registers the control state flags on cmd
func addStateFlags(cmd *cobra.Command) {
	cmd.Flags().String("sector", "", "Sector filter (default All)")
	cmd.Flags().StringP("metric", "m", "", "Metric column (default first numeric column)")
	cmd.Flags().IntP("range", "r", 0, "Visible range percentage 0-100 (default 100)")
}

// bindStateFlags binds the control state flags of the running command.
// serve and derive share the config keys, so binding happens at run time.
func (a *app) bindStateFlags(cmd *cobra.Command) error {
	return bindFlags(a.v, cmd.Flags(), map[string]string{
		"defaults.sector": "sector",
		"defaults.metric": "metric",
		"defaults.range":  "range",
	})
}

func (a *app) buildDeriveCmd() *cobra.Command {
	deriveCmd := &cobra.Command{
		Use:   "derive",
		Short: "Print the series and scatter for one control state",
		RunE:  a.runDerive,
	}

	addStateFlags(deriveCmd)
	deriveCmd.Flags().Bool("histogram", false, "Print the volatility histogram of the snapshot")
	deriveCmd.Flags().Bool("summary", false, "Print summary statistics with bootstrap intervals")

	return deriveCmd
}

func (a *app) runDerive(cmd *cobra.Command, _ []string) error {
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

	state := cfg.Defaults.ControlState()
	numeric := ds.NumericColumns()
	if state.Metric == "" {
		if len(numeric) == 0 {
			return fmt.Errorf("dataset has no numeric columns")
		}
		state.Metric = numeric[0]
	}
	if !slices.Contains(numeric, state.Metric) {
		return fmt.Errorf("unknown metric %q, expected one of %v", state.Metric, numeric)
	}

	view := pipeline.Derive(ds, state, pipelineOptions(cfg)...)

	out := cmd.OutOrStdout()
	report.Series(out, view)
	fmt.Fprintln(out)
	report.Scatter(out, view)

	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		fmt.Fprintln(out)
		report.Summary(out, view)
	}

	if histogram, _ := cmd.Flags().GetBool("histogram"); histogram {
		fmt.Fprintln(out)
		return report.Histogram(out, view)
	}

	return nil
}
