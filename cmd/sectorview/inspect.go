package main

import (
	"github.com/raykavin/sectorview/pkg/report"
	"github.com/spf13/cobra"
)

func (a *app) buildInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Describe the dataset columns, dates and sectors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			ds, stats, err := a.loadDataset(cmd, cfg)
			if err != nil {
				return err
			}

			report.Dataset(cmd.OutOrStdout(), ds, stats)
			return nil
		},
	}
}
