package main

import (
	"fmt"
	"os"

	"github.com/raykavin/sectorview"
	"github.com/raykavin/sectorview/internal/config"
	"github.com/raykavin/sectorview/pkg/core"
	"github.com/raykavin/sectorview/pkg/dataset"
	"github.com/raykavin/sectorview/pkg/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd(sectorview.DefaultLog).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the state shared by every command
type app struct {
	v          *viper.Viper
	log        logger.Logger
	configFile string
	quiet      bool
}

func newRootCmd(log logger.Logger) *cobra.Command {
	a := &app{v: config.New(), log: log}

	rootCmd := &cobra.Command{
		Use:           "sectorview",
		Short:         "Sector time series and volatility/beta dashboard",
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Config file (e.g. ./sectorview.yaml)")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "Hide the load progress bar")
	flags.StringP("data", "d", "", "Dataset path (e.g. ./stocks.csv)")
	flags.String("delimiter", "", "Field delimiter, defaults to ',' or tab for .tsv files")
	flags.String("volatility", "", "Volatility column (default Volatility_30d)")
	flags.String("beta", "", "Beta column (default Beta_60d)")

	if err := bindFlags(a.v, flags, map[string]string{
		"data.path":              "data",
		"data.delimiter":         "delimiter",
		"data.volatility_column": "volatility",
		"data.beta_column":       "beta",
	}); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		a.buildServeCmd(),
		a.buildDeriveCmd(),
		a.buildInspectCmd(),
	)

	return rootCmd
}

// bindFlags binds config keys to flags by name
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	return config.Load(a.v, a.configFile)
}

// loadDataset reads the configured dataset, drawing a progress bar on stderr
func (a *app) loadDataset(cmd *cobra.Command, cfg *config.Config) (*core.Dataset, dataset.Stats, error) {
	delimiter, err := cfg.Data.DelimiterRune()
	if err != nil {
		return nil, dataset.Stats{}, err
	}

	options := []dataset.Option{dataset.WithLogger(a.log)}
	if delimiter != 0 {
		options = append(options, dataset.WithDelimiter(delimiter))
	}

	var progressBar *progressbar.ProgressBar
	if !a.quiet {
		options = append(options, dataset.WithProgress(func(done, total int) {
			if progressBar == nil {
				progressBar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("loading rows"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			if err := progressBar.Set(done); err != nil {
				a.log.Warnf("update progressbar fail: %v", err)
			}
		}))
	}

	ds, stats, err := dataset.LoadFile(cfg.Data.Path, options...)
	if progressBar != nil {
		_ = progressBar.Finish()
	}
	if err != nil {
		return nil, stats, err
	}

	a.log.WithFields(map[string]any{
		"rows":      stats.Rows,
		"skipped":   stats.SkippedRows,
		"malformed": stats.MalformedCells,
	}).Infof("Loaded %s", cfg.Data.Path)

	if stats.MalformedCells > 0 {
		a.log.WithField("columns", stats.MalformedColumns).Warn("Some numeric cells could not be parsed")
	}

	return ds, stats, nil
}
