package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/pnlcast/internal/config"
	"github.com/theirongolddev/pnlcast/internal/dataset"
	"github.com/theirongolddev/pnlcast/internal/forecast"
	"github.com/theirongolddev/pnlcast/internal/logging"
	"github.com/theirongolddev/pnlcast/internal/workbench"
)

var (
	flagInput    string
	flagPeriod   string
	flagStrategy string
	flagDegree   int
	flagQuiet    bool
	flagJSON     bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "pnlcast",
	Short: "Profit and loss forecasting",
	Long: "Fit a trend through per-period profit (revenue minus expenses) and " +
		"extrapolate it over a forecast horizon.",
	SilenceUsage: true,
	RunE:         runForecast,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagInput, "input", "i", "", "Dataset file (.toml or .csv, - for CSV on stdin)")
	rootCmd.PersistentFlags().StringVarP(&flagPeriod, "period", "p", "", "Forecast horizon in periods")
	rootCmd.PersistentFlags().StringVarP(&flagStrategy, "strategy", "s", "", "Fit strategy (polynomial, linear)")
	rootCmd.PersistentFlags().IntVar(&flagDegree, "degree", forecast.DefaultDegree, "Polynomial degree")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print machine-readable JSON")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadSettings layers flags over the config file and environment.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Forecast.Strategy = flagStrategy
	}
	if flags.Changed("degree") {
		cfg.Forecast.Degree = flagDegree
	}
	if flags.Changed("period") {
		p, err := forecast.ParsePeriod(flagPeriod)
		if err != nil {
			return cfg, err
		}
		cfg.Forecast.Period = p
	}
	if flags.Changed("input") {
		cfg.Forecast.Dataset = flagInput
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}

	return cfg, cfg.Validate()
}

// loadState builds the starting workbench state. An explicit --period beats
// one stored in the dataset.
func loadState(cmd *cobra.Command, cfg config.Config) (workbench.State, error) {
	d := dataset.Default()
	if path := cfg.Forecast.Dataset; path != "" {
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Loading %s\n", path)
		}
		loaded, err := dataset.Load(path)
		if err != nil {
			return workbench.State{}, err
		}
		d = loaded
	}

	st := workbench.FromDataset(d, cfg.Forecast.Strategy, cfg.Forecast.Degree, cfg.Forecast.Period)
	if cmd.Flags().Changed("period") {
		st.Period = cfg.Forecast.Period
	}
	return st, nil
}

func newLogger(cfg config.Config, noStderr bool) (*zap.Logger, error) {
	return logging.NewWithOptions(logging.Options{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		File:        cfg.Log.File,
		NoStderr:    noStderr,
	})
}
