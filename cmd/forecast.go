package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pnlcast/internal/chart"
	"github.com/theirongolddev/pnlcast/internal/cli"
	"github.com/theirongolddev/pnlcast/internal/forecast"
	"github.com/theirongolddev/pnlcast/internal/workbench"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast [dataset]",
	Short: "Print a profit forecast for a dataset",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}

type forecastReport struct {
	Result  forecast.Result `json:"result"`
	Payload chart.Payload   `json:"payload"`
}

func runForecast(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Forecast.Dataset = args[0]
	}

	st, err := loadState(cmd, cfg)
	if err != nil {
		return err
	}
	res, payload := workbench.Compute(st)

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(forecastReport{Result: res, Payload: payload})
	}

	r := cli.TextRenderer{W: os.Stdout, Title: "pnlcast · Profit Forecast"}
	if err := r.Render(payload); err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(cli.RenderDiagnostics(res))
	return nil
}
