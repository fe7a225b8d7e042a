// Package cmd implements the pnlcast CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pnlcast/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Forecast]")
	fmt.Printf("    Strategy: %s\n", cfg.Forecast.Strategy)
	fmt.Printf("    Degree:   %d\n", cfg.Forecast.Degree)
	fmt.Printf("    Horizon:  %d\n", cfg.Forecast.Period)
	if cfg.Forecast.Dataset != "" {
		fmt.Printf("    Dataset:  %s\n", cfg.Forecast.Dataset)
	} else {
		fmt.Println("    Dataset:  built-in sample")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Server.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:       %s\n", cfg.Log.Level)
	fmt.Printf("    Development: %v\n", cfg.Log.Development)
	if cfg.Log.File != "" {
		fmt.Printf("    File:        %s\n", cfg.Log.File)
	}
	fmt.Println()

	fmt.Println("  Run `pnlcast setup` to reconfigure.")
	return nil
}
