package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/pnlcast/internal/config"
	"github.com/theirongolddev/pnlcast/internal/forecast"
	"github.com/theirongolddev/pnlcast/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupValues holds the form fields as the user edits them.
type setupValues struct {
	strategy string
	degree   string
	period   string
	dataset  string
	theme    string
	addr     string
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	vals := setupValues{
		strategy: cfg.Forecast.Strategy,
		degree:   strconv.Itoa(cfg.Forecast.Degree),
		period:   strconv.Itoa(cfg.Forecast.Period),
		dataset:  cfg.Forecast.Dataset,
		theme:    cfg.Appearance.Theme,
		addr:     cfg.Server.Addr,
	}

	if err := newSetupForm(&vals).Run(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	if err := vals.apply(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `pnlcast setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func newSetupForm(v *setupValues) *huh.Form {
	strategies := make([]huh.Option[string], 0, len(forecast.Names()))
	for _, name := range forecast.Names() {
		strategies = append(strategies, huh.NewOption(name, name))
	}
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Fit strategy").
				Description("How profit is extrapolated.").
				Options(strategies...).
				Value(&v.strategy),
			huh.NewInput().
				Title("Polynomial degree").
				Value(&v.degree).
				Validate(validateDegree),
			huh.NewInput().
				Title("Forecast horizon").
				Description("Periods to forecast past the last actual one.").
				Value(&v.period).
				Validate(func(s string) error {
					_, err := forecast.ParsePeriod(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Default dataset").
				Description("TOML or CSV file. Leave empty for the built-in sample.").
				Value(&v.dataset),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.theme),
			huh.NewInput().
				Title("API listen address").
				Value(&v.addr),
		),
	)
}

func validateDegree(s string) error {
	d, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("degree must be a whole number")
	}
	if d < 0 || d > forecast.MaxDegree {
		return forecast.ErrInvalidDegree
	}
	return nil
}

func (v setupValues) apply(cfg *config.Config) error {
	if err := validateDegree(v.degree); err != nil {
		return err
	}
	period, err := forecast.ParsePeriod(v.period)
	if err != nil {
		return err
	}
	degree, _ := strconv.Atoi(strings.TrimSpace(v.degree))

	cfg.Forecast.Strategy = v.strategy
	cfg.Forecast.Degree = degree
	cfg.Forecast.Period = period
	cfg.Forecast.Dataset = strings.TrimSpace(v.dataset)
	cfg.Appearance.Theme = v.theme
	if addr := strings.TrimSpace(v.addr); addr != "" {
		cfg.Server.Addr = addr
	}
	return nil
}
