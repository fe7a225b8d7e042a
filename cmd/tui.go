package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/pnlcast/internal/config"
	"github.com/theirongolddev/pnlcast/internal/server"
	"github.com/theirongolddev/pnlcast/internal/tui"
	"github.com/theirongolddev/pnlcast/internal/tui/theme"
	"github.com/theirongolddev/pnlcast/internal/workbench"
)

var (
	flagTUIServe bool
	flagTUIAddr  string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive forecasting workbench",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&flagTUIServe, "serve", false, "Also serve the HTTP API on the same session")
	tuiCmd.Flags().StringVar(&flagTUIAddr, "addr", "", "HTTP listen address with --serve (default from config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	st, err := loadState(cmd, cfg)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs only go to the configured file.
	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sess := workbench.NewSession(st, nil, log)

	opts := tui.Options{
		SaveTheme: func(name string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Appearance.Theme = name
			return config.Save(cfg)
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serveErr := make(chan error, 1)
	if flagTUIServe {
		addr := cfg.Server.Addr
		if flagTUIAddr != "" {
			addr = flagTUIAddr
		}
		svc := server.New(server.Config{Addr: addr, EventsBuffer: cfg.Server.EventsBuffer}, sess, log)
		opts.Status = "api " + addr
		go func() {
			serveErr <- svc.Run(ctx)
		}()
	}

	p := tea.NewProgram(tui.NewApp(sess, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()

	cancel()
	if flagTUIServe {
		if err := <-serveErr; err != nil {
			log.Error("api server stopped", zap.Error(err))
			if runErr == nil {
				return err
			}
		}
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}
