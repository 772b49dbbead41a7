package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ybtop/internal/analysis"
	"ybtop/internal/config"
	"ybtop/internal/logger"
	"ybtop/internal/probe"
	"ybtop/internal/render"
	"ybtop/internal/rpcz"
	"ybtop/internal/sampler"
	"ybtop/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/pflag"
)

var log = logging.MustGetLogger("ybtop")

func main() {
	// YBTOP_* settings may live in a local .env file.
	_ = godotenv.Load()

	fs := config.NewFlagSet(os.Args[0])
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.InitConfig(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	logOut, closeLog, err := logger.Output(cfg.LogFile, !cfg.Plain)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()
	if err := logger.Init(cfg.LogLevel, logOut); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prober := probe.NewHTTPProber(cfg.Path, cfg.ProbeTimeout, cfg.RequestTimeout)
	s := sampler.New(prober, sampler.Targets(cfg.Hosts, cfg.Ports), sampler.Config{
		Parallel:             cfg.Parallel,
		FailOnTransportError: cfg.FailOnTransportError,
	})

	if cfg.Plain {
		err = runPlain(ctx, s, cfg)
	} else {
		err = runTUI(ctx, s, cfg)
	}
	if err != nil {
		log.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		closeLog()
		os.Exit(1)
	}
}

// runPlain redraws the reference table after every sweep until ctx is done.
func runPlain(ctx context.Context, s *sampler.Sampler, cfg *config.Config) error {
	opts := rpcz.Options{ShowIdle: cfg.Idle}
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		snap, err := s.Sweep(ctx, opts)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := render.Redraw(os.Stdout, snap.Activity); err != nil {
			return fmt.Errorf("could not draw table: %w", err)
		}
		timer.Reset(cfg.Interval())
	}
}

func runTUI(ctx context.Context, s *sampler.Sampler, cfg *config.Config) error {
	alerts := analysis.DefaultConfig()
	alerts.SlowQuery = cfg.SlowQuery

	model := tui.NewActivityModel(ctx, s, tui.Options{
		Interval:  cfg.Interval(),
		ShowIdle:  cfg.Idle,
		Alerts:    alerts,
		ExportDir: ".",
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	if m, ok := final.(tui.ActivityModel); ok {
		return m.Err()
	}
	return nil
}
