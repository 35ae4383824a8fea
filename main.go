package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sadopc/timesheet/internal/cli"
	"github.com/sadopc/timesheet/internal/config"
	"github.com/sadopc/timesheet/internal/logger"
	"github.com/sadopc/timesheet/internal/parser"
	"github.com/sadopc/timesheet/internal/service"
	"github.com/sadopc/timesheet/internal/store"
	"github.com/sadopc/timesheet/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so console logging stays off there.
	log, closer, err := logger.Configure(cfg, cfg.DevMode && !launchesTUI(args))
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := store.New(cfg.DBPath)
	if err != nil {
		log.Error().Err(err).Str("db", cfg.DBPath).Msg("open database")
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	svc := service.New(s,
		parser.NewTableParser(log),
		parser.NewPDFParser(cfg.FallbackPeriod(), log),
		log,
		service.WithCollaborator(cfg.Collaborator),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Service: svc,
		RunTUI: func(ctx context.Context) error {
			return tui.Run(ctx, svc)
		},
	}

	log.Debug().Str("db", cfg.DBPath).Strs("args", args).Msg("starting")
	if err := cli.Execute(ctx, app, args); err != nil {
		log.Error().Err(err).Msg("command failed")
		return err
	}
	return nil
}

func launchesTUI(args []string) bool {
	return len(args) == 0 || args[0] == "tui"
}
