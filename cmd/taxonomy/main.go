package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/taxonomy/internal/cli"
	"github.com/alexanderramin/taxonomy/internal/config"
	"github.com/alexanderramin/taxonomy/internal/db"
	"github.com/alexanderramin/taxonomy/internal/repository"
	"github.com/alexanderramin/taxonomy/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	logger := newLogger(cfg)

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening database: %v\n", err)
		return err
	}
	defer database.Close()

	// Use-case events are only worth the noise when debugging.
	var observers []service.UseCaseObserver
	if cfg.LogLevel <= slog.LevelDebug {
		observers = append(observers, service.NewSlogUseCaseObserver(logger))
	}

	// Wire repositories
	nodeRepo := repository.NewSQLiteNodeRepo(database)

	// Wire unit of work for the chunked import writes and seeding
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire services
	nodeSvc := service.NewNodeService(nodeRepo, logger, observers...)

	app := &cli.App{
		Nodes:   nodeSvc,
		Reorder: service.NewReorderService(nodeRepo, observers...),
		Import:  service.NewImportService(nodeSvc, uow, cfg.ImportChunkSize, logger, observers...),
		Seed:    service.NewSeedService(uow, observers...),
	}

	// Prompts and spinners need a terminal on both ends.
	app.IsInteractive = func() bool {
		in := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		out := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		return in && out
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == config.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
