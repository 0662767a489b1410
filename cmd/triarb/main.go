// Package main is the entry point for the triangular arbitrage scanner.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fd1az/triarb/business/arbitrage"
	arbitrageApp "github.com/fd1az/triarb/business/arbitrage/app"
	"github.com/fd1az/triarb/business/arbitrage/infra/console"
	"github.com/fd1az/triarb/business/arbitrage/infra/jsonout"
	"github.com/fd1az/triarb/business/fees"
	"github.com/fd1az/triarb/business/market"
	"github.com/fd1az/triarb/internal/config"
	"github.com/fd1az/triarb/internal/logger"
	"github.com/fd1az/triarb/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const usage = `usage: triarb [--config file] [--json] <command> [flags]

commands:
  scan        rank profitable triangular routes in the current snapshot
  analyze     profit breakdown for an amount and spread
  breakeven   spread at which an amount nets zero
  optimal     trade size that nets a target profit
  table       profitability matrix of spreads by amounts
  strategy    recommended settings for a capital and risk tier
  execute     scan, then execute the ranked batch (dry run unless --live)
  status      pools in the current snapshot
  history     recent journaled executions
  run         scan and execute periodically until interrupted
  version     print version information
`

var errUsage = errors.New("invalid usage")

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	jsonOut := flag.Bool("json", false, "Write results as JSON")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if args[0] == "version" {
		fmt.Printf("triarb %s (commit: %s, built: %s)\n", version, commit, buildDate)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath, *jsonOut, args[0], args[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			flag.Usage()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, jsonOut bool, command string, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	log.Debug(ctx, "starting triarb",
		"version", version,
		"command", command,
		"environment", cfg.App.Environment,
	)

	telemetry, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer telemetry.shutdown(log)

	mono := monolith.New(cfg, log)
	defer func() {
		if err := mono.Close(); err != nil {
			log.Warn(ctx, "module shutdown failed", "error", err)
		}
	}()

	// Modules in dependency order: arbitrage consumes market and fees.
	modules := []monolith.Module{
		&market.Module{},
		&fees.Module{},
		&arbitrage.Module{},
	}
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	out, flush := newReporter(os.Stdout, jsonOut)
	c := &cli{cfg: cfg, log: log, services: mono.Services(), out: out}

	switch command {
	case "scan":
		err = c.scan(ctx, args)
	case "analyze":
		err = c.analyze(args)
	case "breakeven":
		err = c.breakeven(args)
	case "optimal":
		err = c.optimal(args)
	case "table":
		err = c.table(args)
	case "strategy":
		err = c.strategy(args)
	case "execute":
		err = c.execute(ctx, args)
	case "status":
		err = c.status(ctx, args)
	case "history":
		err = c.history(ctx, args)
	case "run":
		err = runDaemon(ctx, c, telemetry)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
	if err != nil {
		return err
	}
	return flush()
}

func newReporter(w io.Writer, jsonOut bool) (arbitrageApp.Reporter, func() error) {
	if jsonOut {
		r := jsonout.NewReporter(w)
		return r, r.Err
	}
	return console.NewReporter(w), func() error { return nil }
}
