package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/eargollo/stdfload/internal/api"
	"github.com/eargollo/stdfload/internal/config"
	"github.com/eargollo/stdfload/internal/db"
	"github.com/eargollo/stdfload/internal/ingest"
	"github.com/eargollo/stdfload/internal/scheduler"
)

// Injected at build time via -ldflags; defaults to "dev".
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "load":
		runLoad(args)
	case "analyze":
		runAnalyze(args)
	case "serve":
		runServe(args)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: stdfload <load|analyze|serve> [flags]")
}

func initLogging(level string) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	})))
}

// runLoad ingests a single STDF file into a database and exits.
func runLoad(args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	dbPath := fs.String("db", "stdfload.db", "path to the output SQLite database")
	source := fs.String("source", "", "path to the STDF file (.stdf, .stdf.gz, .stdf.bz2)")
	fs.Parse(args)

	initLogging("info")
	if *source == "" {
		slog.Error("load requires -source")
		os.Exit(1)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		slog.Error("run migrations", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := ingest.New(database, ingest.DefaultConfig())
	sink := func(pct int64) {
		slog.Info("progress", "percent", float64(pct)/100)
	}

	if err := engine.Run(ctx, *source, nil, sink); err != nil && !ingest.IsEOF(err) {
		slog.Error("load failed", "error", err)
		os.Exit(1)
	}
	slog.Info("load complete", "source", *source, "db", *dbPath)
}

// runAnalyze prints a record-type histogram for a single STDF file.
func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	source := fs.String("source", "", "path to the STDF file")
	fs.Parse(args)

	initLogging("info")
	if *source == "" {
		slog.Error("analyze requires -source")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hist, err := ingest.Analyze(ctx, *source)
	if err != nil && !ingest.IsEOF(err) {
		slog.Error("analyze failed", "error", err)
		os.Exit(1)
	}
	for code, count := range hist {
		fmt.Printf("%-6s %d\n", code.Name(), count)
	}
}

// runServe starts the long-running ingestion service: a scheduler that
// periodically starts a run for each source_paths entry, and a
// status/run-history HTTP API.
func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	initLogging("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	initLogging(cfg.LogLevel)
	slog.Info("stdfload starting",
		"version", version,
		"log_level", cfg.LogLevel,
		"http_addr", cfg.HTTPAddr,
		"db_path", cfg.DBPath,
		"source_paths", cfg.SourcePaths)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		slog.Error("run migrations", "error", err)
		os.Exit(1)
	}

	if err := ingest.MarkStaleRunsFailed(database); err != nil {
		slog.Warn("mark stale runs", "error", err)
	}

	engineCfg := ingest.Config{QueueCapacity: cfg.QueueCapacity, ParametricWorkers: cfg.ParametricWorkers}
	mgr := ingest.NewManager(database, engineCfg)

	sched := scheduler.New()
	if !cfg.IngestPaused && cfg.Schedule != "" {
		if err := sched.SetJob(cfg.Schedule, func() {
			slog.Info("scheduled ingestion sweep triggered")
			for _, path := range cfg.SourcePaths {
				if _, err := mgr.Start(context.Background(), path, cfg.DBPath, "schedule"); err != nil {
					slog.Warn("scheduled ingestion start", "path", path, "error", err)
				}
			}
		}); err != nil {
			slog.Warn("invalid cron expression", "expr", cfg.Schedule, "error", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.New(cfg.HTTPAddr, database, mgr, sched, version)
	if err := srv.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("stdfload stopped")
}

// parseLogLevel converts a config string ("debug", "info", "warn", "error")
// to its slog.Level equivalent. Unknown values default to Info.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
