package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskibarqy/fpl-creator-match/internal/app"
	"github.com/riskibarqy/fpl-creator-match/internal/config"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
)

type flags struct {
	resume       bool
	test         bool
	maxPages     int
	retrySkipped bool
	driver       string
	dbURL        string
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.BoolVar(&f.resume, "resume", true, "continue from the stored checkpoint")
	fs.BoolVar(&f.test, "test", false, "fetch a single page and stop")
	fs.IntVar(&f.maxPages, "max-pages", 0, "pages to fetch in this batch (0 uses INGEST_MAX_PAGES)")
	fs.BoolVar(&f.retrySkipped, "retry-skipped", false, "refetch previously skipped pages first")
	fs.StringVar(&f.driver, "driver", "", "override DB_DRIVER (postgres or sqlite)")
	fs.StringVar(&f.dbURL, "db-url", "", "override DB_URL")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	if f.maxPages < 0 {
		return flags{}, fmt.Errorf("-max-pages must be >= 0")
	}
	if f.test {
		f.maxPages = 1
	}
	return f, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	f, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if f.driver != "" {
		_ = os.Setenv("DB_DRIVER", f.driver)
	}
	if f.dbURL != "" {
		_ = os.Setenv("DB_URL", f.dbURL)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel).Named("ingest")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	result, err := application.Ingestion.RunBatch(ctx, usecase.IngestionInput{
		ResumeFromCheckpoint: f.resume,
		MaxPages:             f.maxPages,
		RetrySkipped:         f.retrySkipped,
	})
	if err != nil {
		logger.Error("ingestion failed",
			"error", err,
			"next_page", result.NextPage,
			"managers_upserted", result.ManagersUpserted,
		)
		return 1
	}

	logger.Info("ingestion finished",
		"run_id", result.RunID,
		"start_page", result.StartPage,
		"next_page", result.NextPage,
		"pages_committed", result.PagesCommitted,
		"pages_rejected", result.PagesRejected,
		"managers_upserted", result.ManagersUpserted,
		"records_rejected", result.RecordsRejected,
		"skipped_pages", result.SkippedPages,
		"recovered_pages", result.RecoveredPages,
		"exhausted", result.Exhausted,
		"cancelled", result.Cancelled,
		"total_managers_fetched", result.Progress.TotalManagersFetched,
	)
	return 0
}
