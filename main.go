package main

import (
	"bytes"
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	storePath := flag.String("store", "", "override the store file path")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Secrets may live in a .env file next to the binary; a missing file is fine.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded .env file")
	}

	cfg := loadConfig(*configPath)
	if *storePath != "" {
		cfg.StorePath = *storePath
	}
	if cfg.TargetURL == "" {
		slog.Error("No target URL configured (set target_url in the config file or CARWATCH_TARGET_URL)")
		os.Exit(1)
	}

	if err := run(context.Background(), cfg); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

// run executes one scheduled pass: fetch, extract, reconcile, persist,
// journal, notify. Runs are serialized by the external scheduler, so there is
// no locking anywhere in the pipeline.
func run(ctx context.Context, cfg *Config) error {
	store, firstRun := loadStore(cfg.StorePath)

	body, err := fetchPage(ctx, newPageClient(), cfg)
	if err != nil {
		// Upstream failure: abort before reconciliation, mutate nothing.
		return err
	}

	listings, err := extractListings(bytes.NewReader(body), cfg.DetailURLFormat)
	if err != nil {
		return err
	}
	slog.Info("Scraped listings", "count", len(listings), "firstRun", firstRun)

	runCtx := RunContext{FirstRun: firstRun, ObservedAt: time.Now()}
	result := reconcile(listings, store, runCtx, cfg.policy())
	slog.Info("Reconciled batch", "events", len(result.Events), "storeEntries", len(result.Store))

	// Persist when anything changed; also on the first run, so the baseline
	// file exists even when the page was empty.
	if result.Changed || runCtx.FirstRun {
		if err := saveStore(cfg.StorePath, result.Store); err != nil {
			return err
		}
	} else {
		slog.Info("No changes detected")
	}

	// Journal and feed are best-effort; they never fail the run.
	if cfg.HistoryDB != "" {
		if db, err := openHistoryDB(cfg.HistoryDB); err != nil {
			slog.Warn("History database unavailable", "error", err)
		} else {
			defer func() { _ = db.Close() }()
			recordEvents(db, result.Events)
			if cfg.FeedPath != "" {
				if err := writeEventFeed(db, cfg.FeedPath, cfg.TargetURL); err != nil {
					slog.Warn("Failed to write event feed", "error", err)
				}
			}
		}
	}

	newNotifier(cfg).Deliver(ctx, result.Events)
	return nil
}
