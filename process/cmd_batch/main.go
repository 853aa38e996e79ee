package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog/log"

	"trainercard/pkg/card"
	"trainercard/pkg/config"
	"trainercard/pkg/logging"
	"trainercard/pkg/ocr"
	"trainercard/pkg/progress"
	"trainercard/process/batch"
)

// Scans a directory of trainer card screenshots and records them for one
// user. With --watch it keeps processing files as they appear.
func main() {
	dir := flag.String("dir", "inbox", "directory to scan for screenshots")
	username := flag.String("user", "", "account to record the cards for (required unless --dry-run)")
	dryRun := flag.Bool("dry-run", false, "recognize and log only; no DB reads or writes")
	watch := flag.Bool("watch", false, "keep watching the directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	moveTo := flag.String("move-to", "", "move handled files into this directory")
	verbose := flag.Bool("verbose", false, "per-file debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	logging.Setup(level, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &batch.Runner{
		Dir:     *dir,
		Reader:  card.NewReader(ocr.NewTesseract(cfg.TesseractLanguages()...).WithWhitelist(cfg.TesseractWhitelist)),
		Workers: *workers,
		Timeout: cfg.RecognizeTimeout,
		DryRun:  *dryRun,
		MoveTo:  *moveTo,
	}
	if r.Workers <= 0 {
		r.Workers = runtime.NumCPU()
	}
	if !*dryRun {
		if *username == "" {
			log.Fatal().Msg("--user is required")
		}
		store, err := progress.Open(cfg.DBDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("connect database")
		}
		user, err := store.UserByName(ctx, *username)
		if err != nil {
			log.Fatal().Err(err).Str("user", *username).Msg("resolve user")
		}
		r.Store = store
		r.UserID = user.ID
	}

	stats, err := r.Scan(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("scan")
	}
	log.Info().Stringer("stats", stats).Msg("scan finished")

	if *watch {
		stats, err := r.Watch(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("watch")
		}
		log.Info().Stringer("stats", stats).Msg("watch stopped")
	}
}
