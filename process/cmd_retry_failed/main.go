package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"trainercard/pkg/card"
	"trainercard/pkg/config"
	"trainercard/pkg/logging"
	"trainercard/pkg/ocr"
	"trainercard/pkg/progress"
	"trainercard/process/retry"
)

func main() {
	dry := flag.Bool("dry-run", true, "dry-run: don't write to DB")
	limit := flag.Int("limit", 100, "maximum number of failed images to retry")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logging.Setup(cfg.LogLevel, true)
	store, err := progress.Open(cfg.DBDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(2)
	}

	reader := card.NewReader(ocr.NewTesseract(cfg.TesseractLanguages()...).WithWhitelist(cfg.TesseractWhitelist))
	res, err := retry.Run(context.Background(), store, reader, retry.Options{
		UploadBase: cfg.UploadBase,
		Limit:      *limit,
		Timeout:    cfg.RecognizeTimeout,
		DryRun:     *dry,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("recovered=%d failing=%d missing=%d\n", res.Recovered, res.Failing, res.Missing)
}
