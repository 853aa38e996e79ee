// Package retry runs recognition again over images that previously failed,
// typically after the recognizer was improved.
package retry

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"trainercard/models"
	"trainercard/pkg/card"
	"trainercard/pkg/progress"
	"trainercard/pkg/queue"
)

// Store is the part of progress.Store a retry run needs.
type Store interface {
	Failures(ctx context.Context, limit int) ([]models.ProcessedImage, error)
	Record(ctx context.Context, userID uint, c card.ParsedCard, postedAt time.Time, source string) (bool, error)
	SetOutcome(ctx context.Context, id uint, outcome, reason string) error
}

type Options struct {
	// UploadBase resolves relative store paths.
	UploadBase string
	Limit      int
	Timeout    time.Duration
	DryRun     bool
}

// Result counts recovered images and those that still fail.
type Result struct {
	Recovered int
	Failing   int
	Missing   int
}

// Run retries up to opts.Limit failed images. Images that now yield a card
// are recorded with their original processing time.
func Run(ctx context.Context, store Store, reader queue.Recognizer, opts Options) (Result, error) {
	items, err := store.Failures(ctx, opts.Limit)
	if err != nil {
		return Result{}, err
	}
	var res Result
	for _, it := range items {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		logger := log.With().Uint("id", it.ID).Str("file", it.FileName).Str("was", it.Outcome).Logger()
		if it.UserID == nil || it.StorePath == "" {
			res.Missing++
			continue
		}
		data, err := os.ReadFile(resolve(opts.UploadBase, it.StorePath))
		if err != nil {
			logger.Warn().Err(err).Msg("image unavailable")
			res.Missing++
			continue
		}

		rctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		parsed, err := reader.RecognizeContext(rctx, data)
		cancel()
		if err != nil {
			logger.Info().Err(err).Msg("still failing")
			res.Failing++
			continue
		}
		res.Recovered++
		if opts.DryRun {
			logger.Info().Str("name", parsed.Name).Int("badges", parsed.Badges).Msg("dry-run: would record")
			continue
		}
		written, err := store.Record(ctx, *it.UserID, parsed, it.CreatedAt, it.FileName)
		if err != nil {
			return res, err
		}
		outcome, reason := progress.Outcome(written, nil)
		if err := store.SetOutcome(ctx, it.ID, outcome, reason); err != nil {
			return res, err
		}
		logger.Info().Str("name", parsed.Name).Int("badges", parsed.Badges).Bool("recorded", written).Msg("recovered")
	}
	return res, nil
}

func resolve(base, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) || base == "" {
		return p
	}
	if full := filepath.Join(base, p); fileExists(full) {
		return full
	}
	return p
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
