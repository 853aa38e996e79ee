package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"trainercard/models"
	"trainercard/pkg/card"
	"trainercard/pkg/progress"
)

type Recognizer interface {
	RecognizeContext(ctx context.Context, data []byte) (card.ParsedCard, error)
}

// Recorder is the part of progress.Store a worker writes to.
type Recorder interface {
	Record(ctx context.Context, userID uint, c card.ParsedCard, postedAt time.Time, source string) (bool, error)
	MarkProcessed(ctx context.Context, p models.ProcessedImage) error
}

// Handler processes card:recognize tasks. Recognition failures are final and
// skip retries; engine timeouts and storage errors are retried.
type Handler struct {
	Reader  Recognizer
	Store   Recorder
	Timeout time.Duration
}

func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p RecognizePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	logger := log.With().Str("job_id", p.JobID).Uint("user_id", p.UserID).Str("file", p.Filename).Logger()
	start := time.Now()

	rctx := ctx
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	c, err := h.Reader.RecognizeContext(rctx, p.Image)
	if err != nil {
		if card.KindOf(err) == 0 {
			logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("recognition error, will retry")
			return fmt.Errorf("job %s: %w", p.JobID, err)
		}
		logger.Info().Err(err).Msg("not recorded")
		if merr := h.mark(ctx, p, false, err); merr != nil {
			return merr
		}
		return fmt.Errorf("job %s: %w: %w", p.JobID, err, asynq.SkipRetry)
	}

	written, err := h.Store.Record(ctx, p.UserID, c, p.PostedAt, p.Filename)
	if err != nil {
		if errors.Is(err, progress.ErrUserNotFound) {
			return fmt.Errorf("job %s: %w: %w", p.JobID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("job %s: record: %w", p.JobID, err)
	}
	if err := h.mark(ctx, p, written, nil); err != nil {
		return err
	}
	logger.Info().
		Str("name", c.Name).Int("badges", c.Badges).Str("time", c.Time).Int("pokedex", c.Pokedex).
		Bool("written", written).Dur("elapsed", time.Since(start)).
		Msg("card recorded")
	return nil
}

func (h *Handler) mark(ctx context.Context, p RecognizePayload, written bool, cause error) error {
	outcome, reason := progress.Outcome(written, cause)
	uid := p.UserID
	err := h.Store.MarkProcessed(ctx, models.ProcessedImage{
		Digest:   p.Digest,
		UserID:   &uid,
		FileName: p.Filename,
		Outcome:  outcome,
		Reason:   reason,
	})
	if err != nil {
		return fmt.Errorf("job %s: mark processed: %w", p.JobID, err)
	}
	return nil
}
