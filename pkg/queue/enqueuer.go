package queue

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"trainercard/pkg/progress"
)

// Enqueuer submits recognition jobs.
type Enqueuer struct {
	client *asynq.Client
	queue  string
}

func NewEnqueuer(redisURL, queue string) (*Enqueuer, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Enqueuer{client: asynq.NewClient(opt), queue: queue}, nil
}

// Enqueue fills in the job id and digest when missing and submits the job.
func (e *Enqueuer) Enqueue(ctx context.Context, p RecognizePayload) (string, error) {
	if p.JobID == "" {
		p.JobID = uuid.NewString()
	}
	if p.Digest == "" {
		p.Digest = progress.Digest(p.Image)
	}
	task, err := NewRecognizeTask(p, e.queue)
	if err != nil {
		return "", err
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", p.JobID, err)
	}
	log.Info().Str("job_id", info.ID).Str("queue", info.Queue).Uint("user_id", p.UserID).Str("file", p.Filename).Msg("recognition queued")
	return p.JobID, nil
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}
