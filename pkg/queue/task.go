// Package queue runs recognitions asynchronously on Redis through asynq.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TypeRecognize = "card:recognize"

const maxRetry = 3

// RecognizePayload carries the image bytes themselves so the worker needs no
// shared filesystem with the API.
type RecognizePayload struct {
	JobID    string    `json:"job_id"`
	UserID   uint      `json:"user_id"`
	Filename string    `json:"filename"`
	Image    []byte    `json:"image"`
	PostedAt time.Time `json:"posted_at"`
	Digest   string    `json:"digest"`
}

// NewRecognizeTask builds a task whose asynq id is the job id, so enqueueing
// the same job twice is rejected by asynq.
func NewRecognizeTask(p RecognizePayload, queue string) (*asynq.Task, error) {
	if p.JobID == "" {
		return nil, fmt.Errorf("recognize task: empty job id")
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	opts := []asynq.Option{asynq.TaskID(p.JobID), asynq.MaxRetry(maxRetry)}
	if queue != "" {
		opts = append(opts, asynq.Queue(queue))
	}
	return asynq.NewTask(TypeRecognize, b, opts...), nil
}

// retryDelay backs off 5s, 10s, 20s... capped at a minute.
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n > 4 {
		return time.Minute
	}
	delay := time.Duration(5*(1<<uint(n))) * time.Second
	if delay > time.Minute {
		delay = time.Minute
	}
	return delay
}
