package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Server consumes recognition jobs.
type Server struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewServer(redisURL, queue string, concurrency int, h *Handler) (*Server, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if queue == "" {
		queue = "default"
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency:    concurrency,
		Queues:         map[string]int{queue: 1},
		RetryDelayFunc: retryDelay,
		Logger:         asynqLogger{},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			id, _ := asynq.GetTaskID(ctx)
			log.Warn().Err(err).Str("type", task.Type()).Str("task_id", id).Msg("task failed")
		}),
	})
	mux := asynq.NewServeMux()
	mux.Handle(TypeRecognize, h)
	return &Server{srv: srv, mux: mux}, nil
}

// Run blocks until SIGTERM or SIGINT, then drains in-flight tasks.
func (s *Server) Run() error {
	return s.srv.Run(s.mux)
}

func (s *Server) Shutdown() {
	s.srv.Shutdown()
}

// asynqLogger routes asynq's own messages through zerolog.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) { log.Debug().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...interface{})  { log.Info().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...interface{})  { log.Warn().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...interface{}) { log.Error().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...interface{}) { log.Fatal().Msg(fmt.Sprint(args...)) }
