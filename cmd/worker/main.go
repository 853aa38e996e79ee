// Command worker consumes queued card recognition jobs.
package main

import (
	"github.com/rs/zerolog/log"

	"trainercard/pkg/card"
	"trainercard/pkg/config"
	"trainercard/pkg/imgproc"
	"trainercard/pkg/logging"
	"trainercard/pkg/ocr"
	"trainercard/pkg/progress"
	"trainercard/pkg/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	if cfg.RedisURL == "" {
		log.Fatal().Msg("REDIS_URL is not set")
	}

	store, err := progress.Open(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if cfg.DBAutoMigrate {
		if err := store.Migrate(); err != nil {
			log.Warn().Err(err).Msg("some migrations failed")
		}
	}

	engine := ocr.NewTesseract(cfg.TesseractLanguages()...).WithWhitelist(cfg.TesseractWhitelist)
	h := &queue.Handler{
		Reader:  card.NewReader(engine).WithConcurrency(cfg.WorkerConcurrency),
		Store:   store,
		Timeout: cfg.RecognizeTimeout,
	}
	srv, err := queue.NewServer(cfg.RedisURL, cfg.QueueName, cfg.WorkerConcurrency, h)
	if err != nil {
		log.Fatal().Err(err).Msg("create queue server")
	}
	log.Info().
		Str("queue", cfg.QueueName).
		Int("concurrency", cfg.WorkerConcurrency).
		Str("imgproc", imgproc.Backend).
		Str("tesseract", ocr.Version()).
		Msg("worker started")
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}
