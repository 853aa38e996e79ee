package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"trainercard/pkg/card"
	"trainercard/pkg/config"
	"trainercard/pkg/imgproc"
	"trainercard/pkg/logging"
	"trainercard/pkg/ocr"
	"trainercard/pkg/queue"
)

var (
	cfg       config.Config
	jwtSecret []byte

	recognizer queue.Recognizer
	jobs       jobQueue // nil when REDIS_URL is unset
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	jwtSecret = []byte(cfg.JWTSecret)
	if cfg.JWTSecret == config.DevJWTSecret {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
	}

	// `./trainercard migrate` runs migrations and seeding, then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB(true)
		fmt.Println("migration and seeding completed")
		return
	}

	initDB(cfg.DBAutoMigrate)
	engine := ocr.NewTesseract(cfg.TesseractLanguages()...).WithWhitelist(cfg.TesseractWhitelist)
	recognizer = card.NewReader(engine).WithConcurrency(cfg.WorkerConcurrency)

	if cfg.RedisURL != "" {
		e, err := queue.NewEnqueuer(cfg.RedisURL, cfg.QueueName)
		if err != nil {
			log.Fatal().Err(err).Msg("connect queue")
		}
		defer e.Close()
		jobs = e
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logging.Gin())
	r.MaxMultipartMemory = cfg.MaxUploadBytes()
	setupRoutes(r)

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("imgproc", imgproc.Backend).
		Str("tesseract", ocr.Version()).
		Bool("async", jobs != nil).
		Msg("trainercard listening")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("http server")
	}
}
