package main

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"trainercard/models"
	"trainercard/pkg/progress"
)

var (
	db    *gorm.DB
	store *progress.Store
	cards cardStore
)

func initDB(migrate bool) {
	if cfg.DBDSN == "" {
		log.Fatal().Msg("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	var err error
	store, err = progress.Open(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect postgres database")
	}
	db = store.DB()
	cards = store
	// Permission errors on individual tables are logged and ignored.
	if migrate {
		if err := store.Migrate(); err != nil {
			log.Warn().Err(err).Msg("some migrations failed")
		}
	}
	seedDB()
}

func seedDB() {
	if err := store.SeedRoles(); err != nil {
		log.Error().Err(err).Msg("failed to seed roles")
	}
	if cfg.AdminPassword != "" {
		seedAdmin(cfg.AdminUsername, cfg.AdminPassword)
	}
	ensureUploadBase()
}

func seedAdmin(username, password string) {
	ctx := context.Background()
	if _, err := store.UserByName(ctx, username); err == nil {
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("hash admin password")
		return
	}
	if _, err := store.CreateUser(ctx, username, hashed, models.RoleAdministrator); err != nil && !errors.Is(err, progress.ErrUserExists) {
		log.Error().Err(err).Msg("failed to seed admin user")
		return
	}
	log.Info().Str("username", username).Msg("seeded admin user")
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Warn().Err(err).Str("dir", base).Msg("failed to create upload base dir")
	}
}

func uploadBaseDir() string {
	if cfg.UploadBase != "" {
		return cfg.UploadBase
	}
	return "uploads"
}
