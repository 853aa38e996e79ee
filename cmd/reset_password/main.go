package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"trainercard/pkg/config"
	"trainercard/pkg/logging"
	"trainercard/pkg/progress"
)

const minPasswordLength = 6

func main() {
	username := flag.String("username", "", "username to reset")
	password := flag.String("password", "", "new plaintext password (min 6 chars)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.LogLevel, true)
	if *username == "" || *password == "" {
		log.Fatal().Msg("--username and --password are required")
	}
	if len(*password) < minPasswordLength {
		log.Fatal().Msgf("password too short (min %d)", minPasswordLength)
	}

	store, err := progress.Open(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}
	if err := store.SetPassword(context.Background(), *username, hash); err != nil {
		log.Fatal().Err(err).Str("username", *username).Msg("reset failed")
	}
	fmt.Printf("Password reset for user %s; existing sessions revoked\n", *username)
}
