package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"trainercard/models"
	"trainercard/pkg/config"
	"trainercard/pkg/logging"
	"trainercard/pkg/progress"
)

func main() {
	admin := flag.Bool("admin", false, "grant the administrator role")
	flag.Parse()
	if flag.NArg() < 2 {
		fmt.Println("usage: go run ./cmd/create_user [--admin] <username> <password>")
		os.Exit(2)
	}
	username, password := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.LogLevel, true)
	store, err := progress.Open(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open db")
	}
	if err := store.SeedRoles(); err != nil {
		log.Fatal().Err(err).Msg("ensure roles")
	}

	ctx := context.Background()
	if existing, err := store.UserByName(ctx, username); err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", username, existing.ID)
		return
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt failed")
	}
	role := models.RoleUser
	if *admin {
		role = models.RoleAdministrator
	}
	user, err := store.CreateUser(ctx, username, hpw, role)
	if errors.Is(err, progress.ErrUserExists) {
		fmt.Printf("user %s already exists\n", username)
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user")
	}
	fmt.Printf("created user %s id=%d role=%s\n", username, user.ID, role)
}
