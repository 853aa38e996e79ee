// Package sanitize empties the application tables, for resetting a test or
// staging database.
package sanitize

import (
	"context"
	"flag"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"trainercard/models"
	"trainercard/pkg/config"
	"trainercard/pkg/progress"
)

const defaultTables = "refresh_tokens,processed_images,badge_records,users,roles"

var nameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Run executes the sanitize CLI. It is a dry run unless --dry-run=false
// and --yes are both given.
func Run() {
	var (
		dryRun = flag.Bool("dry-run", true, "Don't perform destructive actions; show what would be done")
		yes    = flag.Bool("yes", false, "Confirm destructive action (required to actually truncate)")
		reseed = flag.Bool("reseed", false, "After truncation, reseed roles and the admin account from ADMIN_PASSWORD")
		tables = flag.String("tables", defaultTables, "Comma-separated list of tables to truncate")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	store, err := progress.Open(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	gdb := store.DB()

	var existing []string
	for _, t := range selectTables(*tables) {
		var cnt int64
		if err := gdb.Raw("SELECT count(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = ?", t).Scan(&cnt).Error; err != nil {
			log.Fatal().Err(err).Str("table", t).Msg("query pg_tables")
		}
		if cnt > 0 {
			existing = append(existing, t)
		} else {
			log.Info().Str("table", t).Msg("table not found, skipping")
		}
	}
	if len(existing) == 0 {
		log.Info().Msg("no requested tables present in the database; nothing to do")
		return
	}

	fmt.Println("Tables considered for truncation:")
	for _, t := range existing {
		fmt.Printf(" - %s\n", t)
	}
	if *dryRun {
		fmt.Println("dry-run enabled; no changes will be made. Use --dry-run=false --yes to execute.")
		return
	}
	if !*yes {
		fmt.Println("Destructive operation. Pass --yes to confirm execution. Aborting.")
		return
	}

	stmt := truncateStatement(existing)
	log.Info().Str("stmt", stmt).Msg("executing")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := gdb.WithContext(ctx).Exec(stmt).Error; err != nil {
		log.Fatal().Err(err).Msg("truncate failed")
	}
	log.Info().Msg("truncate completed")

	if *reseed {
		if err := reseedRolesAndAdmin(ctx, store, cfg); err != nil {
			log.Fatal().Err(err).Msg("reseed failed")
		}
	}
}

// selectTables splits a comma-separated list and drops anything that is not
// a plain identifier.
func selectTables(list string) []string {
	var out []string
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !nameRe.MatchString(p) {
			log.Warn().Str("table", p).Msg("skipping invalid table name")
			continue
		}
		out = append(out, p)
	}
	return out
}

func truncateStatement(tables []string) string {
	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
}

func reseedRolesAndAdmin(ctx context.Context, store *progress.Store, cfg config.Config) error {
	if err := store.SeedRoles(); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	if cfg.AdminPassword == "" {
		log.Info().Msg("ADMIN_PASSWORD not set; no admin account created")
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := store.CreateUser(ctx, cfg.AdminUsername, hashed, models.RoleAdministrator); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	return nil
}
