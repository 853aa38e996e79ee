// Package progress persists trainer progress: accounts, one badge record per
// badge count, and the digests of images that were already processed.
package progress

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trainercard/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidToken = errors.New("invalid or expired refresh token")
)

// Store wraps a gorm connection. All methods are safe for concurrent use.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres. Driver errors are translated so that unique
// violations surface as gorm.ErrDuplicatedKey.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("DB_DSN is not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// DB exposes the underlying connection for health checks.
func (s *Store) DB() *gorm.DB { return s.db }

// Migrate creates or updates every table. Models are migrated one by one so
// a permission problem on one table does not block the others; failures are
// logged and returned together.
func (s *Store) Migrate() error {
	var errs []error
	for _, m := range []struct {
		table string
		model any
	}{
		{"roles", &models.Role{}},
		{"users", &models.User{}},
		{"badge_records", &models.BadgeRecord{}},
		{"processed_images", &models.ProcessedImage{}},
		{"refresh_tokens", &models.RefreshToken{}},
	} {
		if err := s.db.AutoMigrate(m.model); err != nil {
			log.Warn().Err(err).Str("table", m.table).Msg("migration warning")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SeedRoles makes sure both roles exist.
func (s *Store) SeedRoles() error {
	roles := []models.Role{
		{Name: models.RoleAdministrator, Description: "full access"},
		{Name: models.RoleUser, Description: "regular user"},
	}
	for _, r := range roles {
		if err := s.db.Where(models.Role{Name: r.Name}).FirstOrCreate(&r).Error; err != nil {
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
