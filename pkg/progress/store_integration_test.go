package progress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trainercard/models"
	"trainercard/pkg/card"
)

func setupStore(t *testing.T) *Store {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	db, err := gorm.Open(postgres.Open(os.Getenv("DB_DSN")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s := NewStore(db)
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := s.SeedRoles(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func newUser(t *testing.T, s *Store) models.User {
	t.Helper()
	name := fmt.Sprintf("trainer-%d", time.Now().UnixNano())
	u, err := s.CreateUser(context.Background(), name, []byte("x"), models.RoleUser)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestRecordLatestWins(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := newUser(t, s)
	t0 := time.Now().Add(-time.Hour).Truncate(time.Second)

	c := card.ParsedCard{Name: "ASH", Badges: 3, Time: "2:15", Pokedex: 11}
	if ok, err := s.Record(ctx, u.ID, c, t0, "a.png"); err != nil || !ok {
		t.Fatalf("first record: %v %v", ok, err)
	}
	older := c
	older.Time = "1:00"
	if ok, err := s.Record(ctx, u.ID, older, t0.Add(-time.Minute), "b.png"); err != nil || ok {
		t.Fatalf("older record: %v %v", ok, err)
	}
	if ok, err := s.Record(ctx, u.ID, older, t0, "b.png"); err != nil || ok {
		t.Fatalf("same timestamp must not replace: %v %v", ok, err)
	}
	newer := c
	newer.Name, newer.Time = "ASHY", "2:40"
	if ok, err := s.Record(ctx, u.ID, newer, t0.Add(time.Minute), "c.png"); err != nil || !ok {
		t.Fatalf("newer record: %v %v", ok, err)
	}

	p, err := s.Progress(ctx, u.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(p.Records) != 1 || p.Records[0].Time != "2:40" || p.TrainerName != "ASHY" {
		t.Fatalf("progress = %+v", p)
	}

	if _, err := s.Record(ctx, 0, c, t0, ""); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestProcessedIsIdempotent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	d := Digest([]byte(time.Now().String()))
	if ok, err := s.IsProcessed(ctx, d); err != nil || ok {
		t.Fatalf("fresh digest: %v %v", ok, err)
	}
	p := models.ProcessedImage{Digest: d, Outcome: "not_a_card", Reason: "no header"}
	if err := s.MarkProcessed(ctx, p); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := s.MarkProcessed(ctx, p); err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if ok, err := s.IsProcessed(ctx, d); err != nil || !ok {
		t.Fatalf("marked digest: %v %v", ok, err)
	}
	fails, err := s.Failures(ctx, 10)
	if err != nil || len(fails) == 0 || fails[0].Digest != d {
		t.Fatalf("failures: %v %v", fails, err)
	}
}

func TestRefreshRotation(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := newUser(t, s)
	raw, err := s.IssueRefreshToken(ctx, u.ID, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, next, err := s.RotateRefreshToken(ctx, raw, time.Hour)
	if err != nil || got.ID != u.ID || next == raw {
		t.Fatalf("rotate: %v %v", got, err)
	}
	if _, _, err := s.RotateRefreshToken(ctx, raw, time.Hour); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("reuse: %v", err)
	}
	if err := s.RevokeRefreshToken(ctx, next); err != nil {
		t.Fatalf("revoke: %v", err)
	}
}
