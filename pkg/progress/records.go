package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trainercard/models"
	"trainercard/pkg/card"
)

// Summary is one trainer's highest-badge record.
type Summary struct {
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username"`
	TrainerName string    `json:"trainer_name"`
	Badges      int       `json:"badges"`
	Time        string    `json:"time"`
	PlayMinutes int       `json:"play_minutes"`
	Pokedex     int       `json:"pokedex"`
	PostedAt    time.Time `json:"posted_at"`
}

// Progress is everything recorded for one user.
type Progress struct {
	UserID      uint                 `json:"user_id"`
	Username    string               `json:"username"`
	TrainerName string               `json:"trainer_name"`
	Records     []models.BadgeRecord `json:"records"`
	Latest      *models.BadgeRecord  `json:"latest,omitempty"`
}

// Record stores c as the user's card for its badge count. An existing record
// for that count is only replaced by a strictly newer postedAt; the result
// reports whether anything was written. The user's trainer name always
// follows the incoming card.
func (s *Store) Record(ctx context.Context, userID uint, c card.ParsedCard, postedAt time.Time, source string) (bool, error) {
	if postedAt.IsZero() {
		postedAt = time.Now()
	}
	minutes := c.PlayMinutes()
	if minutes < 0 {
		return false, fmt.Errorf("record: malformed play time %q", c.Time)
	}
	rec := models.BadgeRecord{
		UserID:      userID,
		Badges:      c.Badges,
		TrainerName: c.Name,
		Time:        c.Time,
		PlayMinutes: minutes,
		Pokedex:     c.Pokedex,
		PostedAt:    postedAt.UTC(),
		Source:      source,
	}

	var written bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("trainer_name", c.Name)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		res = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badges"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at", "trainer_name", "time", "play_minutes", "pokedex", "posted_at", "source"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "badge_records.posted_at < excluded.posted_at"},
			}},
		}).Create(&rec)
		if res.Error != nil {
			return res.Error
		}
		written = res.RowsAffected > 0
		return nil
	})
	return written, err
}

// Progress returns the user's records by ascending badge count.
func (s *Store) Progress(ctx context.Context, userID uint) (Progress, error) {
	user, err := s.UserByID(ctx, userID)
	if err != nil {
		return Progress{}, err
	}
	p := Progress{UserID: user.ID, Username: user.Username, TrainerName: user.TrainerName}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("badges asc").Find(&p.Records).Error; err != nil {
		return Progress{}, err
	}
	if n := len(p.Records); n > 0 {
		p.Latest = &p.Records[n-1]
	}
	return p, nil
}

// Latest returns every trainer's highest-badge record, most badges first and
// the faster play time first among equals.
func (s *Store) Latest(ctx context.Context) ([]Summary, error) {
	db := s.db.WithContext(ctx)
	var recs []models.BadgeRecord
	if err := db.Order("user_id, badges desc").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := latestPerUser(recs)
	if len(out) == 0 {
		return out, nil
	}
	ids := make([]uint, len(out))
	for i, sum := range out {
		ids[i] = sum.UserID
	}
	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range out {
		if u, ok := byID[out[i].UserID]; ok {
			out[i].Username = u.Username
			if u.TrainerName != "" {
				out[i].TrainerName = u.TrainerName
			}
		}
	}
	SortSummaries(out)
	return out, nil
}

// latestPerUser keeps the highest badge count of every user.
func latestPerUser(recs []models.BadgeRecord) []Summary {
	best := make(map[uint]models.BadgeRecord)
	for _, r := range recs {
		if cur, ok := best[r.UserID]; !ok || r.Badges > cur.Badges {
			best[r.UserID] = r
		}
	}
	out := make([]Summary, 0, len(best))
	for _, r := range best {
		out = append(out, Summary{
			UserID:      r.UserID,
			TrainerName: r.TrainerName,
			Badges:      r.Badges,
			Time:        r.Time,
			PlayMinutes: r.PlayMinutes,
			Pokedex:     r.Pokedex,
			PostedAt:    r.PostedAt,
		})
	}
	return out
}

// SortSummaries orders by badges descending, then play time ascending.
func SortSummaries(s []Summary) {
	sort.SliceStable(s, func(i, j int) bool {
		a, b := s[i], s[j]
		if a.Badges != b.Badges {
			return a.Badges > b.Badges
		}
		if a.PlayMinutes != b.PlayMinutes {
			return a.PlayMinutes < b.PlayMinutes
		}
		if a.TrainerName != b.TrainerName {
			return a.TrainerName < b.TrainerName
		}
		return a.UserID < b.UserID
	})
}

// DeleteRecord removes one record. Admin only.
func (s *Store) DeleteRecord(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.BadgeRecord{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrUserNotFound)
}
