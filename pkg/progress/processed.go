package progress

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trainercard/models"
	"trainercard/pkg/card"
)

const maxReason = 255

// Digest identifies image bytes.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Outcome maps the result of recognizing and recording one image to the
// values stored on models.ProcessedImage.
func Outcome(written bool, err error) (outcome, reason string) {
	switch {
	case err == nil && written:
		return models.OutcomeRecorded, ""
	case err == nil:
		return models.OutcomeStale, ""
	}
	outcome = models.OutcomeError
	if k := card.KindOf(err); k != 0 {
		outcome = k.String()
	}
	reason = err.Error()
	if len(reason) > maxReason {
		reason = reason[:maxReason]
	}
	return outcome, reason
}

func (s *Store) IsProcessed(ctx context.Context, digest string) (bool, error) {
	var p models.ProcessedImage
	err := s.db.WithContext(ctx).Select("id").Where("digest = ?", digest).First(&p).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// MarkProcessed stores p unless its digest is already known.
func (s *Store) MarkProcessed(ctx context.Context, p models.ProcessedImage) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "digest"}}, DoNothing: true}).
		Create(&p).Error
}

// Failures lists the most recent images that did not produce a card.
func (s *Store) Failures(ctx context.Context, limit int) ([]models.ProcessedImage, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []models.ProcessedImage
	err := s.db.WithContext(ctx).
		Where("outcome NOT IN ?", []string{models.OutcomeRecorded, models.OutcomeStale}).
		Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}

// SetOutcome rewrites the outcome of an image that was processed again.
func (s *Store) SetOutcome(ctx context.Context, id uint, outcome, reason string) error {
	res := s.db.WithContext(ctx).Model(&models.ProcessedImage{}).Where("id = ?", id).
		Updates(map[string]any{"outcome": outcome, "reason": reason})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
