package progress

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	"trainercard/models"
)

func hashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// IssueRefreshToken creates a random token for userID and stores its hash.
// The raw token is returned once and never stored.
func (s *Store) IssueRefreshToken(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	return issueRefreshToken(s.db.WithContext(ctx), userID, ttl)
}

func issueRefreshToken(db *gorm.DB, userID uint, ttl time.Duration) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	raw := hex.EncodeToString(b)
	rt := models.RefreshToken{UserID: userID, TokenHash: hashToken(raw), ExpiresAt: time.Now().Add(ttl)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return raw, nil
}

// RotateRefreshToken revokes raw and issues its replacement.
func (s *Store) RotateRefreshToken(ctx context.Context, raw string, ttl time.Duration) (models.User, string, error) {
	var (
		user models.User
		next string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rt models.RefreshToken
		if err := tx.Where("token_hash = ?", hashToken(raw)).First(&rt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if !rt.Usable(time.Now()) {
			return ErrInvalidToken
		}
		res := tx.Model(&models.RefreshToken{}).Where("id = ? AND revoked = ?", rt.ID, false).Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost a race with a concurrent rotation
			return ErrInvalidToken
		}
		if err := tx.Preload("Role").First(&user, rt.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		var err error
		next, err = issueRefreshToken(tx, rt.UserID, ttl)
		return err
	})
	if err != nil {
		return models.User{}, "", err
	}
	return user, next, nil
}

// RevokeRefreshToken marks raw as unusable.
func (s *Store) RevokeRefreshToken(ctx context.Context, raw string) error {
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).Where("token_hash = ?", hashToken(raw)).Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidToken
	}
	return nil
}
