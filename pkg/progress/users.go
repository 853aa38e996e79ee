package progress

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"trainercard/models"
)

// CreateUser stores a new account with the given role.
func (s *Store) CreateUser(ctx context.Context, username string, hashedPassword []byte, role string) (models.User, error) {
	db := s.db.WithContext(ctx)
	var r models.Role
	if err := db.Where(models.Role{Name: role}).FirstOrCreate(&r).Error; err != nil {
		return models.User{}, fmt.Errorf("ensure role %q: %w", role, err)
	}
	user := models.User{Username: username, HashedPassword: hashedPassword, RoleID: &r.ID}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}
	user.Role = r
	return user, nil
}

// UserByName loads an account and its role.
func (s *Store) UserByName(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (s *Store) UserByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SetPassword replaces the user's password hash and revokes every refresh
// token issued to them.
func (s *Store) SetPassword(ctx context.Context, username string, hashedPassword []byte) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := tx.Model(&user).Update("hashed_password", hashedPassword).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND revoked = ?", user.ID, false).
			Update("revoked", true).Error
	})
}
