package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"trainercard/models"
	"trainercard/pkg/progress"
)

const (
	accessTokenTTL     = 24 * time.Hour
	refreshedAccessTTL = 15 * time.Minute
	refreshTokenTTL    = 30 * 24 * time.Hour
	minPasswordLength  = 6
	maxUsernameLength  = 64
)

var errInvalidCredentials = errors.New("invalid credentials")

// RegisterUser creates a regular account.
func RegisterUser(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username required")
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("username too long (max %d)", maxUsernameLength)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password too short (min %d)", minPasswordLength)
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = store.CreateUser(ctx, username, hashedPassword, models.RoleUser)
	return err
}

func Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := store.UserByName(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, progress.ErrUserNotFound) {
			return models.User{}, errInvalidCredentials
		}
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, errInvalidCredentials
	}
	return user, nil
}

// accessToken signs an HS256 token carrying the user's id, name and role.
func accessToken(user models.User, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":      user.ID,
		"username": user.Username,
		"role":     user.Role.Name,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(jwtSecret)
}
