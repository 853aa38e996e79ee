package models

import (
	"time"
)

// Role names seeded on startup.
const (
	RoleAdministrator = "administrator"
	RoleUser          = "user"
)

type Role struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:32;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
}

// User is an account that posts trainer cards. TrainerName follows the most
// recently recorded card.
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time    `gorm:"index"`
	Username       string        `gorm:"size:255;not null;unique"`
	HashedPassword []byte        `gorm:"not null" json:"-"`
	TrainerName    string        `gorm:"size:64"`
	RoleID         *uint         `gorm:"index"`
	Role           Role          `gorm:"foreignKey:RoleID;references:ID" json:"-"`
	Records        []BadgeRecord `json:"-"`
}
