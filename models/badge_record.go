package models

import "time"

// BadgeRecord is the card a user posted at one badge count. There is at most
// one per (user, badges); a newer card at the same count replaces it.
type BadgeRecord struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_badges"`
	Badges      int       `gorm:"not null;uniqueIndex:idx_user_badges"`
	TrainerName string    `gorm:"size:64;not null"`
	Time        string    `gorm:"size:16;not null"` // H:MM
	PlayMinutes int       `gorm:"not null"`
	Pokedex     int       `gorm:"not null"`
	PostedAt    time.Time `gorm:"index;not null"`
	Source      string    `gorm:"size:255"` // upload name, file path or job id
}
