package models

import "time"

// Outcomes stored on ProcessedImage. Failure outcomes use the failure kind
// names ("load", "not_a_card", "incomplete").
const (
	OutcomeRecorded = "recorded"
	OutcomeStale    = "stale" // recognized, but an equal or newer card was already recorded
	OutcomeError    = "error"
)

// ProcessedImage remembers image bytes that were already handled, by SHA-256,
// so the same screenshot is never recognized twice. Failed images are kept
// with their reason for admin review.
type ProcessedImage struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	Digest    string `gorm:"size:64;not null;uniqueIndex"`
	UserID    *uint  `gorm:"index"`
	FileName  string `gorm:"size:255"`
	StorePath string `gorm:"size:512"`
	Outcome   string `gorm:"size:32;not null;index"`
	Reason    string `gorm:"size:255"`
}

// Failed reports whether recognition did not produce a card.
func (p ProcessedImage) Failed() bool {
	return p.Outcome != OutcomeRecorded && p.Outcome != OutcomeStale
}
