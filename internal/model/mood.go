package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"moodtracker/internal/errors"
)

const (
	RateMin = 1
	RateMax = 10

	// DateLayout is the calendar day format stored in moods.date.
	DateLayout = "2006-01-02"
)

// Mood is a single daily rating. (UserID, Date) is unique.
type Mood struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:char(36);not null;uniqueIndex:idx_moods_user_date,priority:1"`
	Rate      int       `json:"rate" gorm:"not null"`
	Date      string    `json:"date" gorm:"type:char(10);not null;uniqueIndex:idx_moods_user_date,priority:2"`
	CreatedAt time.Time `json:"createdAt"`

	// Relations
	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (m *Mood) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// RateBounds is the inclusive range accepted for a mood rate.
type RateBounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// MoodConfig is the public, static mood configuration.
type MoodConfig struct {
	Rate RateBounds `json:"rate"`
}

// DefaultMoodConfig returns the rate bounds served by the config endpoint.
func DefaultMoodConfig() MoodConfig {
	return MoodConfig{Rate: RateBounds{Min: RateMin, Max: RateMax}}
}

// DateOf returns the UTC calendar day of t in DateLayout.
func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ValidateRate checks that rate lies within [RateMin, RateMax].
func ValidateRate(rate int) error {
	if rate < RateMin || rate > RateMax {
		return errors.ErrInvalidRate
	}
	return nil
}

// ParseRate converts a decoded JSON value into a rate. Only JSON numbers with an
// integral value inside the bounds are accepted.
func ParseRate(v interface{}) (int, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	default:
		return 0, errors.ErrInvalidRate
	}
	if math.IsNaN(f) || f != math.Trunc(f) {
		return 0, errors.ErrInvalidRate
	}
	if f < RateMin || f > RateMax {
		return 0, errors.ErrInvalidRate
	}
	return int(f), nil
}
