package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoodScore is the aggregate of a user's mood entries. Score is nil when Count is zero.
type MoodScore struct {
	Score *float64
	Count int
}

// NewMoodScore rounds a raw SQL average to one decimal place.
func NewMoodScore(avg *float64, count int64) MoodScore {
	if avg == nil || count == 0 {
		return MoodScore{Count: int(count)}
	}
	rounded, _ := decimal.NewFromFloat(*avg).Round(1).Float64()
	return MoodScore{Score: &rounded, Count: int(count)}
}

// MoodAggregate is one row of the per-user AVG/COUNT query.
type MoodAggregate struct {
	UserID    uuid.UUID
	AvgScore  *float64
	MoodCount int64
}

// RankedPatient is a patient's public profile with its mood score attached.
type RankedPatient struct {
	User
	MoodScore *float64 `json:"moodScore"`
	MoodCount int      `json:"moodCount"`
}
