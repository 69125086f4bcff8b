package service

import (
	"sort"

	"github.com/google/uuid"

	"moodtracker/internal/model"
)

// RankPatients attaches mood scores and orders patients from lowest to highest score.
// Patients without entries sort after every scored patient; ties keep input order.
func RankPatients(patients []model.User, scores map[uuid.UUID]model.MoodScore) []model.RankedPatient {
	ranked := withScores(patients, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].MoodScore, ranked[j].MoodScore
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return ranked
}

// withScores keeps input order.
func withScores(patients []model.User, scores map[uuid.UUID]model.MoodScore) []model.RankedPatient {
	ranked := make([]model.RankedPatient, 0, len(patients))
	for _, p := range patients {
		score := scores[p.ID]
		ranked = append(ranked, model.RankedPatient{
			User:      p,
			MoodScore: score.Score,
			MoodCount: score.Count,
		})
	}
	return ranked
}
