package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"moodtracker/internal/errors"
	"moodtracker/internal/model"
	"moodtracker/internal/repository"
)

// MoodOverview is a patient's full history plus today's entry, if any.
type MoodOverview struct {
	Moods        []model.Mood
	TodayTracked bool
	TodayMood    *model.Mood
}

// MoodService manages a patient's daily mood entries. "Today" is always the server's UTC day.
type MoodService interface {
	Config() model.MoodConfig
	// Today returns nil without error when nothing is tracked today.
	Today(ctx context.Context, userID uuid.UUID) (*model.Mood, error)
	Create(ctx context.Context, userID uuid.UUID, rate int) (*model.Mood, error)
	Update(ctx context.Context, userID uuid.UUID, rate int) (*model.Mood, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]model.Mood, error)
	Overview(ctx context.Context, userID uuid.UUID) (*MoodOverview, error)
	Average(ctx context.Context, userID uuid.UUID) (model.MoodScore, error)
}

type moodService struct {
	repo repository.MoodRepository
	log  logrus.FieldLogger
	now  func() time.Time
}

// NewMoodService creates a mood service. A nil now uses time.Now.
func NewMoodService(repo repository.MoodRepository, log logrus.FieldLogger, now func() time.Time) MoodService {
	if now == nil {
		now = time.Now
	}
	return &moodService{repo: repo, log: log, now: now}
}

func (s *moodService) today() string {
	return model.DateOf(s.now())
}

func (s *moodService) Config() model.MoodConfig {
	return model.DefaultMoodConfig()
}

func (s *moodService) Today(ctx context.Context, userID uuid.UUID) (*model.Mood, error) {
	mood, err := s.repo.FindByUserAndDate(ctx, userID, s.today())
	if stderrors.Is(err, errors.ErrMoodNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find today's mood: %w", err)
	}
	return mood, nil
}

// Create records today's mood. A second entry for the same day is rejected by the storage layer.
func (s *moodService) Create(ctx context.Context, userID uuid.UUID, rate int) (*model.Mood, error) {
	if err := model.ValidateRate(rate); err != nil {
		return nil, err
	}

	mood := &model.Mood{
		ID:     uuid.New(),
		UserID: userID,
		Rate:   rate,
		Date:   s.today(),
	}
	if err := s.repo.Create(ctx, mood); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "date": mood.Date}).Debug("mood tracked")
	return mood, nil
}

func (s *moodService) Update(ctx context.Context, userID uuid.UUID, rate int) (*model.Mood, error) {
	if err := model.ValidateRate(rate); err != nil {
		return nil, err
	}

	var updated *model.Mood
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.MoodRepository) error {
		mood, err := tx.FindByUserAndDateForUpdate(ctx, userID, s.today())
		if err != nil {
			return err
		}
		if err := tx.UpdateRate(ctx, mood, rate); err != nil {
			return err
		}
		updated = mood
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *moodService) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.repo.DeleteByUserAndDate(ctx, userID, s.today())
}

func (s *moodService) List(ctx context.Context, userID uuid.UUID) ([]model.Mood, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *moodService) Overview(ctx context.Context, userID uuid.UUID) (*MoodOverview, error) {
	moods, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	overview := &MoodOverview{Moods: moods}
	today := s.today()
	for i := range moods {
		if moods[i].Date == today {
			overview.TodayTracked = true
			overview.TodayMood = &moods[i]
			break
		}
	}
	return overview, nil
}

func (s *moodService) Average(ctx context.Context, userID uuid.UUID) (model.MoodScore, error) {
	return s.repo.AverageScore(ctx, userID)
}
