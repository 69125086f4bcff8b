package repository

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"moodtracker/internal/errors"
	"moodtracker/internal/model"
)

// MoodRepository defines mood ledger persistence operations.
type MoodRepository interface {
	// Create inserts a mood. The (user_id, date) unique index rejects a second entry for the day.
	Create(ctx context.Context, mood *model.Mood) error
	CreateBatch(ctx context.Context, moods []model.Mood) error
	FindByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*model.Mood, error)
	FindByUserAndDateForUpdate(ctx context.Context, userID uuid.UUID, date string) (*model.Mood, error)
	UpdateRate(ctx context.Context, mood *model.Mood, rate int) error
	DeleteByUserAndDate(ctx context.Context, userID uuid.UUID, date string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Mood, error)
	AverageScore(ctx context.Context, userID uuid.UUID) (model.MoodScore, error)
	// ScoresByUser aggregates every given user in one query. Users without moods are absent from the result.
	ScoresByUser(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]model.MoodScore, error)
	DeleteAll(ctx context.Context) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo MoodRepository) error) error
}

type moodRepository struct {
	db *gorm.DB
}

// NewMoodRepository creates a new mood repository.
func NewMoodRepository(db *gorm.DB) MoodRepository {
	return &moodRepository{db: db}
}

// Create creates a new mood record.
func (r *moodRepository) Create(ctx context.Context, mood *model.Mood) error {
	if err := r.db.WithContext(ctx).Create(mood).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrDuplicateEntry
		}
		return fmt.Errorf("create mood: %w", err)
	}
	return nil
}

// CreateBatch inserts moods in chunks.
func (r *moodRepository) CreateBatch(ctx context.Context, moods []model.Mood) error {
	if len(moods) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(moods, 100).Error
}

// FindByUserAndDate finds the mood a user recorded on date.
func (r *moodRepository) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*model.Mood, error) {
	var mood model.Mood
	if err := r.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&mood).Error; err != nil {
		return nil, notFound(err, errors.ErrMoodNotFound)
	}
	return &mood, nil
}

// FindByUserAndDateForUpdate is FindByUserAndDate with a row-level lock.
func (r *moodRepository) FindByUserAndDateForUpdate(ctx context.Context, userID uuid.UUID, date string) (*model.Mood, error) {
	var mood model.Mood
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND date = ?", userID, date).First(&mood).Error; err != nil {
		return nil, notFound(err, errors.ErrMoodNotFound)
	}
	return &mood, nil
}

// UpdateRate writes a new rate for an existing mood and reflects it on mood.
func (r *moodRepository) UpdateRate(ctx context.Context, mood *model.Mood, rate int) error {
	if err := r.db.WithContext(ctx).Model(mood).Update("rate", rate).Error; err != nil {
		return fmt.Errorf("update mood rate: %w", err)
	}
	mood.Rate = rate
	return nil
}

// DeleteByUserAndDate removes the mood for date, failing with ErrMoodNotFound when nothing was deleted.
func (r *moodRepository) DeleteByUserAndDate(ctx context.Context, userID uuid.UUID, date string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).Delete(&model.Mood{})
	if res.Error != nil {
		return fmt.Errorf("delete mood: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.ErrMoodNotFound
	}
	return nil
}

// ListByUser returns a user's moods, newest day first.
func (r *moodRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Mood, error) {
	var moods []model.Mood
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC").Find(&moods).Error; err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	return moods, nil
}

func (r *moodRepository) AverageScore(ctx context.Context, userID uuid.UUID) (model.MoodScore, error) {
	var row model.MoodAggregate
	err := r.db.WithContext(ctx).Model(&model.Mood{}).
		Select("AVG(rate) AS avg_score, COUNT(*) AS mood_count").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return model.MoodScore{}, fmt.Errorf("average mood: %w", err)
	}
	return model.NewMoodScore(row.AvgScore, row.MoodCount), nil
}

func (r *moodRepository) ScoresByUser(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]model.MoodScore, error) {
	scores := make(map[uuid.UUID]model.MoodScore, len(userIDs))
	if len(userIDs) == 0 {
		return scores, nil
	}

	var rows []model.MoodAggregate
	err := r.db.WithContext(ctx).Model(&model.Mood{}).
		Select("user_id, AVG(rate) AS avg_score, COUNT(*) AS mood_count").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate moods: %w", err)
	}
	for _, row := range rows {
		scores[row.UserID] = model.NewMoodScore(row.AvgScore, row.MoodCount)
	}
	return scores, nil
}

func (r *moodRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Mood{}).Error
}

// WithTransaction executes a function within a database transaction.
func (r *moodRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo MoodRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &moodRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
