package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"moodtracker/internal/model"
	"moodtracker/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ListPatients(ctx context.Context, doctorID *uuid.UUID) ([]model.User, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) FindPatientForUpdate(ctx context.Context, id uuid.UUID, doctorID *uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateDoctorLink(ctx context.Context, patientID uuid.UUID, doctorID *uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, patientID, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// WithTransaction runs fn against the mock itself.
func (m *MockUserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.UserRepository) error) error {
	if err := m.Called(ctx).Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

// MockMoodRepository is a mock implementation of MoodRepository.
type MockMoodRepository struct {
	mock.Mock
}

func (m *MockMoodRepository) Create(ctx context.Context, mood *model.Mood) error {
	return m.Called(ctx, mood).Error(0)
}

func (m *MockMoodRepository) CreateBatch(ctx context.Context, moods []model.Mood) error {
	return m.Called(ctx, moods).Error(0)
}

func (m *MockMoodRepository) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*model.Mood, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mood), args.Error(1)
}

func (m *MockMoodRepository) FindByUserAndDateForUpdate(ctx context.Context, userID uuid.UUID, date string) (*model.Mood, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mood), args.Error(1)
}

func (m *MockMoodRepository) UpdateRate(ctx context.Context, mood *model.Mood, rate int) error {
	args := m.Called(ctx, mood, rate)
	if args.Error(0) == nil {
		mood.Rate = rate
	}
	return args.Error(0)
}

func (m *MockMoodRepository) DeleteByUserAndDate(ctx context.Context, userID uuid.UUID, date string) error {
	return m.Called(ctx, userID, date).Error(0)
}

func (m *MockMoodRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Mood, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Mood), args.Error(1)
}

func (m *MockMoodRepository) AverageScore(ctx context.Context, userID uuid.UUID) (model.MoodScore, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.MoodScore), args.Error(1)
}

func (m *MockMoodRepository) ScoresByUser(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]model.MoodScore, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]model.MoodScore), args.Error(1)
}

func (m *MockMoodRepository) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// WithTransaction runs fn against the mock itself.
func (m *MockMoodRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.MoodRepository) error) error {
	if err := m.Called(ctx).Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// nopInvalidator satisfies UserInvalidator and records calls.
type nopInvalidator struct {
	mu          sync.Mutex
	invalidated []uuid.UUID
}

func (n *nopInvalidator) InvalidateUser(_ context.Context, id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invalidated = append(n.invalidated, id)
}

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

func floatPtr(v float64) *float64 { return &v }
