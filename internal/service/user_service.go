package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"moodtracker/internal/cache"
	"moodtracker/internal/model"
	"moodtracker/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes cached identity lookups.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	InvalidateUser(ctx context.Context, id uuid.UUID)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache. A nil cache disables caching.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) InvalidateUser(ctx context.Context, id uuid.UUID) {
	_ = s.cache.Delete(ctx, s.cacheKey(id))
}
