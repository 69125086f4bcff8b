package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"moodtracker/internal/errors"
	"moodtracker/internal/model"
	"moodtracker/internal/repository"
)

// memUserRepo is an in-memory UserRepository. WithTransaction holds a global
// lock, standing in for the row lock taken by FindPatientForUpdate.
type memUserRepo struct {
	mu    *sync.Mutex
	users map[uuid.UUID]*model.User
	inTx  bool
}

func newMemUserRepo(users ...*model.User) *memUserRepo {
	r := &memUserRepo{mu: &sync.Mutex{}, users: map[uuid.UUID]*model.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	defer r.lock()()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	defer r.lock()()
	u, ok := r.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	defer r.lock()()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (r *memUserRepo) ListPatients(_ context.Context, doctorID *uuid.UUID) ([]model.User, error) {
	defer r.lock()()
	var out []model.User
	for _, u := range r.users {
		if !u.IsPatient() {
			continue
		}
		if (doctorID == nil && u.DoctorID == nil) || (doctorID != nil && u.DoctorID != nil && *u.DoctorID == *doctorID) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *memUserRepo) FindPatientForUpdate(_ context.Context, id uuid.UUID, doctorID *uuid.UUID) (*model.User, error) {
	defer r.lock()()
	u, ok := r.users[id]
	if !ok || !u.IsPatient() {
		return nil, errors.ErrPatientNotFound
	}
	if doctorID != nil && (u.DoctorID == nil || *u.DoctorID != *doctorID) {
		return nil, errors.ErrPatientNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) UpdateDoctorLink(_ context.Context, patientID uuid.UUID, doctorID *uuid.UUID) (*model.User, error) {
	defer r.lock()()
	u, ok := r.users[patientID]
	if !ok {
		return nil, errors.ErrPatientNotFound
	}
	if doctorID == nil {
		u.DoctorID = nil
	} else {
		id := *doctorID
		u.DoctorID = &id
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) DeleteAll(_ context.Context) error {
	defer r.lock()()
	r.users = map[uuid.UUID]*model.User{}
	return nil
}

func (r *memUserRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.UserRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, &memUserRepo{mu: r.mu, users: r.users, inTx: true})
}

// memMoodRepo is an in-memory MoodRepository enforcing one entry per user and day.
type memMoodRepo struct {
	mu    sync.Mutex
	moods map[string]*model.Mood
}

func newMemMoodRepo() *memMoodRepo {
	return &memMoodRepo{moods: map[string]*model.Mood{}}
}

func moodKey(userID uuid.UUID, date string) string { return userID.String() + "/" + date }

func (r *memMoodRepo) Create(_ context.Context, mood *model.Mood) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := moodKey(mood.UserID, mood.Date)
	if _, exists := r.moods[key]; exists {
		return errors.ErrDuplicateEntry
	}
	cp := *mood
	r.moods[key] = &cp
	return nil
}

func (r *memMoodRepo) CreateBatch(ctx context.Context, moods []model.Mood) error {
	for i := range moods {
		if err := r.Create(ctx, &moods[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *memMoodRepo) FindByUserAndDate(_ context.Context, userID uuid.UUID, date string) (*model.Mood, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.moods[moodKey(userID, date)]
	if !ok {
		return nil, errors.ErrMoodNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMoodRepo) FindByUserAndDateForUpdate(ctx context.Context, userID uuid.UUID, date string) (*model.Mood, error) {
	return r.FindByUserAndDate(ctx, userID, date)
}

func (r *memMoodRepo) UpdateRate(_ context.Context, mood *model.Mood, rate int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.moods[moodKey(mood.UserID, mood.Date)]
	if !ok {
		return errors.ErrMoodNotFound
	}
	stored.Rate = rate
	mood.Rate = rate
	return nil
}

func (r *memMoodRepo) DeleteByUserAndDate(_ context.Context, userID uuid.UUID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := moodKey(userID, date)
	if _, ok := r.moods[key]; !ok {
		return errors.ErrMoodNotFound
	}
	delete(r.moods, key)
	return nil
}

func (r *memMoodRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Mood, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Mood{}
	for _, m := range r.moods {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (r *memMoodRepo) AverageScore(ctx context.Context, userID uuid.UUID) (model.MoodScore, error) {
	scores, err := r.ScoresByUser(ctx, []uuid.UUID{userID})
	if err != nil {
		return model.MoodScore{}, err
	}
	return scores[userID], nil
}

func (r *memMoodRepo) ScoresByUser(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]model.MoodScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := map[uuid.UUID]int{}
	counts := map[uuid.UUID]int64{}
	for _, m := range r.moods {
		sums[m.UserID] += m.Rate
		counts[m.UserID]++
	}
	out := map[uuid.UUID]model.MoodScore{}
	for _, id := range userIDs {
		if counts[id] == 0 {
			continue
		}
		avg := float64(sums[id]) / float64(counts[id])
		out[id] = model.NewMoodScore(&avg, counts[id])
	}
	return out, nil
}

func (r *memMoodRepo) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moods = map[string]*model.Mood{}
	return nil
}

func (r *memMoodRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.MoodRepository) error) error {
	return fn(ctx, r)
}
