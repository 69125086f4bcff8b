package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"moodtracker/internal/model"
	"moodtracker/internal/repository"
)

const (
	doctorPassword  = "doctor123"
	patientPassword = "patient123"
)

type demoUser struct {
	email string
	name  string
}

var demoDoctors = []demoUser{
	{email: "doctor@example.com", name: "Dr. John Smith"},
	{email: "doctor2@example.com", name: "Dr. Sarah Johnson"},
}

var demoPatients = []demoUser{
	{email: "patient@example.com", name: "Jane Doe"},
	{email: "patient2@example.com", name: "Michael Brown"},
	{email: "patient3@example.com", name: "Emily Davis"},
	{email: "patient4@example.com", name: "David Wilson"},
	{email: "patient5@example.com", name: "Lisa Anderson"},
}

type seeder struct {
	users repository.UserRepository
	moods repository.MoodRepository
	log   logrus.FieldLogger
	now   func() time.Time
	rng   *rand.Rand
}

func newSeeder(users repository.UserRepository, moods repository.MoodRepository, log logrus.FieldLogger) *seeder {
	return &seeder{
		users: users,
		moods: moods,
		log:   log,
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *seeder) all(ctx context.Context, days int) error {
	if err := s.clear(ctx); err != nil {
		return err
	}
	if err := s.seedUsers(ctx); err != nil {
		return err
	}
	return s.seedMoods(ctx, days)
}

// clear removes moods before users because of the foreign key.
func (s *seeder) clear(ctx context.Context) error {
	if err := s.moods.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear moods: %w", err)
	}
	if err := s.users.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	s.log.Info("Tables cleared")
	return nil
}

func (s *seeder) seedUsers(ctx context.Context) error {
	create := func(u demoUser, password string, role model.Role) error {
		user, err := model.NewUser(u.email, password, u.name, role)
		if err != nil {
			return err
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return nil
	}

	for _, d := range demoDoctors {
		if err := create(d, doctorPassword, model.RoleDoctor); err != nil {
			return err
		}
	}
	for _, p := range demoPatients {
		if err := create(p, patientPassword, model.RolePatient); err != nil {
			return err
		}
	}
	s.log.WithField("count", len(demoDoctors)+len(demoPatients)).Info("Users seeded")
	return nil
}

func (s *seeder) seedMoods(ctx context.Context, days int) error {
	patients, err := s.users.ListPatients(ctx, nil)
	if err != nil {
		return err
	}
	if len(patients) == 0 {
		return fmt.Errorf("no unassigned patients found, run seed users first")
	}

	if err := s.moods.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear moods: %w", err)
	}

	var all []model.Mood
	for _, p := range patients {
		all = append(all, randomMoods(p.ID, s.now(), days, s.rng)...)
	}
	if err := s.moods.CreateBatch(ctx, all); err != nil {
		return fmt.Errorf("insert moods: %w", err)
	}
	s.log.WithFields(logrus.Fields{"moods": len(all), "patients": len(patients)}).Info("Moods seeded")
	return nil
}

// randomMoods returns one mood per day for the days ending today, oldest first.
func randomMoods(userID uuid.UUID, now time.Time, days int, rng *rand.Rand) []model.Mood {
	moods := make([]model.Mood, 0, days)
	for i := days - 1; i >= 0; i-- {
		moods = append(moods, model.Mood{
			UserID: userID,
			Rate:   model.RateMin + rng.Intn(model.RateMax-model.RateMin+1),
			Date:   model.DateOf(now.AddDate(0, 0, -i)),
		})
	}
	return moods
}
