package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"moodtracker/internal/errors"
	"moodtracker/internal/model"
	"moodtracker/internal/policy"
	"moodtracker/internal/repository"
)

// PatientOrder selects how patient lists are sorted.
type PatientOrder string

const (
	OrderByScore PatientOrder = "score"
	OrderByName  PatientOrder = "name"
)

// ParsePatientOrder maps a query value to a PatientOrder. Empty means OrderByScore.
func ParsePatientOrder(v string) (PatientOrder, error) {
	switch PatientOrder(v) {
	case "", OrderByScore:
		return OrderByScore, nil
	case OrderByName:
		return OrderByName, nil
	default:
		return "", errors.Validation("sort must be one of: score, name")
	}
}

// PatientList is a doctor's view of the patient population.
type PatientList struct {
	MyPatients         []model.RankedPatient
	UnassignedPatients []model.RankedPatient
}

// UserInvalidator drops cached copies of a user.
type UserInvalidator interface {
	InvalidateUser(ctx context.Context, id uuid.UUID)
}

// AssignmentService manages the doctor to patient relation.
type AssignmentService interface {
	ListPatients(ctx context.Context, doctorID uuid.UUID, order PatientOrder) (*PatientList, error)
	Assign(ctx context.Context, doctorID, patientID uuid.UUID) (*model.User, error)
	Unassign(ctx context.Context, doctorID, patientID uuid.UUID) (*model.User, error)
	PatientMoods(ctx context.Context, doctorID, patientID uuid.UUID) (*model.User, []model.Mood, error)
}

type assignmentService struct {
	users repository.UserRepository
	moods repository.MoodRepository
	cache UserInvalidator
	log   logrus.FieldLogger
}

// NewAssignmentService creates a new assignment service.
func NewAssignmentService(users repository.UserRepository, moods repository.MoodRepository, cache UserInvalidator, log logrus.FieldLogger) AssignmentService {
	return &assignmentService{users: users, moods: moods, cache: cache, log: log}
}

// ListPatients returns the doctor's patients and the unassigned pool. Scores come from one fresh aggregate query.
func (s *assignmentService) ListPatients(ctx context.Context, doctorID uuid.UUID, order PatientOrder) (*PatientList, error) {
	mine, err := s.users.ListPatients(ctx, &doctorID)
	if err != nil {
		return nil, err
	}
	unassigned, err := s.users.ListPatients(ctx, nil)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(mine)+len(unassigned))
	for _, p := range mine {
		ids = append(ids, p.ID)
	}
	for _, p := range unassigned {
		ids = append(ids, p.ID)
	}

	scores, err := s.moods.ScoresByUser(ctx, ids)
	if err != nil {
		return nil, err
	}

	rank := RankPatients
	if order == OrderByName {
		rank = withScores
	}
	return &PatientList{
		MyPatients:         rank(mine, scores),
		UnassignedPatients: rank(unassigned, scores),
	}, nil
}

// Assign links an unassigned patient to doctorID. The patient row stays locked until the decision is written.
func (s *assignmentService) Assign(ctx context.Context, doctorID, patientID uuid.UUID) (*model.User, error) {
	var updated *model.User
	err := s.users.WithTransaction(ctx, func(ctx context.Context, tx repository.UserRepository) error {
		patient, err := tx.FindPatientForUpdate(ctx, patientID, nil)
		if err != nil {
			return err
		}

		if patient.DoctorID != nil {
			if *patient.DoctorID == doctorID {
				return errors.ErrAlreadyAssignedToYou
			}
			return errors.ErrAlreadyAssignedElsewhere
		}

		updated, err = tx.UpdateDoctorLink(ctx, patientID, &doctorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(ctx, patientID)
	s.log.WithFields(logrus.Fields{"doctor_id": doctorID, "patient_id": patientID}).Info("patient assigned")
	return updated, nil
}

// Unassign clears the link between doctorID and one of its patients.
func (s *assignmentService) Unassign(ctx context.Context, doctorID, patientID uuid.UUID) (*model.User, error) {
	var updated *model.User
	err := s.users.WithTransaction(ctx, func(ctx context.Context, tx repository.UserRepository) error {
		if _, err := tx.FindPatientForUpdate(ctx, patientID, &doctorID); err != nil {
			if stderrors.Is(err, errors.ErrPatientNotFound) {
				return errors.ErrPatientNotAssigned
			}
			return err
		}

		var err error
		updated, err = tx.UpdateDoctorLink(ctx, patientID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(ctx, patientID)
	s.log.WithFields(logrus.Fields{"doctor_id": doctorID, "patient_id": patientID}).Info("patient unassigned")
	return updated, nil
}

// PatientMoods returns the history of a patient currently assigned to doctorID.
func (s *assignmentService) PatientMoods(ctx context.Context, doctorID, patientID uuid.UUID) (*model.User, []model.Mood, error) {
	patient, err := s.users.FindByID(ctx, patientID)
	if stderrors.Is(err, errors.ErrUserNotFound) {
		return nil, nil, errors.ErrPatientNotAssigned
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find patient: %w", err)
	}
	if !policy.OwnsPatient(doctorID, patient) {
		return nil, nil, errors.ErrPatientNotAssigned
	}

	moods, err := s.moods.ListByUser(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}
	return patient, moods, nil
}
