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

// UserRepository defines identity persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ListPatients returns patients of doctorID, or unassigned patients when doctorID is nil.
	ListPatients(ctx context.Context, doctorID *uuid.UUID) ([]model.User, error)
	// FindPatientForUpdate locks a patient row. A non-nil doctorID restricts the match to that doctor's patients.
	FindPatientForUpdate(ctx context.Context, id uuid.UUID, doctorID *uuid.UUID) (*model.User, error)
	UpdateDoctorLink(ctx context.Context, patientID uuid.UUID, doctorID *uuid.UUID) (*model.User, error)
	DeleteAll(ctx context.Context) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) ListPatients(ctx context.Context, doctorID *uuid.UUID) ([]model.User, error) {
	q := r.db.WithContext(ctx).Where("role = ?", model.RolePatient)
	if doctorID == nil {
		q = q.Where("doctor_id IS NULL")
	} else {
		q = q.Where("doctor_id = ?", *doctorID)
	}

	var users []model.User
	if err := q.Order("name ASC").Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return users, nil
}

func (r *userRepository) FindPatientForUpdate(ctx context.Context, id uuid.UUID, doctorID *uuid.UUID) (*model.User, error) {
	q := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND role = ?", id, model.RolePatient)
	if doctorID != nil {
		q = q.Where("doctor_id = ?", *doctorID)
	}

	var user model.User
	if err := q.First(&user).Error; err != nil {
		return nil, notFound(err, errors.ErrPatientNotFound)
	}
	return &user, nil
}

func (r *userRepository) UpdateDoctorLink(ctx context.Context, patientID uuid.UUID, doctorID *uuid.UUID) (*model.User, error) {
	var value interface{} = gorm.Expr("NULL")
	if doctorID != nil {
		value = *doctorID
	}

	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND role = ?", patientID, model.RolePatient).
		Update("doctor_id", value)
	if res.Error != nil {
		return nil, fmt.Errorf("update doctor link: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errors.ErrPatientNotFound
	}
	return r.FindByID(ctx, patientID)
}

func (r *userRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.User{}).Error
}

// WithTransaction executes a function within a database transaction.
func (r *userRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &userRepository{db: tx}
		return fn(ctx, txRepo)
	})
}

// notFound swaps gorm's record-not-found for a domain sentinel.
func notFound(err, sentinel error) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
