package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

const bcryptCost = 12

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

// User is a doctor or a patient. DoctorID is only meaningful for patients; nil means unassigned.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Name         string     `json:"name" gorm:"size:255;not null;index"`
	Role         Role       `json:"role" gorm:"type:varchar(20);not null;default:'patient';index"`
	DoctorID     *uuid.UUID `json:"doctorId" gorm:"type:char(36);index"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// Relations
	Doctor *User `json:"-" gorm:"foreignKey:DoctorID;constraint:OnDelete:SET NULL"`
}

// NewUser builds a user with a freshly hashed password. Callers persist the result themselves.
func NewUser(email, password, name string, role Role) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	u := &User{
		ID:    uuid.New(),
		Email: email,
		Name:  name,
		Role:  role,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored credential with a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares candidate against the stored hash.
func (u *User) CheckPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate)) == nil
}

func (u *User) IsPatient() bool { return u.Role == RolePatient }

func (u *User) IsDoctor() bool { return u.Role == RoleDoctor }

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
