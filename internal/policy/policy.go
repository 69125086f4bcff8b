// Package policy holds the role and ownership predicates that gate every protected operation.
package policy

import (
	"github.com/google/uuid"

	"moodtracker/internal/errors"
	"moodtracker/internal/model"
)

// Allow reports whether role is one of permitted.
func Allow(role model.Role, permitted ...model.Role) bool {
	for _, p := range permitted {
		if role == p {
			return true
		}
	}
	return false
}

// RequireRole returns ErrForbidden unless role is one of permitted.
func RequireRole(role model.Role, permitted ...model.Role) error {
	if !Allow(role, permitted...) {
		return errors.ErrForbidden
	}
	return nil
}

// OwnsPatient reports whether patient is a patient currently assigned to doctorID.
func OwnsPatient(doctorID uuid.UUID, patient *model.User) bool {
	if patient == nil || !patient.IsPatient() || patient.DoctorID == nil {
		return false
	}
	return *patient.DoctorID == doctorID
}
