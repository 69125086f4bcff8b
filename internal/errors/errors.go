package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when a request carries no valid identity.
	ErrUnauthenticated = errors.New("Invalid token")
	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrInvalidRefreshToken is returned when a refresh token is unknown, revoked or expired.
	ErrInvalidRefreshToken = errors.New("Invalid refresh token")
	// ErrForbidden is returned when the caller's role does not permit the operation.
	ErrForbidden = errors.New("Access denied")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("User not found")
	// ErrPatientNotFound is returned when the target is missing or is not a patient.
	ErrPatientNotFound = errors.New("Patient not found")
	// ErrPatientNotAssigned is returned when the patient is not assigned to the calling doctor.
	ErrPatientNotAssigned = errors.New("Patient not found or not assigned to you")
	// ErrMoodNotFound is returned when no mood exists for the current day.
	ErrMoodNotFound = errors.New("No mood tracked for today")
	// ErrInvalidRate is returned when a rate is not an integer in range.
	ErrInvalidRate = errors.New("Rate must be an integer between 1 and 10")
	// ErrDuplicateEntry is returned when a mood already exists for the current day.
	ErrDuplicateEntry = errors.New("Mood already tracked for today. Use update instead.")
	// ErrAlreadyAssignedElsewhere is returned when another doctor owns the patient.
	ErrAlreadyAssignedElsewhere = errors.New("Patient is already assigned to another doctor")
	// ErrAlreadyAssignedToYou is returned when the calling doctor already owns the patient.
	ErrAlreadyAssignedToYou = errors.New("Patient is already assigned to you")
	// ErrValidation is returned when a request body fails validation.
	ErrValidation = errors.New("validation failed")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Message: e.Message,
		Code:    e.Code,
	}
}

type mapping struct {
	target error
	status int
	code   string
}

var mappings = []mapping{
	{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrPatientNotFound, http.StatusNotFound, "PATIENT_NOT_FOUND"},
	{ErrPatientNotAssigned, http.StatusNotFound, "PATIENT_NOT_ASSIGNED"},
	{ErrMoodNotFound, http.StatusNotFound, "MOOD_NOT_FOUND"},
	{ErrInvalidRate, http.StatusBadRequest, "INVALID_RATE"},
	{ErrDuplicateEntry, http.StatusBadRequest, "DUPLICATE_ENTRY"},
	{ErrAlreadyAssignedElsewhere, http.StatusBadRequest, "ALREADY_ASSIGNED_ELSEWHERE"},
	{ErrAlreadyAssignedToYou, http.StatusBadRequest, "ALREADY_ASSIGNED_TO_YOU"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are matched with errors.Is.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return NewHTTPError(m.status, m.target.Error(), m.code)
		}
	}
	if errors.Is(err, ErrValidation) {
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	}
	return NewHTTPError(http.StatusInternalServerError, "Server error", "INTERNAL_ERROR")
}

// IsInternal reports whether err maps to a 500.
func IsInternal(err error) bool {
	return MapErrorToHTTP(err).StatusCode == http.StatusInternalServerError
}

// Validation wraps a request-specific message as a validation error.
func Validation(message string) error {
	return &validationError{message: message}
}

type validationError struct{ message string }

func (e *validationError) Error() string { return e.message }

func (e *validationError) Unwrap() error { return ErrValidation }
