package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"moodtracker/internal/auth"
	"moodtracker/internal/errors"
	"moodtracker/internal/model"
	"moodtracker/internal/service"
)

type MockMoodService struct{ mock.Mock }

func (m *MockMoodService) Config() model.MoodConfig { return model.DefaultMoodConfig() }

func (m *MockMoodService) Today(ctx context.Context, userID uuid.UUID) (*model.Mood, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mood), args.Error(1)
}

func (m *MockMoodService) Create(ctx context.Context, userID uuid.UUID, rate int) (*model.Mood, error) {
	args := m.Called(ctx, userID, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mood), args.Error(1)
}

func (m *MockMoodService) Update(ctx context.Context, userID uuid.UUID, rate int) (*model.Mood, error) {
	args := m.Called(ctx, userID, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mood), args.Error(1)
}

func (m *MockMoodService) Delete(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockMoodService) List(ctx context.Context, userID uuid.UUID) ([]model.Mood, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Mood), args.Error(1)
}

func (m *MockMoodService) Overview(ctx context.Context, userID uuid.UUID) (*service.MoodOverview, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MoodOverview), args.Error(1)
}

func (m *MockMoodService) Average(ctx context.Context, userID uuid.UUID) (model.MoodScore, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.MoodScore), args.Error(1)
}

type MockAssignmentService struct{ mock.Mock }

func (m *MockAssignmentService) ListPatients(ctx context.Context, doctorID uuid.UUID, order service.PatientOrder) (*service.PatientList, error) {
	args := m.Called(ctx, doctorID, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PatientList), args.Error(1)
}

func (m *MockAssignmentService) Assign(ctx context.Context, doctorID, patientID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, doctorID, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAssignmentService) Unassign(ctx context.Context, doctorID, patientID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, doctorID, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAssignmentService) PatientMoods(ctx context.Context, doctorID, patientID uuid.UUID) (*model.User, []model.Mood, error) {
	args := m.Called(ctx, doctorID, patientID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.User), args.Get(1).([]model.Mood), args.Error(2)
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	return m.Called(ctx, refreshToken, access).Error(0)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) InvalidateUser(ctx context.Context, id uuid.UUID) {
	m.Called(ctx, id)
}

type testValidator struct{ v *validator.Validate }

func (tv testValidator) Validate(i interface{}) error { return tv.v.Struct(i) }

// newContext builds an echo context; a non-nil identity marks the request as authenticated.
func newContext(method, target, body string, identity *auth.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = testValidator{v: validator.New()}

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != nil {
		auth.WithIdentity(c, *identity)
	}
	return c, rec
}

func patientIdentity() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Role: model.RolePatient}
}

func doctorIdentity() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Role: model.RoleDoctor}
}

// requireFailure asserts err is an echo.HTTPError carrying the given status and message.
func requireFailure(t *testing.T, err error, status int, message string) errors.ErrorResponse {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T (%v)", err, err)
	require.Equal(t, status, he.Code)
	body, ok := he.Message.(errors.ErrorResponse)
	require.True(t, ok)
	require.Equal(t, message, body.Error)
	require.Equal(t, message, body.Message)
	return body
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
