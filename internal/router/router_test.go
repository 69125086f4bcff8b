package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodtracker/internal/auth"
	"moodtracker/internal/errors"
	"moodtracker/internal/handler"
	"moodtracker/internal/model"
	"moodtracker/internal/service"
)

type stubTokens struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (s *stubTokens) StoreRefreshToken(context.Context, string, uuid.UUID, time.Duration) error {
	return nil
}

func (s *stubTokens) GetRefreshToken(context.Context, string) (uuid.UUID, error) {
	return uuid.Nil, auth.ErrRefreshTokenNotFound
}

func (s *stubTokens) DeleteRefreshToken(context.Context, string) error { return nil }

func (s *stubTokens) BlacklistAccessToken(_ context.Context, tokenID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = true
	return nil
}

func (s *stubTokens) IsAccessTokenBlacklisted(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[tokenID], nil
}

type stubUsers map[uuid.UUID]*model.User

func (s stubUsers) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.ErrUserNotFound
}

func (s stubUsers) InvalidateUser(context.Context, uuid.UUID) {}

// stubMoods serves an empty history. Embedded interfaces panic if an unexpected method is hit.
type stubMoods struct{ service.MoodService }

func (stubMoods) Config() model.MoodConfig { return model.DefaultMoodConfig() }

func (stubMoods) Overview(context.Context, uuid.UUID) (*service.MoodOverview, error) {
	return &service.MoodOverview{}, nil
}

type stubAssignments struct{ service.AssignmentService }

func (stubAssignments) ListPatients(context.Context, uuid.UUID, service.PatientOrder) (*service.PatientList, error) {
	return &service.PatientList{}, nil
}

type stubAuth struct{ service.AuthService }

type testServer struct {
	e       *echo.Echo
	jwt     *auth.JWTService
	tokens  *stubTokens
	patient *model.User
	doctor  *model.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger, _ := test.NewNullLogger()

	patient := &model.User{ID: uuid.New(), Email: "patient@example.com", Name: "Jane Doe", Role: model.RolePatient}
	doctor := &model.User{ID: uuid.New(), Email: "doctor@example.com", Name: "Dr. Smith", Role: model.RoleDoctor}
	users := stubUsers{patient.ID: patient, doctor.ID: doctor}

	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	tokens := &stubTokens{revoked: map[string]bool{}}

	e := echo.New()
	Register(e, Handlers{
		Health: handler.NewHealthHandler(nil),
		Auth:   handler.NewAuthHandler(stubAuth{}, users, logger),
		Mood:   handler.NewMoodHandler(stubMoods{}, logger),
		Doctor: handler.NewDoctorHandler(stubAssignments{}, logger),
	}, auth.NewMiddleware(jwtSvc, tokens, users, logger), logger)

	return &testServer{e: e, jwt: jwtSvc, tokens: tokens, patient: patient, doctor: doctor}
}

func (s *testServer) token(t *testing.T, u *model.User) string {
	t.Helper()
	tok, err := s.jwt.GenerateAccessToken(u.ID, u.Role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRouter_PublicRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/moods/config", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"error":null,"config":{"rate":{"min":1,"max":10}}}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRouter_Authentication(t *testing.T) {
	s := newTestServer(t)
	ghost := &model.User{ID: uuid.New(), Role: model.RolePatient}

	tests := []struct {
		name    string
		token   string
		wantMsg string
	}{
		{name: "no token", token: "", wantMsg: "No token provided"},
		{name: "garbage token", token: "not-a-jwt", wantMsg: "Invalid token"},
		{name: "deleted user", token: s.token(t, ghost), wantMsg: "User not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodGet, "/api/moods", tt.token, "")
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantMsg, resp.Error)
			assert.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

func TestRouter_RefreshTokenRejectedAsAccess(t *testing.T) {
	s := newTestServer(t)
	_, refresh, err := s.jwt.GenerateRefreshToken(s.patient.ID, s.patient.Role)
	require.NoError(t, err)

	rec := s.do(http.MethodGet, "/api/moods", refresh, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RevokedToken(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, s.patient)
	claims, err := s.jwt.ValidateAccessToken(tok)
	require.NoError(t, err)
	require.NoError(t, s.tokens.BlacklistAccessToken(context.Background(), claims.ID, time.Minute))

	rec := s.do(http.MethodGet, "/api/moods", tok, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has been revoked", decodeError(t, rec).Error)
}

func TestRouter_RoleEnforcement(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		user       *model.User
		wantStatus int
	}{
		{name: "patient lists moods", method: http.MethodGet, path: "/api/moods", user: s.patient, wantStatus: http.StatusOK},
		{name: "doctor lists moods", method: http.MethodGet, path: "/api/moods", user: s.doctor, wantStatus: http.StatusForbidden},
		{name: "doctor creates mood", method: http.MethodPost, path: "/api/moods", user: s.doctor, wantStatus: http.StatusForbidden},
		{name: "doctor lists patients", method: http.MethodGet, path: "/api/doctor/patients", user: s.doctor, wantStatus: http.StatusOK},
		{name: "patient lists patients", method: http.MethodGet, path: "/api/doctor/patients", user: s.patient, wantStatus: http.StatusForbidden},
		{name: "patient assigns", method: http.MethodPost, path: "/api/doctor/patients/" + uuid.NewString() + "/assign", user: s.patient, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, s.token(t, tt.user), "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusForbidden {
				resp := decodeError(t, rec)
				assert.Equal(t, "Access denied", resp.Error)
				assert.Equal(t, "FORBIDDEN", resp.Code)
			}
		})
	}
}

func TestRouter_RoleReloadedFromStore(t *testing.T) {
	s := newTestServer(t)
	// Token claims say doctor but the stored user is a patient.
	tok, err := s.jwt.GenerateAccessToken(s.patient.ID, model.RoleDoctor)
	require.NoError(t, err)

	rec := s.do(http.MethodGet, "/api/doctor/patients", tok, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_NotFound(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/nope", "/api/nope", "/api/doctor/nope"} {
		t.Run(path, func(t *testing.T) {
			rec := s.do(http.MethodGet, path, "", "")
			require.Equal(t, http.StatusNotFound, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "Route not found", resp.Error)
			assert.Equal(t, "ROUTE_NOT_FOUND", resp.Code)
		})
	}
}

func TestToResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "domain error", err: errors.ErrMoodNotFound, wantStatus: http.StatusNotFound, wantCode: "MOOD_NOT_FOUND", wantMsg: "No mood tracked for today"},
		{name: "echo not found", err: echo.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "ROUTE_NOT_FOUND", wantMsg: "Route not found"},
		{name: "echo method", err: echo.ErrMethodNotAllowed, wantStatus: http.StatusMethodNotAllowed, wantCode: "METHOD_NOT_ALLOWED", wantMsg: "Method not allowed"},
		{name: "echo internal", err: echo.NewHTTPError(http.StatusInternalServerError, "boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR", wantMsg: "Server error"},
		{name: "unknown error", err: assert.AnError, wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR", wantMsg: "Server error"},
		{
			name:       "prebuilt body",
			err:        echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{Error: "x", Message: "x", Code: "X"}),
			wantStatus: http.StatusBadRequest, wantCode: "X", wantMsg: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := toResponse(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

func TestErrorHandler_LogsServerErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(logger)(assert.AnError, c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "unhandled error", hook.LastEntry().Message)
}
