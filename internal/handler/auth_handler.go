package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"moodtracker/internal/auth"
	"moodtracker/internal/errors"
	"moodtracker/internal/model"
	"moodtracker/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, userService service.UserService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService, log: log}
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest represents a logout request. The refresh token is optional.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Error        *string     `json:"error" swaggertype:"string" extensions:"x-nullable"`
	Message      string      `json:"message"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         *model.User `json:"user"`
}

// TokenResponse represents a refreshed access token.
type TokenResponse struct {
	Error *string `json:"error" swaggertype:"string" extensions:"x-nullable"`
	Token string  `json:"token"`
}

// ProfileResponse wraps the caller's profile.
type ProfileResponse struct {
	Error *string     `json:"error" swaggertype:"string" extensions:"x-nullable"`
	User  *model.User `json:"user"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Error   *string `json:"error" swaggertype:"string" extensions:"x-nullable"`
	Message string  `json:"message"`
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.log, errors.Validation("invalid request body"))
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return fail(c, h.log, errors.Validation("Email and password are required"))
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Message:      "Login successful",
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	})
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.log, errors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, h.log, errors.Validation("Refresh token is required"))
	}

	accessToken, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: accessToken})
}

// Logout godoc
// @Summary Logout user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LogoutRequest false "Refresh token to revoke"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.log, errors.Validation("invalid request body"))
	}

	claims, _ := auth.ClaimsFrom(c)
	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken, claims); err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Profile godoc
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	id, err := requireRole(c, model.RolePatient, model.RoleDoctor)
	if err != nil {
		return fail(c, h.log, err)
	}

	user, err := h.userService.GetUser(c.Request().Context(), id.UserID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, ProfileResponse{User: user})
}
