package auth

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"moodtracker/internal/errors"
	"moodtracker/internal/model"
)

const (
	claimsContextKey   = "token_claims"
	identityContextKey = "identity"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uuid.UUID
	Role   model.Role
}

// UserLookup resolves the current user record behind a token.
type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Middleware bundles the echo middlewares that authenticate a request.
type Middleware struct {
	jwt    *JWTService
	tokens TokenStoreInterface
	users  UserLookup
	log    logrus.FieldLogger
}

// NewMiddleware creates the authentication middleware set.
func NewMiddleware(jwt *JWTService, tokens TokenStoreInterface, users UserLookup, log logrus.FieldLogger) *Middleware {
	return &Middleware{jwt: jwt, tokens: tokens, users: users, log: log}
}

// Authenticate chains token validation and identity resolution.
func (m *Middleware) Authenticate() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{m.JWT(), m.Identity()}
}

// JWT validates the bearer token and stores its claims in the context.
func (m *Middleware) JWT() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return m.jwt.ValidateAccessToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var extractErr *echojwt.TokenExtractionError
			if stderrors.As(err, &extractErr) {
				return errors.NewHTTPError(http.StatusUnauthorized, "No token provided", "UNAUTHENTICATED")
			}
			return errors.NewHTTPError(http.StatusUnauthorized, "Invalid token", "UNAUTHENTICATED")
		},
	})
}

// Identity rejects revoked tokens, reloads the user and stores an Identity in the context.
// The role is taken from the stored user, not from the token.
func (m *Middleware) Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return errors.ErrUnauthenticated
			}
			ctx := c.Request().Context()

			if revoked, _ := m.tokens.IsAccessTokenBlacklisted(ctx, claims.ID); revoked {
				return errors.NewHTTPError(http.StatusUnauthorized, "Token has been revoked", "UNAUTHENTICATED")
			}

			userID, err := claims.UserUUID()
			if err != nil {
				return errors.ErrUnauthenticated
			}

			user, err := m.users.GetUser(ctx, userID)
			if stderrors.Is(err, errors.ErrUserNotFound) {
				return errors.NewHTTPError(http.StatusUnauthorized, "User not found", "UNAUTHENTICATED")
			}
			if err != nil {
				m.log.WithError(err).WithField("user_id", userID).Error("resolve identity")
				return err
			}

			c.Set(identityContextKey, Identity{UserID: user.ID, Role: user.Role})
			return next(c)
		}
	}
}

// ClaimsFrom returns the validated token claims of the request.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// IdentityFrom returns the authenticated caller of the request.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityContextKey).(Identity)
	return id, ok
}

// WithIdentity stores id on the context. Used where requests are authenticated out of band.
func WithIdentity(c echo.Context, id Identity) {
	c.Set(identityContextKey, id)
}
