package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"evalgo.org/microtosca/internal/config"
)

// ContextKeyClaims is the key for storing JWT claims in context
const ContextKeyClaims = "claims"

// Middleware is the authentication middleware
type Middleware struct {
	jwtService *JWTService
	config     *config.Config
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.Config) *Middleware {
	return &Middleware{
		jwtService: NewJWTService(cfg),
		config:     cfg,
	}
}

// RequireAuth is middleware that requires JWT authentication
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Skip if auth is disabled
		if !m.config.Security.AuthEnabled {
			return next(c)
		}

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set(ContextKeyClaims, claims)

		return next(c)
	}
}

// RequireScope is middleware that requires one of the given scopes. It
// authenticates the request itself, so it can be used on its own.
func (m *Middleware) RequireScope(scopes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.RequireAuth(func(c echo.Context) error {
			if !m.config.Security.AuthEnabled {
				return next(c)
			}

			claims, ok := GetClaims(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, s := range scopes {
				if claims.HasScope(s) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		})
	}
}

// RequireWrite is middleware for routes that mutate the model
func (m *Middleware) RequireWrite(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireScope(ScopeWrite)(next)
}

// GetClaims extracts JWT claims from Echo context
func GetClaims(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(*Claims)
	return claims, ok
}

// Subject returns the authenticated subject, or "anonymous" when auth is off.
func Subject(c echo.Context) string {
	if claims, ok := GetClaims(c); ok {
		return claims.Subject
	}
	return "anonymous"
}
