// Package auth provides bearer token authentication for the microtosca API.
// Tokens are HS256 JWTs carrying a subject and a list of scopes.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"evalgo.org/microtosca/internal/config"
)

const (
	// ScopeRead allows read-only routes
	ScopeRead = "read"
	// ScopeWrite allows routes that mutate the model
	ScopeWrite = "write"

	issuer = "microtosca"
)

var (
	// ErrInvalidToken is returned when a JWT token is invalid
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a JWT token has expired
	ErrExpiredToken = errors.New("token has expired")
	// ErrMissingSecret is returned when no signing secret is configured
	ErrMissingSecret = errors.New("jwt secret is required")
)

// Claims represents JWT custom claims
type Claims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// HasScope reports whether the claims grant scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// JWTService signs and validates tokens.
type JWTService struct {
	secret     []byte
	expiration time.Duration
}

// NewJWTService creates a new JWT service from the security configuration.
func NewJWTService(cfg *config.Config) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Security.JWTSecret),
		expiration: cfg.Security.JWTExpiration,
	}
}

// GenerateToken signs a token for subject with the configured expiration.
func (s *JWTService) GenerateToken(subject string, scopes ...string) (string, error) {
	return GenerateToken(string(s.secret), subject, s.expiration, scopes...)
}

// GenerateToken signs a token without a service, for the token command.
// Without scopes the token grants read and write.
func GenerateToken(secret, subject string, expiration time.Duration, scopes ...string) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	if len(scopes) == 0 {
		scopes = []string{ScopeRead, ScopeWrite}
	}

	now := time.Now()
	claims := Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
