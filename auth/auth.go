/*
Package auth implements the single-admin authentication gate.

PURPOSE:
  The studio has exactly one admin, configured at startup. Login checks
  email + password (bcrypt) and issues an HS256 JWT; a chi middleware
  verifies the bearer token before any mutating admin endpoint runs.

TOKEN SHAPE:
  Claims carry the admin email and role plus standard registered claims
  (jti, iat, exp). Tokens expire after the configured TTL (default 24h).

SEE ALSO:
  - api/server.go: Route groups wrapped with Middleware
*/
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pirouette/payroll-engine/config"
)

var (
	// ErrInvalidCredentials is returned for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenInvalid is returned for a missing, malformed, expired, or
	// wrongly-signed token.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the JWT payload for an admin session.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwtv5.RegisteredClaims
}

// Manager checks credentials and issues/verifies tokens.
type Manager struct {
	adminEmail   string
	passwordHash []byte
	secret       []byte
	tokenTTL     time.Duration
}

// NewManager hashes the configured plaintext password once at startup so
// login comparisons always go through bcrypt.
func NewManager(cfg config.AuthConfig) (*Manager, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &Manager{
		adminEmail:   strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		passwordHash: hash,
		secret:       []byte(cfg.JWTSecret),
		tokenTTL:     cfg.TokenTTL,
	}, nil
}

// Login verifies the admin credentials and returns a signed token.
func (m *Manager) Login(email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if subtle.ConstantTimeCompare([]byte(email), []byte(m.adminEmail)) != 1 {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		Email: m.adminEmail,
		Role:  "admin",
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.tokenTTL)),
			Issuer:    "payroll-engine",
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token string.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type contextKey struct{}

// claimsKey stores verified Claims on the request context.
var claimsKey contextKey

// Middleware rejects requests without a valid "Bearer <token>" header.
// It runs before any mutation: unauthorized requests never reach a handler.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w)
			return
		}

		claims, err := m.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// FromContext returns the verified claims, if the request passed Middleware.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"Unauthorized"}`))
}
