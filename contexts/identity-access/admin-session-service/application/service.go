package application

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	domainerrors "ovation/contexts/identity-access/admin-session-service/domain/errors"
	"ovation/contexts/identity-access/admin-session-service/ports"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "ovation"

// Service issues and validates admin session tokens. A token is only valid
// while its backing store record exists and has not expired, so logout is a
// real revocation rather than a client-side convention.
type Service struct {
	AdminPassword string
	SigningSecret []byte
	SessionTTL    time.Duration
	Sessions      ports.SessionStore
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

func (s Service) Login(ctx context.Context, password string) (LoginResult, error) {
	logger := s.resolveLogger()
	if s.AdminPassword == "" || !constantTimeEqual(password, s.AdminPassword) {
		logger.Warn("admin login rejected",
			"event", "admin_session_login_rejected",
			"module", "identity-access/admin-session-service",
			"layer", "application",
		)
		return LoginResult{}, domainerrors.ErrInvalidCredentials
	}

	sessionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return LoginResult{}, err
	}
	now := s.now()
	expiresAt := now.Add(s.resolveTTL())

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "admin",
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.SigningSecret)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.Sessions.Put(ctx, ports.SessionRecord{
		SessionID: sessionID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}); err != nil {
		return LoginResult{}, err
	}

	logger.Info("admin session issued",
		"event", "admin_session_issued",
		"module", "identity-access/admin-session-service",
		"layer", "application",
		"session_id", sessionID,
		"expires_at", expiresAt.Format(time.RFC3339),
	)
	return LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// Validate checks signature, expiry, and store membership.
func (s Service) Validate(ctx context.Context, token string) error {
	sessionID, err := s.parseSessionID(token)
	if err != nil {
		return domainerrors.ErrInvalidSession
	}
	_, found, err := s.Sessions.Get(ctx, sessionID, s.now())
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrInvalidSession
	}
	return nil
}

func (s Service) Logout(ctx context.Context, token string) error {
	sessionID, err := s.parseSessionID(token)
	if err != nil {
		// Already unusable; nothing to revoke.
		return nil
	}
	return s.Sessions.Delete(ctx, sessionID)
}

func (s Service) parseSessionID(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(
		strings.TrimSpace(token),
		&jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return s.SigningSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil || !parsed.Valid {
		return "", domainerrors.ErrInvalidSession
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || strings.TrimSpace(claims.ID) == "" {
		return "", domainerrors.ErrInvalidSession
	}
	return claims.ID, nil
}

func (s Service) resolveTTL() time.Duration {
	if s.SessionTTL <= 0 {
		return time.Hour
	}
	return s.SessionTTL
}

func (s Service) now() time.Time {
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}
	return now
}

func (s Service) resolveLogger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// constantTimeEqual compares via fixed-width digests so the comparison does
// not leak length or prefix information.
func constantTimeEqual(a string, b string) bool {
	digestA := sha256.Sum256([]byte(a))
	digestB := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(digestA[:], digestB[:]) == 1
}
