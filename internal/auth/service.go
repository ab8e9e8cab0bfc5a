// Package auth establishes and reads dashboard sessions derived from verified
// login handoffs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"skydeck/internal/revocation"
	"skydeck/internal/token"
)

// ErrUnauthenticated is returned for every expected session-validation failure:
// missing, malformed, tampered, expired, or revoked credentials. Callers treat
// it as "no session", not as a fault.
var ErrUnauthenticated = errors.New("unauthenticated")

// DefaultSessionTTL bounds how long a session may live regardless of the
// handoff token that established it.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Session is a validated dashboard session.
type Session struct {
	Identity  token.Identity
	SessionID string
	ExpiresAt time.Time
}

// sessionClaims is the payload of the credential stored in the session cookie.
type sessionClaims struct {
	User      token.Identity `json:"user"`
	SessionID string         `json:"sid"`
	jwt.RegisteredClaims
}

// Service mints and validates session credentials. Credentials are JWTs signed
// under the same shared secret as handoff tokens, so the cookie is opaque to
// scripts but fully verifiable server-side.
type Service struct {
	secret      []byte
	sessionTTL  time.Duration
	revocations revocation.Store
	now         func() time.Time
}

// NewService creates a session Service.
func NewService(secret []byte, sessionTTL time.Duration, revocations revocation.Store, now func() time.Time) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: shared secret is required")
	}
	if revocations == nil {
		return nil, errors.New("auth: revocation store is required")
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		secret:      secret,
		sessionTTL:  sessionTTL,
		revocations: revocations,
		now:         now,
	}, nil
}

// Materialize mints a session credential for a verified identity. The session
// never outlives the handoff token it was derived from: its expiry is the
// earlier of now+TTL and tokenExpiry.
func (s *Service) Materialize(identity token.Identity, tokenExpiry time.Time) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.sessionTTL)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(expiresAt) {
		expiresAt = tokenExpiry
	}

	claims := sessionClaims{
		User:      identity,
		SessionID: uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	credential, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session credential: %w", err)
	}

	return credential, expiresAt, nil
}

// ReadSession fully validates a session credential: signature, expiry, payload
// shape, and revocation state. Every expected failure maps to
// ErrUnauthenticated; only infrastructure faults surface as distinct errors.
func (s *Service) ReadSession(ctx context.Context, credential string) (*Session, error) {
	claims, err := s.parseCredential(credential)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return nil, ErrUnauthenticated
	}

	return &Session{
		Identity:  claims.User,
		SessionID: claims.SessionID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the session carried by the credential until it would have
// expired naturally. An invalid or already-expired credential is not an error:
// there is nothing left to revoke.
func (s *Service) Logout(ctx context.Context, credential string) error {
	claims, err := s.parseCredential(credential)
	if err != nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.revocations.Revoke(ctx, claims.SessionID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Service) parseCredential(credential string) (*sessionClaims, error) {
	if credential == "" {
		return nil, ErrUnauthenticated
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(token.Leeway),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)

	claims := &sessionClaims{}
	if _, err := parser.ParseWithClaims(credential, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}); err != nil {
		return nil, ErrUnauthenticated
	}

	if claims.User.ID == "" || claims.SessionID == "" {
		return nil, ErrUnauthenticated
	}

	return claims, nil
}
