// Package token validates handoff tokens issued by the external login site.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Leeway is the clock-skew tolerance applied when checking token expiry.
const Leeway = 10 * time.Second

var (
	// ErrMalformedToken indicates the token is not a well-formed compact JWT
	// or its payload is missing required user fields.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature indicates the signature does not verify under the
	// shared secret, or the token uses a disallowed signing algorithm.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpiredToken indicates the token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")
)

// Identity is the minimal authenticated-user record carried by a token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// handoffClaims is the payload shape the login site signs.
type handoffClaims struct {
	User Identity `json:"user"`
	jwt.RegisteredClaims
}

// Verifier checks handoff tokens against the shared signing secret.
// The clock is injected so expiry behavior is deterministic in tests.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier creates a Verifier. The secret must match the one the external
// login site signs with.
func NewVerifier(secret []byte, now func() time.Time) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: shared secret is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Verifier{secret: secret, now: now}, nil
}

// Verify validates structure, signature, and expiry of a handoff token and
// returns the embedded identity together with the token's expiry time.
// Failures are reported only through the package's sentinel errors; raw
// library error detail never crosses this boundary.
func (v *Verifier) Verify(raw string) (Identity, time.Time, error) {
	if raw == "" || strings.Count(raw, ".") != 2 {
		return Identity{}, time.Time{}, ErrMalformedToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(Leeway),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)

	claims := &handoffClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}); err != nil {
		return Identity{}, time.Time{}, classify(err)
	}

	if claims.User.ID == "" || claims.User.Email == "" || claims.User.Name == "" {
		return Identity{}, time.Time{}, ErrMalformedToken
	}

	return claims.User, claims.ExpiresAt.Time, nil
}

// classify maps jwt parsing failures onto the package taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return ErrMalformedToken
	}
}
