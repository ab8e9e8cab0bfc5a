package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"skydeck/internal/revocation"
	"skydeck/internal/token"
)

var testSecret = []byte("session-secret-under-test")

func testIdentity() token.Identity {
	return token.Identity{ID: "usr_42", Email: "ada@example.com", Name: "Ada Lovelace"}
}

func newTestService(t *testing.T, now func() time.Time) *Service {
	t.Helper()

	svc, err := NewService(testSecret, DefaultSessionTTL, revocation.NewMemoryStore(), now)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestMaterializeThenReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	credential, expiresAt, err := svc.Materialize(testIdentity(), time.Now().Add(30*24*time.Hour))
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}
	if credential == "" {
		t.Fatal("expected a non-empty credential")
	}

	session, err := svc.ReadSession(ctx, credential)
	if err != nil {
		t.Fatalf("ReadSession returned error: %v", err)
	}
	if session.Identity != testIdentity() {
		t.Fatalf("expected identity to round-trip, got %+v", session.Identity)
	}
	if session.SessionID == "" {
		t.Fatal("expected a session ID")
	}
	if session.ExpiresAt.Unix() != expiresAt.Unix() {
		t.Fatalf("expected expiry %v, got %v", expiresAt, session.ExpiresAt)
	}
}

func TestMaterializeCapsSessionAtTokenExpiry(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, func() time.Time { return now })

	tokenExpiry := now.Add(time.Hour)
	_, expiresAt, err := svc.Materialize(testIdentity(), tokenExpiry)
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}

	if !expiresAt.Equal(tokenExpiry) {
		t.Fatalf("expected session expiry capped at token expiry %v, got %v", tokenExpiry, expiresAt)
	}
}

func TestMaterializeUsesDefaultTTLForLongLivedTokens(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, func() time.Time { return now })

	_, expiresAt, err := svc.Materialize(testIdentity(), now.Add(365*24*time.Hour))
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}

	if !expiresAt.Equal(now.Add(DefaultSessionTTL)) {
		t.Fatalf("expected 7-day expiry, got %v", expiresAt)
	}
}

func TestReadSessionRejectsExpiredCredential(t *testing.T) {
	ctx := context.Background()
	current := time.Now()
	svc := newTestService(t, func() time.Time { return current })

	credential, _, err := svc.Materialize(testIdentity(), current.Add(time.Hour))
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}

	current = current.Add(2 * time.Hour)

	if _, err := svc.ReadSession(ctx, credential); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for expired credential, got %v", err)
	}
}

func TestReadSessionRejectsTamperedCredential(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	credential, _, err := svc.Materialize(testIdentity(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}

	tampered := credential[:len(credential)-2] + "xx"

	if _, err := svc.ReadSession(ctx, tampered); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for tampered credential, got %v", err)
	}
}

func TestReadSessionRejectsEmptyCredential(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	if _, err := svc.ReadSession(ctx, ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty credential, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	credential, _, err := svc.Materialize(testIdentity(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}

	if err := svc.Logout(ctx, credential); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	if _, err := svc.ReadSession(ctx, credential); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected revoked session to be unauthenticated, got %v", err)
	}
}

func TestLogoutWithInvalidCredentialSucceeds(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	if err := svc.Logout(ctx, "not-a-credential"); err != nil {
		t.Fatalf("expected logout without a session to succeed, got %v", err)
	}
}

type failingStore struct{}

func (failingStore) Revoke(context.Context, string, time.Duration) error {
	return errors.New("store down")
}

func (failingStore) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func TestReadSessionSurfacesInfrastructureFaults(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(testSecret, DefaultSessionTTL, failingStore{}, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	credential, _, err := svc.Materialize(testIdentity(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}

	_, err = svc.ReadSession(ctx, credential)
	if err == nil || errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected a distinct infrastructure error, got %v", err)
	}
}
