package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"

	"skydeck/internal/auth"
	"skydeck/internal/directory"
	"skydeck/internal/metrics"
	"skydeck/internal/revocation"
	"skydeck/internal/token"
)

var testSecret = []byte("http-test-shared-secret")

const testLoginOrigin = "https://login.example.com"

type userRepoStub struct {
	upsert           func(ctx context.Context, user directory.User) (directory.User, error)
	findByExternalID func(ctx context.Context, externalID string) (*directory.User, error)
}

func (r *userRepoStub) Upsert(ctx context.Context, user directory.User) (directory.User, error) {
	if r.upsert != nil {
		return r.upsert(ctx, user)
	}
	return user, nil
}

func (r *userRepoStub) FindByExternalID(ctx context.Context, externalID string) (*directory.User, error) {
	if r.findByExternalID != nil {
		return r.findByExternalID(ctx, externalID)
	}
	return nil, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCollector() *metrics.Collector {
	return metrics.NewCollector(prometheus.NewRegistry())
}

func newTestVerifier(t *testing.T) *token.Verifier {
	t.Helper()

	verifier, err := token.NewVerifier(testSecret, nil)
	if err != nil {
		t.Fatalf("NewVerifier returned error: %v", err)
	}
	return verifier
}

func newTestSessions(t *testing.T) *auth.Service {
	t.Helper()

	sessions, err := auth.NewService(testSecret, auth.DefaultSessionTTL, revocation.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return sessions
}

func mintHandoffToken(t *testing.T, secret []byte, iat, exp time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user": map[string]any{"id": "usr_42", "email": "ada@example.com", "name": "Ada Lovelace"},
		"iat":  iat.Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
