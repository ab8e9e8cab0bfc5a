package http

import (
	"net/http"
	"strings"
	"time"

	"log/slog"

	"skydeck/internal/auth"
	"skydeck/internal/directory"
	"skydeck/internal/metrics"
	"skydeck/internal/token"
)

// HandoffHandler receives signed login handoffs from the external marketing
// site, verifies them, and establishes the dashboard session.
type HandoffHandler struct {
	verifier       *token.Verifier
	sessions       *auth.Service
	users          directory.Repository
	metrics        *metrics.Collector
	logger         *slog.Logger
	loginOriginURL string
	secureCookie   bool
}

// NewHandoffHandler creates a new HandoffHandler.
func NewHandoffHandler(
	verifier *token.Verifier,
	sessions *auth.Service,
	users directory.Repository,
	collector *metrics.Collector,
	loginOriginURL, env string,
	logger *slog.Logger,
) *HandoffHandler {
	return &HandoffHandler{
		verifier:       verifier,
		sessions:       sessions,
		users:          users,
		metrics:        collector,
		logger:         logger,
		loginOriginURL: strings.TrimSuffix(loginOriginURL, "/"),
		secureCookie:   !strings.EqualFold(env, "development"),
	}
}

// Handle processes GET /dashboard/auth?token=<signed-token>.
//
// Three terminal outcomes: a missing token and a rejected token both redirect
// to the external login origin with no session created and no failure detail
// in the redirect; a verified token materializes a session cookie and
// redirects to the protected home path with the token stripped from the URL.
// Verification has no side effects, so replaying the same token is safe.
func (h *HandoffHandler) Handle(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		h.logger.Warn("handoff request without token")
		h.metrics.RecordHandoff(metrics.HandoffNoToken)
		http.Redirect(w, r, h.loginOriginURL, http.StatusTemporaryRedirect)
		return
	}

	identity, tokenExpiry, err := h.verifier.Verify(raw)
	if err != nil {
		// The failure kind stays server-side; the redirect carries nothing.
		h.logger.Warn("handoff token rejected", "reason", err)
		h.metrics.RecordHandoff(metrics.HandoffInvalidToken)
		http.Redirect(w, r, h.loginOriginURL, http.StatusTemporaryRedirect)
		return
	}

	// Identity comes from the verified token, so a directory write failure
	// must not fail the login.
	if _, err := h.users.Upsert(r.Context(), directory.User{
		ExternalID: identity.ID,
		Email:      identity.Email,
		Name:       identity.Name,
	}); err != nil {
		h.logger.Error("user upsert failed", "error", err, "user_id", identity.ID)
	}

	credential, expiresAt, err := h.sessions.Materialize(identity, tokenExpiry)
	if err != nil {
		h.logger.Error("session materialization failed", "error", err)
		http.Redirect(w, r, h.loginOriginURL, http.StatusTemporaryRedirect)
		return
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	http.SetCookie(w, newSessionCookie(credential, maxAge, h.secureCookie))

	h.metrics.RecordHandoff(metrics.HandoffSuccess)
	h.logger.Info("handoff login successful", "user_id", identity.ID)

	http.Redirect(w, r, protectedHomePath, http.StatusTemporaryRedirect)
}
