package http

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"skydeck/internal/auth"
	"skydeck/internal/directory"
	"skydeck/internal/metrics"
)

// SessionHandler resolves and terminates the current session.
type SessionHandler struct {
	sessions       *auth.Service
	users          directory.Repository
	metrics        *metrics.Collector
	logger         *slog.Logger
	loginOriginURL string
	secureCookie   bool
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(
	sessions *auth.Service,
	users directory.Repository,
	collector *metrics.Collector,
	loginOriginURL, env string,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions:       sessions,
		users:          users,
		metrics:        collector,
		logger:         logger,
		loginOriginURL: strings.TrimSuffix(loginOriginURL, "/"),
		secureCookie:   !strings.EqualFold(env, "development"),
	}
}

// Me handles GET /api/auth/me. It fully validates the session credential and
// returns the authenticated identity, refreshed from the user directory when a
// record exists. Validation failures answer 401 and clear the stale cookie.
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		h.metrics.RecordSessionRead(metrics.SessionReadUnauthenticated)
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	session, err := h.sessions.ReadSession(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			http.SetCookie(w, clearSessionCookie(h.secureCookie))
			h.metrics.RecordSessionRead(metrics.SessionReadUnauthenticated)
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		h.logger.Error("session read failed", "error", err)
		h.metrics.RecordSessionRead(metrics.SessionReadError)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.metrics.RecordSessionRead(metrics.SessionReadOK)

	identity := session.Identity
	if user, err := h.users.FindByExternalID(r.Context(), identity.ID); err != nil {
		h.logger.Error("user lookup failed", "error", err, "user_id", identity.ID)
	} else if user != nil {
		identity.Email = user.Email
		identity.Name = user.Name
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": identity})
}

// Logout handles POST /api/auth/logout. It revokes the session until its
// natural expiry, clears the cookie, and tells the client where to go next.
// Logging out without a valid session still clears the cookie and succeeds.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Error("session revocation failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	http.SetCookie(w, clearSessionCookie(h.secureCookie))
	h.metrics.RecordLogout()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"redirectUrl": h.loginOriginURL,
	})
}
