package http

import (
	"net/http"
	"time"
)

const (
	sessionCookieName = "auth_token"

	// protectedHomePath is where successful handoffs land, with the token
	// stripped from the visible URL.
	protectedHomePath = "/dashboard"
)

func newSessionCookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   maxAge,
	}
}

func clearSessionCookie(secure bool) *http.Cookie {
	cookie := newSessionCookie("", -1, secure)
	cookie.Expires = time.Unix(0, 0)
	return cookie
}
