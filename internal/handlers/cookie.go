package handlers

import (
	"net/http"
	"time"
)

const RefreshCookieName = "refreshToken"

// CookiePolicy carries the per-deployment cookie bits; the rest of the
// attributes are fixed by the protocol (http-only, path-wide, max-age
// matching the refresh TTL).
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
}

func (p CookiePolicy) RefreshCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}

func (p CookiePolicy) DeleteRefreshCookie() *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}
