// Package flash stores one-shot notices that survive a single redirect.
package flash

import (
	"net/http"
	"time"
)

// Store keeps at most one pending notice per client. Pop returns the notice
// and clears it, so each notice is shown by exactly one rendered page.
type Store interface {
	Set(w http.ResponseWriter, r *http.Request, msg string) error
	Pop(w http.ResponseWriter, r *http.Request) (string, error)
}

const defaultTTL = 5 * time.Minute

type Options struct {
	// TTL bounds how long an unread notice is kept.
	TTL time.Duration
	// Secure marks the cookies HTTPS-only.
	Secure bool
}

func (o Options) ttl() time.Duration {
	if o.TTL <= 0 {
		return defaultTTL
	}
	return o.TTL
}

func setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
