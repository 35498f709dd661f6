package httpmiddleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// SessionHeader overrides the session cookie. Non-browser clients use it.
	SessionHeader = "X-Session-ID"
	// DefaultSessionCookie is the cookie name used when none is configured.
	DefaultSessionCookie = "velo_session"
)

// SessionConfig configures session identification.
type SessionConfig struct {
	Cookie string
	MaxAge time.Duration
	Secure bool
}

type sessionKey struct{}

// SessionIDFromContext returns the session id, or "" outside Session.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// WithSessionID returns ctx carrying the session id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// Session identifies the client by the X-Session-ID header or the session
// cookie. A client presenting neither gets a fresh id in a cookie. The id is
// echoed in the X-Session-ID response header.
func Session(cfg SessionConfig) Middleware {
	if cfg.Cookie == "" {
		cfg.Cookie = DefaultSessionCookie
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 30 * 24 * time.Hour
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if !printableID(id) {
				id = ""
				if c, err := r.Cookie(cfg.Cookie); err == nil && printableID(c.Value) {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.Cookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cfg.MaxAge / time.Second),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, id)
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}
