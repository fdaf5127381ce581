package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/medicarehq/pharmacy-web/internal/session"
	"github.com/medicarehq/pharmacy-web/pkg/logging"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// SessionCookie assigns every browser a signed session ID cookie and puts
// the ID on the request context. The cookie is the durable handle to the
// redis-backed session and UI state.
func SessionCookie(secret, cookieName string, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string
			if cookie, err := r.Cookie(cookieName); err == nil {
				if parsed, err := session.ParseCookieToken(secret, cookie.Value); err == nil {
					sid = parsed
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				signed, err := session.MintCookieToken(secret, sid)
				if err != nil {
					logger.Error("failed to mint session cookie", "error", err)
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    signed,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), sessionIDKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the session ID established by SessionCookie.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}
