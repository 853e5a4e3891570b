package middleware

import (
	"net/http"

	"github.com/storebox/storebox/internal/api"
	"github.com/storebox/storebox/internal/ctxkeys"
	"github.com/storebox/storebox/internal/service"
)

// Auth resolves the session cookie to a user and adds it to the request
// context. Requests without a valid session continue unauthenticated; the
// route decides whether that matters.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.SessionCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.CurrentUser(cookie.Value)
			if err != nil {
				// Stale or bogus secret, clear it
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects unauthenticated requests.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			api.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireGuest rejects requests that already carry a session.
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user != nil {
			api.Error(w, http.StatusForbidden, "already signed in")
			return
		}
		next.ServeHTTP(w, r)
	}
}
