// forum/handlers/middleware.go
package handlers

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/depsterr/slutprojektWSP21/utils"

	"github.com/go-chi/chi/v5/middleware"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// UserIDKey carries the authenticated user's id once the session middleware
// has resolved it.
const UserIDKey ContextKey = "userID"

// NewStructuredLogger returns a chi middleware that logs one line per
// request through slog.
func NewStructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("Request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
				"ip", utils.GetIPAddress(r),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// SessionMiddleware resolves the session cookie into a user id on the
// request context. Requests without a valid session pass through
// unauthenticated.
func SessionMiddleware(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err == nil {
				if userID, ok := app.Sessions().Get(cookie.Value); ok {
					ctx := context.WithValue(r.Context(), UserIDKey, userID)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sessionUser returns the authenticated user id from the request context.
func sessionUser(r *http.Request, _ App) (int64, bool) {
	userID, ok := r.Context().Value(UserIDKey).(int64)
	return userID, ok
}

// RequireUser rejects unauthenticated requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Value(UserIDKey).(int64); !ok {
			http.Error(w, "Login required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireLAN restricts a route to private or loopback addresses. Guards
// the debug endpoints.
func RequireLAN(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := net.ParseIP(utils.GetIPAddress(r))
		if ip == nil || (!ip.IsPrivate() && !ip.IsLoopback()) {
			http.Error(w, "Forbidden: debug access restricted to LAN", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteLimitMiddleware throttles mutating requests per client IP.
func WriteLimitMiddleware(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				if !app.Writes().Allow(utils.GetIPAddress(r)) {
					http.Error(w, "Too many requests", http.StatusTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
