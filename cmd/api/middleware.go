package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vikram583135/platepal2.o-sub000/internal/cart"
)

const SessionHeader = "X-Session-ID"

type sessionKey struct{}

var (
	ErrMissingSession = errors.New(SessionHeader + " header is required")
	ErrInvalidSession = errors.New(SessionHeader + " header is too long")
)

// sessionMiddleware binds the request to the caller's cart session.
func (app *application) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(r.Header.Get(SessionHeader))
		if sessionID == "" {
			app.badRequestResponse(w, r, ErrMissingSession)
			return
		}
		if len(sessionID) > 128 {
			app.badRequestResponse(w, r, ErrInvalidSession)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) rateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled {
			key := sessionFromContext(r)
			if key == "" {
				key = r.RemoteAddr
			}
			if allow, retryAfter := app.rateLimiter.Allow(key); !allow {
				app.rateLimitExceededResponse(w, r, retryAfter)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func sessionFromContext(r *http.Request) string {
	sessionID, _ := r.Context().Value(sessionKey{}).(string)
	return sessionID
}

// cartFromRequest returns the session's cart store.
func (app *application) cartFromRequest(r *http.Request) *cart.Store {
	return app.carts.Get(r.Context(), sessionFromContext(r))
}
