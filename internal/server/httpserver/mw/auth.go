// Package mw holds HTTP middleware: access logging and bearer-token auth.
package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/modtoolkit/internal/common"
	"github.com/dmitrijs2005/modtoolkit/internal/server/auth"
)

type ctxKey int

const userIDKey ctxKey = 0

// UserID extracts the authenticated user ID placed in the context by Auth.
// The second return is false for requests that did not pass the middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// WithUserID returns a context carrying the given user ID. Exposed for
// handler tests that bypass the middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Auth validates the Authorization bearer token and stores the user ID in
// the request context. Requests with a missing, malformed, or invalid token
// get 401 and never reach the handler.
func Auth(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(common.AuthorizationHeaderName)
			if !strings.HasPrefix(header, common.BearerPrefix) {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(header, common.BearerPrefix)

			userID, err := auth.GetUserIDFromToken(token, jwtSecret)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, common.ErrTokenExpired) {
					msg = "token expired"
				}
				http.Error(w, msg, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
