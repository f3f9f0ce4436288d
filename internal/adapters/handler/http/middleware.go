package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/contacts/api/internal/core/ports"
)

type contextKey string

// UserIDKey carries the authenticated user's uuid.UUID in the request
// context. Handlers behind AuthMiddleware read it to scope every query.
const UserIDKey contextKey = "userID"

// AuthMiddleware resolves the current user from the Authorization bearer
// token. Requests without a valid token for an existing user get 401.
func AuthMiddleware(auth ports.AuthService, users ports.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			userID, err := auth.ParseAccessToken(token)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				http.Error(w, "failed to resolve user", http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}
