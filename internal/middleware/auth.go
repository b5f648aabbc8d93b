package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mkeren/pawtrack/internal/auth"
	"github.com/mkeren/pawtrack/internal/model"
)

// TokenResolver maps a bearer token to its user. Implemented by the auth
// service.
type TokenResolver interface {
	Resolve(token string) (*model.User, error)
}

// BearerToken extracts the token from the Authorization header, falling back
// to the token query parameter (used by the WebSocket endpoint, where
// browsers cannot set headers).
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// RequireAuth resolves the bearer token and populates AuthContext. Requests
// without a valid token get 401.
func RequireAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				unauthorized(w, "missing token")
				return
			}

			user, err := resolver.Resolve(token)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ac := auth.AuthContext{
				UserID:      user.ID,
				HouseholdID: user.HouseholdID,
				Username:    user.Username,
				IsAdmin:     user.IsAdmin,
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

// RequireAdmin checks that the authenticated user has the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "admin only"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
