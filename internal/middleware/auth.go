package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tbraden/quoteboard/internal/token"
)

// CookieName is the session cookie holding the signed token.
const CookieName = "access_token"

type key string

const userIDKey key = "user_id"

// GetUserID returns the authenticated user id attached by Auth.
func GetUserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIDKey).(int)
	return id, ok
}

// Auth gates protected routes on the session cookie. A missing cookie is
// 401 Unauthorized; a cookie that fails verification is 403 Forbidden. On
// success the user id is attached to the request context and the downstream
// handler runs. The gate has no other side effects.
func Auth(verifier *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(CookieName)
			if err != nil || c.Value == "" {
				authError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			userID, err := verifier.Verify(c.Value)
			if err != nil {
				authError(w, "Forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authError writes the standard {success:false, message} error body.
// Duplicated from handlers to keep middleware free of a handlers import.
func authError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
