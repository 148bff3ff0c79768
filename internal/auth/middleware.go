package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// userIDHeader identifies the acting user once the bearer token has been
// accepted. The upstream gateway sets it after verifying the user's session.
const userIDHeader = "X-User-Id"

// Middleware returns an http middleware that requires a static bearer token
// and attaches the acting user's claims to the request context. Requests
// with a missing or mismatched token are rejected with 401.
func Middleware(apiToken string) func(http.Handler) http.Handler {
	want := sha256.Sum256([]byte(apiToken))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, `{"error": "missing bearer token"}`, http.StatusUnauthorized)
				return
			}

			got := sha256.Sum256([]byte(token))
			if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
				http.Error(w, `{"error": "invalid token"}`, http.StatusUnauthorized)
				return
			}

			claims := &UserClaims{UID: r.Header.Get(userIDHeader)}
			next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), claims)))
		})
	}
}

// LocalDevMiddleware attaches a fixed development identity to every request.
// Used with the in-memory store so local development needs no auth setup.
func LocalDevMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := r.Header.Get(userIDHeader)
			if uid == "" {
				uid = "local-dev-user"
			}
			claims := &UserClaims{UID: uid, Email: uid + "@localhost"}
			next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), claims)))
		})
	}
}
