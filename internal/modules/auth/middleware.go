package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ctxKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// ClaimsFromContext returns the claims the gate attached to the request, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

// Gate rejects requests outside the public allow-list that do not carry a
// valid bearer token. apiURL is the prefix the API routes are mounted under.
func Gate(svc Service, apiURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.Method, r.URL.Path, apiURL) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if header == "" || token == "" || token == header {
				deny(w, http.StatusUnauthorized, "Token not provided.")
				return
			}

			claims, err := svc.Parse(token)
			if err != nil || isRevoked(claims) {
				deny(w, http.StatusForbidden, "Token not valid.")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func isPublic(method, path, apiURL string) bool {
	switch path {
	case "/health", "/metrics", apiURL + "/users/login", apiURL + "/users/register":
		return true
	}
	if method != http.MethodGet && method != http.MethodOptions {
		return false
	}
	for _, prefix := range []string{"/uploads/", apiURL + "/products", apiURL + "/categories"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isRevoked treats every non-admin credential as revoked, so only
// administrators reach protected routes.
func isRevoked(c *Claims) bool {
	return !c.IsAdmin
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"message": message, "success": false})
}
