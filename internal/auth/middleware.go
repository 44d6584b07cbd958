package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Middleware verifies the bearer token and, when allowedRoles is non-empty,
// requires the caller's role to be one of them. Verified claims are attached
// to the request context for handlers to read.
func Middleware(v Verifier, allowedRoles ...string) func(http.Handler) http.Handler {
	roleAllowed := make(map[string]bool, len(allowedRoles))
	for _, role := range allowedRoles {
		roleAllowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				writeJSONError(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			claims, err := v.Verify(parts[1])
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("auth: token verification failed")
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}

			if len(roleAllowed) > 0 && !roleAllowed[claims.Role] {
				log.Warn().Str("role", claims.Role).Str("path", r.URL.Path).Msg("auth: role not allowed")
				writeJSONError(w, http.StatusForbidden, "Forbidden. Not authorized.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":%q}`, message)
}
