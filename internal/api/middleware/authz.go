package middleware

import (
	"net/http"

	"github.com/warescan/warescan/internal/api/response"
)

// RequireAdmin returns middleware that rejects non-admin identities with 403.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token is required", requestID)
				return
			}

			if !identity.IsAdmin() {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Admin access required", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
