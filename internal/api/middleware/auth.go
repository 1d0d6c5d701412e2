package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/warescan/warescan/internal/api/response"
	"github.com/warescan/warescan/internal/auth"
)

const identityKey contextKey = "identity"

// Auth is middleware that extracts the Bearer token from the
// Authorization header and resolves it to an Identity via the identity
// gate. Missing or invalid tokens return 401.
func Auth(gate *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			token, ok := bearerToken(r)
			if !ok {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token is required", requestID)
				return
			}

			identity, err := gate.ResolveIdentity(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session token", requestID)
					return
				}
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", requestID)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}
