package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerAuth gates the catalog API behind a static token, set via
// CURATOR_API_TOKEN. The comparison is constant-time; a request without a
// Bearer prefix fails the same way as one with a wrong token.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			presented := ""
			if strings.HasPrefix(header, prefix) {
				presented = header[len(prefix):]
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
