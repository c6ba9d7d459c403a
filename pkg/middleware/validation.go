package middleware

import (
	"net/http"
	"strings"

	"atelierhub/pkg/apierror"
)

// ValidateRequest rejects malformed requests before they reach a handler:
// wrong Content-Type, empty bodies on mutating methods, oversized bodies.
func ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.Contains(contentType, "application/json") {
				apierror.BadRequest(w, "invalid Content-Type, expected application/json")
				return
			}
		}

		const maxSize = 1 << 20 // 1 MB
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)

		next.ServeHTTP(w, r)
	})
}
