package middleware

import (
	"net/http"
)

// DefaultMaxBodyBytes caps JSON bodies (1 MiB). CSV imports use their own limit.
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes limits the request body to maxBytes. A declared Content-Length over
// the limit is rejected with 413 before the handler runs; bodies without one
// are cut off by http.MaxBytesReader while the handler reads them.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
