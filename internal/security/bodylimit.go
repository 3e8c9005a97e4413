package security

import (
	"bytes"
	"errors"
	"io"
	"net/http"
)

// BodyLimit caps request payload size. Cart and checkout payloads are
// small, so the cap mostly guards against misbehaving clients streaming
// unbounded bodies.
type BodyLimit struct {
	Max int64
}

// Middleware rejects oversized requests with HTTP 413. Accepted bodies
// are buffered and handed to the next handler intact.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength > b.Max {
			http.Error(w, "request entity too large", http.StatusRequestEntityTooLarge)
			return
		}

		body := http.MaxBytesReader(w, r.Body, b.Max)
		buf, err := io.ReadAll(body)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				http.Error(w, "request entity too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		_ = body.Close()

		r.Body = io.NopCloser(bytes.NewReader(buf))
		r.ContentLength = int64(len(buf))
		next.ServeHTTP(w, r)
	})
}
