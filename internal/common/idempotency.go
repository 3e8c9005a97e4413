package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Idem guards cart and checkout mutations against duplicate delivery.
// Clients send an Idempotency-Key header; the first request claims the
// key in Redis and later requests with the same key are rejected until
// the TTL elapses.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

// Middleware enforces the idempotency claim for write endpoints.
// Requests without a key, or when Redis is not configured, pass through.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := i.claimKey(header)
		claimed, err := i.R.SetNX(r.Context(), key, "claimed", i.TTL).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", map[string]any{"error": err.Error()})
			return
		}
		if !claimed {
			JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", nil)
			return
		}
		defer func() {
			// keep the claim alive even if the handler panics mid-flight
			_ = i.R.Expire(context.Background(), key, i.TTL).Err()
		}()
		next.ServeHTTP(w, r)
	})
}

func (i Idem) claimKey(header string) string {
	sum := sha256.Sum256([]byte(header))
	return "idem:" + hex.EncodeToString(sum[:])
}
