package common

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testIdem(t *testing.T) (Idem, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Idem{R: client, TTL: time.Minute}, mr
}

func idemHandler(idem Idem, hits *int) http.Handler {
	return idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.WriteHeader(http.StatusCreated)
	}))
}

func TestIdemFirstClaimPassesThrough(t *testing.T) {
	idem, _ := testIdem(t)
	var hits int
	handler := idemHandler(idem, &hits)

	req := httptest.NewRequest(http.MethodPost, "/checkout/abc", nil)
	req.Header.Set("Idempotency-Key", "submit-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, hits)
}

func TestIdemDuplicateKeyRejectedWithConflict(t *testing.T) {
	idem, _ := testIdem(t)
	var hits int
	handler := idemHandler(idem, &hits)

	first := httptest.NewRequest(http.MethodPost, "/checkout/abc", nil)
	first.Header.Set("Idempotency-Key", "submit-1")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	replay := httptest.NewRequest(http.MethodPost, "/checkout/abc", nil)
	replay.Header.Set("Idempotency-Key", "submit-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, replay)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "IDEMPOTENT_REPLAY")
	require.Equal(t, 1, hits, "replayed request must not reach the handler")
}

func TestIdemDistinctKeysBothPass(t *testing.T) {
	idem, _ := testIdem(t)
	var hits int
	handler := idemHandler(idem, &hits)

	for _, key := range []string{"submit-1", "submit-2"} {
		req := httptest.NewRequest(http.MethodPost, "/checkout/abc", nil)
		req.Header.Set("Idempotency-Key", key)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	require.Equal(t, 2, hits)
}

func TestIdemClaimExpiresAfterTTL(t *testing.T) {
	idem, mr := testIdem(t)
	var hits int
	handler := idemHandler(idem, &hits)

	req := httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader("{}"))
	req.Header.Set("Idempotency-Key", "add-item-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	mr.FastForward(2 * time.Minute)

	retry := httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader("{}"))
	retry.Header.Set("Idempotency-Key", "add-item-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, retry)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 2, hits)
}

func TestIdemWithoutKeyOrStorePassesThrough(t *testing.T) {
	idem, _ := testIdem(t)
	var hits int

	// no header
	handler := idemHandler(idem, &hits)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	// no redis client configured
	bare := idemHandler(Idem{}, &hits)
	req := httptest.NewRequest(http.MethodPost, "/carts", nil)
	req.Header.Set("Idempotency-Key", "submit-1")
	rec = httptest.NewRecorder()
	bare.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Equal(t, 2, hits)
}
