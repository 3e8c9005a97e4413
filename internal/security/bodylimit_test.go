package security

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBodyLimitPassesSmallBodyThrough(t *testing.T) {
	limiter := BodyLimit{Max: 64}
	var seen string
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(data)
		w.WriteHeader(http.StatusOK)
	}))

	payload := `{"productId":1,"qty":2}`
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, payload, seen)
}

func TestBodyLimitRejectsOversizedBody(t *testing.T) {
	limiter := BodyLimit{Max: 8}
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader("this body is far too long")))

	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestBodyLimitRejectsDeclaredOversizedLength(t *testing.T) {
	limiter := BodyLimit{Max: 8}
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader("short"))
	req.ContentLength = 4096
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestBodyLimitDisabledWhenMaxUnset(t *testing.T) {
	limiter := BodyLimit{}
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader(strings.Repeat("x", 4096))))

	require.Equal(t, http.StatusOK, rr.Code)
}
