package common

import (
	"net"
	"net/http"
	"strconv"
	"strings"
)

// AtoiDefault parses value as an integer, returning def when the value
// is empty or malformed. Used for optional numeric query parameters.
func AtoiDefault(value string, def int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

// ClientIP resolves the originating client address, preferring proxy
// headers over the raw connection peer. With X-Forwarded-For only the
// first hop is trusted.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		if first := strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0]); first != "" {
			return first
		}
		return forwarded
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}
