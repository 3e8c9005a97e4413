package voucher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/resilience"
)

// ErrUnknownCode is returned when the collaborator does not recognise the code.
var ErrUnknownCode = errors.New("voucher: unknown code")

// Resolver resolves a voucher code to its discount rule.
type Resolver interface {
	Resolve(ctx context.Context, code string) (Voucher, error)
}

// HTTPResolver resolves codes against the remote voucher collaborator.
type HTTPResolver struct {
	BaseURL string
	HTTP    resilience.HTTPClient
}

// NewHTTPResolver constructs a resolver with retry defaults.
func NewHTTPResolver(baseURL string, rt http.RoundTripper) *HTTPResolver {
	return &HTTPResolver{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: resilience.HTTPClient{
			Client:      &http.Client{Transport: rt},
			Breaker:     resilience.NewBreaker(10, 0.5, 15*time.Second).WithTarget("voucher"),
			MaxAttempts: 2,
			BaseBackoff: 100 * time.Millisecond,
			Jitter:      0.2,
			Timeout:     3 * time.Second,
		},
	}
}

// Resolve looks up a voucher by code.
func (r *HTTPResolver) Resolve(ctx context.Context, code string) (Voucher, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Voucher{}, ErrUnknownCode
	}
	start := time.Now()
	endpoint := r.BaseURL + "/vouchers/" + url.PathEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Voucher{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := r.HTTP.Do(ctx, req)
	obs.ObserveRemoteCall("voucher", start, err)
	if err != nil {
		return Voucher{}, fmt.Errorf("voucher: resolve %q: %w", code, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusNotFound {
		return Voucher{}, ErrUnknownCode
	}
	if resp.StatusCode != http.StatusOK {
		return Voucher{}, fmt.Errorf("voucher: resolve %q: unexpected status %s", code, resp.Status)
	}
	var v Voucher
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return Voucher{}, fmt.Errorf("voucher: decode: %w", err)
	}
	return v, nil
}
