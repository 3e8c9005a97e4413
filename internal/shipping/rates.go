package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/resilience"
)

// Rate describes one shipping option quoted for a destination.
type Rate struct {
	Courier string `json:"courier"`
	Service string `json:"service"`
	Cost    int64  `json:"cost"`
	ETD     string `json:"etd"`
}

// RateReq describes a shipping rate request.
type RateReq struct {
	Origin      string
	Destination string
	WeightGram  int
	Courier     string
}

// Client defines the behaviour required to quote domestic shipping rates.
// COD and international tariffs are static and never quoted remotely.
type Client interface {
	Rates(ctx context.Context, r RateReq) ([]Rate, error)
}

// HTTPClient quotes rates against a RajaOngkir-style collaborator.
type HTTPClient struct {
	BaseURL string
	APIKey  string
	HTTP    resilience.HTTPClient
}

// NewHTTPClient constructs a rate client with retry defaults.
func NewHTTPClient(baseURL, apiKey string, rt http.RoundTripper) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP: resilience.HTTPClient{
			Client:      &http.Client{Transport: rt},
			Breaker:     resilience.NewBreaker(10, 0.5, 30*time.Second).WithTarget("shipping"),
			MaxAttempts: 2,
			BaseBackoff: 150 * time.Millisecond,
			Jitter:      0.2,
			Timeout:     5 * time.Second,
		},
	}
}

// Rates quotes the courier's options for the destination.
func (c *HTTPClient) Rates(ctx context.Context, r RateReq) ([]Rate, error) {
	start := time.Now()
	form := url.Values{}
	form.Set("origin", r.Origin)
	form.Set("destination", r.Destination)
	form.Set("weight", fmt.Sprintf("%d", r.WeightGram))
	form.Set("courier", r.Courier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/cost", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("key", c.APIKey)

	resp, err := c.HTTP.Do(ctx, req)
	obs.ObserveRemoteCall("shipping", start, err)
	if err != nil {
		return nil, fmt.Errorf("shipping: quote rates: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shipping: quote rates: unexpected status %s", resp.Status)
	}

	var payload struct {
		Results []struct {
			Code  string `json:"code"`
			Costs []struct {
				Service string `json:"service"`
				Cost    []struct {
					Value int64  `json:"value"`
					ETD   string `json:"etd"`
				} `json:"cost"`
			} `json:"costs"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("shipping: decode rates: %w", err)
	}

	var rates []Rate
	for _, result := range payload.Results {
		for _, cost := range result.Costs {
			if len(cost.Cost) == 0 {
				continue
			}
			rates = append(rates, Rate{
				Courier: result.Code,
				Service: cost.Service,
				Cost:    cost.Cost[0].Value,
				ETD:     cost.Cost[0].ETD,
			})
		}
	}
	return rates, nil
}

// MockClient returns static rates and is useful for testing and development.
type MockClient struct{}

// Rates returns canned rates regardless of the request payload.
func (MockClient) Rates(ctx context.Context, r RateReq) ([]Rate, error) {
	_ = ctx
	return []Rate{
		{Courier: r.Courier, Service: "REG", Cost: 15000, ETD: "2-3"},
		{Courier: r.Courier, Service: "YES", Cost: 30000, ETD: "1"},
	}, nil
}
