package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/toko-storefront/internal/checkout"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/resilience"
)

// Client submits checkout requests to the remote order-creation collaborator
// and proxies order status lookups for the tracking screen.
type Client struct {
	BaseURL string
	HTTP    resilience.HTTPClient
}

// NewClient constructs an order client. Order creation is never retried:
// a duplicate POST could double-create; retry policy belongs upstream.
func NewClient(baseURL string, rt http.RoundTripper) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: resilience.HTTPClient{
			Client:      &http.Client{Transport: rt},
			Breaker:     resilience.NewBreaker(10, 0.5, 30*time.Second).WithTarget("orders"),
			MaxAttempts: 1,
			Timeout:     10 * time.Second,
		},
	}
}

// Create hands exactly one checkout request to the collaborator.
func (c *Client) Create(ctx context.Context, req checkout.Request) (checkout.Ack, error) {
	start := time.Now()
	body, err := json.Marshal(req)
	if err != nil {
		return checkout.Ack{}, fmt.Errorf("order: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return checkout.Ack{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(ctx, httpReq)
	obs.ObserveRemoteCall("orders", start, err)
	if err != nil {
		return checkout.Ack{}, fmt.Errorf("order: create: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return checkout.Ack{}, fmt.Errorf("order: create: unexpected status %s", resp.Status)
	}
	var ack checkout.Ack
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return checkout.Ack{}, fmt.Errorf("order: decode ack: %w", err)
	}
	return ack, nil
}

// Status is a point-in-time view of a placed order for tracking.
type Status struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Courier string `json:"courier,omitempty"`
	ETD     string `json:"etd,omitempty"`
}

// Track fetches the order status from the collaborator.
func (c *Client) Track(ctx context.Context, orderID string) (Status, error) {
	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/orders/"+orderID, nil)
	if err != nil {
		return Status{}, err
	}
	resp, err := c.HTTP.Do(ctx, httpReq)
	obs.ObserveRemoteCall("orders", start, err)
	if err != nil {
		return Status{}, fmt.Errorf("order: track: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return Status{}, fmt.Errorf("order: track: unexpected status %s", resp.Status)
	}
	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return Status{}, fmt.Errorf("order: decode status: %w", err)
	}
	return status, nil
}
