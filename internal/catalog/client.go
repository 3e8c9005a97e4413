package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/resilience"
)

// ErrNotFound indicates the requested catalog entity does not exist upstream.
var ErrNotFound = errors.New("catalog: not found")

// Client models the remote catalog collaborator. The engine only ever reads
// from it.
type Client interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
	GetVariants(ctx context.Context, productID int64) ([]Variant, error)
	GetSizes(ctx context.Context, variantID int64) ([]Size, error)
}

// HTTPClient fetches catalog data over HTTP with retries and caching.
type HTTPClient struct {
	BaseURL string
	HTTP    resilience.HTTPClient
	Cache   *Cache
}

// NewHTTPClient constructs a catalog client with sane retry defaults.
func NewHTTPClient(baseURL string, rt http.RoundTripper, cache *Cache) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: resilience.HTTPClient{
			Client:      &http.Client{Transport: rt},
			Breaker:     resilience.NewBreaker(10, 0.5, 15*time.Second).WithTarget("catalog"),
			MaxAttempts: 3,
			BaseBackoff: 100 * time.Millisecond,
			Jitter:      0.2,
			Timeout:     3 * time.Second,
		},
		Cache: cache,
	}
}

// GetProduct fetches one product by id.
func (c *HTTPClient) GetProduct(ctx context.Context, id int64) (Product, error) {
	var dto productDTO
	key := fmt.Sprintf("catalog:product:%d", id)
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d", id), key, &dto); err != nil {
		return Product{}, err
	}
	return dto.normalize(), nil
}

// GetVariants fetches the variants of a product.
func (c *HTTPClient) GetVariants(ctx context.Context, productID int64) ([]Variant, error) {
	var dtos []variantDTO
	key := fmt.Sprintf("catalog:variants:%d", productID)
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d/variants", productID), key, &dtos); err != nil {
		return nil, err
	}
	variants := make([]Variant, 0, len(dtos))
	for _, dto := range dtos {
		variants = append(variants, dto.normalize())
	}
	return variants, nil
}

// GetSizes fetches the sizes of a variant.
func (c *HTTPClient) GetSizes(ctx context.Context, variantID int64) ([]Size, error) {
	var dtos []sizeDTO
	key := fmt.Sprintf("catalog:sizes:%d", variantID)
	if err := c.getJSON(ctx, fmt.Sprintf("/variants/%d/sizes", variantID), key, &dtos); err != nil {
		return nil, err
	}
	sizes := make([]Size, 0, len(dtos))
	for _, dto := range dtos {
		sizes = append(sizes, dto.normalize())
	}
	return sizes, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path, cacheKey string, dst any) error {
	if c.Cache != nil {
		hit, err := c.Cache.GetJSON(ctx, cacheKey, dst)
		if err == nil && hit {
			return nil
		}
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(ctx, req)
	obs.ObserveRemoteCall("catalog", start, err)
	if err != nil {
		return fmt.Errorf("catalog: fetch %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog: fetch %s: unexpected status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	if c.Cache != nil {
		_ = c.Cache.SetJSON(ctx, cacheKey, dst)
	}
	return nil
}
