package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/ghgraph/pkg/cache"
	"github.com/matzehuels/ghgraph/pkg/httputil"
	"github.com/matzehuels/ghgraph/pkg/observability"
)

// Client provides shared HTTP functionality for the REST API clients:
// instrumented GET requests, default headers and response caching.
// Failed requests are not retried.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
}

// NewClient creates a Client caching responses in c under namespace for
// ttl. A nil c disables caching. Headers are sent with every request.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      httputil.NewClient(httputil.DefaultTimeout),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// WithHTTPClient replaces the underlying HTTP client, instrumenting it.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = httputil.Instrument(h)
	return c
}

// WithKeyer replaces the cache keyer.
func (c *Client) WithKeyer(k cache.Keyer) *Client {
	if k != nil {
		c.keyer = k
	}
	return c
}

// Cached fills v from the cache, or runs fetch and stores v on success.
// With refresh set the cache is not read. Cache failures never fail the
// call; a fetch failure is returned as is.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	k := c.keyer.HTTPKey(c.namespace, key)
	hooks := observability.Cache()
	if !refresh {
		if data, hit, err := c.cache.Get(ctx, k); err == nil && hit {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, "http")
				return nil
			}
		}
		hooks.OnCacheMiss(ctx, "http")
	}
	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, k, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, "http", len(data))
		}
	}
	return nil
}

// Get performs a GET request and JSON-decodes the body into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders is Get with extra headers overriding the defaults.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, url, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if err := checkStatus(url, resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}
