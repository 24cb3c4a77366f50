package httputil

import (
	"net/http"
	"time"

	"github.com/matzehuels/ghgraph/pkg/observability"
)

// DefaultTimeout bounds a whole request, body included.
const DefaultTimeout = 10 * time.Second

// Transport is an http.RoundTripper that reports requests, responses and
// transport errors to the observability HTTP hooks.
type Transport struct {
	// Base performs the request. Nil means http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	hooks := observability.HTTP()
	ctx := req.Context()
	host, path := req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := t.base().RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// NewClient returns an instrumented client. A non-positive timeout uses
// DefaultTimeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout, Transport: &Transport{}}
}

// Instrument wraps the transport of c, keeping its timeout. It is used to
// instrument clients handed out by test servers.
func Instrument(c *http.Client) *http.Client {
	out := *c
	out.Transport = &Transport{Base: c.Transport}
	return &out
}
