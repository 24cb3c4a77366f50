// Package cache provides the byte-level caches used for extraction results
// and analytics responses.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance, selected by GHGRAPH_REDIS_URL
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys are built by a [Keyer] so every producer hashes its inputs the same
// way. A [ScopedKeyer] prefixes keys, e.g. with the database name.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values with an optional time-to-live. A zero ttl
// never expires.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ExtractionKeyOpts identifies one extraction run.
type ExtractionKeyOpts struct {
	URI      string   `json:"uri"`
	Database string   `json:"database"`
	Types    []string `json:"types"`
	Schema   any      `json:"schema"`
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey keys a REST response by namespace and request identity.
	HTTPKey(namespace, key string) string
	// ExtractionKey keys the raw output of an extraction run. An empty
	// key means the run cannot be cached.
	ExtractionKey(opts ExtractionKeyOpts) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:{namespace}:{key}".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ExtractionKey hashes every field of opts. It returns "" when opts does not
// encode to JSON.
func (DefaultKeyer) ExtractionKey(opts ExtractionKeyOpts) string {
	return hashKey("extraction", opts)
}
