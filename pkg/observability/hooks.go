// Package observability lets an application watch the pipeline, cache and
// HTTP traffic without the libraries depending on a metrics stack.
//
// Libraries report events to whatever hooks are installed; the defaults
// drop everything. [LogHooks] writes every event to a charmbracelet logger
// at debug level, which is what `ghgraph --verbose` installs:
//
//	restore := observability.Install(observability.NewLogHooks(logger).All())
//	defer restore()
//
// Reporting an event:
//
//	observability.Pipeline().OnLayoutStart(ctx, nodeCount)
//	// ... compute positions ...
//	observability.Pipeline().OnLayoutComplete(ctx, time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the extract, build, layout and render
// stages.
type PipelineHooks interface {
	OnExtractStart(ctx context.Context, entityTypes, relations int)
	OnExtractComplete(ctx context.Context, nodes, edges int, err error)

	OnBuildComplete(ctx context.Context, entities int, duration time.Duration)

	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType names the producer,
// e.g. "extraction" or "ossinsight".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives outgoing requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records a transport failure (network error, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// Hooks bundles one implementation per event family. Nil fields keep the
// currently installed hooks.
type Hooks struct {
	Pipeline PipelineHooks
	Cache    CacheHooks
	HTTP     HTTPHooks
}

// NoopPipelineHooks drops pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnExtractStart(context.Context, int, int)                         {}
func (NoopPipelineHooks) OnExtractComplete(context.Context, int, int, error)               {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, time.Duration)              {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, time.Duration, error)           {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks drops cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks drops HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

func noop() Hooks {
	return Hooks{Pipeline: NoopPipelineHooks{}, Cache: NoopCacheHooks{}, HTTP: NoopHTTPHooks{}}
}

var current atomic.Pointer[Hooks]

func init() { Reset() }

func load() *Hooks { return current.Load() }

// Install replaces the non-nil hooks of h and returns a function restoring
// the previous set.
func Install(h Hooks) (restore func()) {
	prev := load()
	next := *prev
	if h.Pipeline != nil {
		next.Pipeline = h.Pipeline
	}
	if h.Cache != nil {
		next.Cache = h.Cache
	}
	if h.HTTP != nil {
		next.HTTP = h.HTTP
	}
	current.Store(&next)
	return func() { current.Store(prev) }
}

// SetPipelineHooks installs pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) { Install(Hooks{Pipeline: h}) }

// SetCacheHooks installs cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) { Install(Hooks{Cache: h}) }

// SetHTTPHooks installs HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) { Install(Hooks{HTTP: h}) }

func Pipeline() PipelineHooks { return load().Pipeline }

func Cache() CacheHooks { return load().Cache }

func HTTP() HTTPHooks { return load().HTTP }

// Reset restores the no-op hooks.
func Reset() {
	h := noop()
	current.Store(&h)
}
