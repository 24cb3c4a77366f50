// Package integrations provides the shared HTTP client used by the REST API
// clients in its subpackages.
//
//   - [ossinsight]: repository analytics from the OSS Insight public API
//
// # Client Pattern
//
// API clients embed [Client] and cache every decoded response:
//
//	client := ossinsight.NewClient(backend, 24*time.Hour)
//	info, err := client.RepoInfo(ctx, "owner", "repo", false)  // false = use cache
//
// [Client] handles:
//   - GET requests through an instrumented transport (see httputil)
//   - Response caching in a [cache.Cache] under a per-API namespace
//   - Status checking: any non-2xx response fails with [ErrStatus]
//
// Nothing is retried. A failed request fails the call that issued it.
//
// [ossinsight]: github.com/matzehuels/ghgraph/pkg/integrations/ossinsight
package integrations
