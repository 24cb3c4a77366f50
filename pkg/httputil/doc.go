// Package httputil provides the HTTP plumbing shared by the REST clients.
//
// [NewClient] returns an *http.Client with a fixed timeout whose transport
// reports every request to the registered [observability.HTTPHooks]:
//
//	client := httputil.NewClient(10 * time.Second)
//	resp, err := client.Get("https://api.ossinsight.io/gh/repo/owner/name")
//
// Requests are never retried. A transport failure is reported through
// OnError and returned to the caller unchanged.
package httputil
