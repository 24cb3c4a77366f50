// Package ossinsight fetches repository analytics from the OSS Insight
// public REST API (https://api.ossinsight.io).
//
// Every endpoint answers with a JSON envelope whose "data" member holds the
// payload; [Client] unwraps it and decodes numeric fields that the API
// sends either as numbers or as strings. Repository endpoints are keyed by
// the numeric repository id that [Client.RepoInfo] resolves from an
// owner/name pair:
//
//	client := ossinsight.NewClient(backend, 24*time.Hour)
//	info, err := client.RepoInfo(ctx, "DeepLabCut", "DeepLabCut", false)
//	stars, err := client.StarHistory(ctx, info.ID, false)
//
// Any non-2xx response fails the call with [integrations.ErrStatus].
// Requests are not retried.
package ossinsight
