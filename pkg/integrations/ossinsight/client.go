package ossinsight

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/ghgraph/pkg/cache"
	"github.com/matzehuels/ghgraph/pkg/integrations"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.ossinsight.io"

// Client provides access to the OSS Insight API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client caching decoded responses in backend for
// cacheTTL. A nil backend disables caching.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "ossinsight", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at another server.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// get fetches path, unwraps the data envelope into v and caches v.
func get[T any](ctx context.Context, c *Client, path string, refresh bool) (T, error) {
	var v T
	err := c.Cached(ctx, path, refresh, &v, func() error {
		var env envelope[T]
		if err := c.Get(ctx, c.baseURL+path, &env); err != nil {
			return err
		}
		v = env.Data
		return nil
	})
	return v, err
}

func query(name string, repoID int64, extra ...string) string {
	q := url.Values{"repoId": {strconv.FormatInt(repoID, 10)}}
	for i := 0; i+1 < len(extra); i += 2 {
		q.Set(extra[i], extra[i+1])
	}
	return "/q/" + name + "?" + q.Encode()
}

// RepoInfo resolves owner/repo to its live metadata, including the numeric
// id the analytics endpoints take.
func (c *Client) RepoInfo(ctx context.Context, owner, repo string, refresh bool) (*RepoInfo, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("repository must be owner/name, got %q/%q", owner, repo)
	}
	path := "/gh/repo/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)
	info, err := get[RepoInfo](ctx, c, path, refresh)
	if err != nil {
		return nil, fmt.Errorf("repo info %s/%s: %w", owner, repo, err)
	}
	return &info, nil
}

// StarHistory returns the monthly cumulative stargazer count.
func (c *Client) StarHistory(ctx context.Context, repoID int64, refresh bool) ([]StarPoint, error) {
	return get[[]StarPoint](ctx, c, query("analyze-stars-history", repoID), refresh)
}

// CommitTimeDistribution returns pushes per weekday and hour over the last
// year.
func (c *Client) CommitTimeDistribution(ctx context.Context, repoID int64, refresh bool) ([]CommitSlot, error) {
	return get[[]CommitSlot](ctx, c, query("analyze-commits-time-distribution", repoID, "period", "last_1_year"), refresh)
}

// PROverview returns the pull request summary, or a zero value when the
// API has none.
func (c *Client) PROverview(ctx context.Context, repoID int64, refresh bool) (PROverview, error) {
	rows, err := get[[]PROverview](ctx, c, query("analyze-repo-pr-overview", repoID), refresh)
	if err != nil || len(rows) == 0 {
		return PROverview{}, err
	}
	return rows[0], nil
}

// PRSizeHistory returns monthly pull request counts per size class.
func (c *Client) PRSizeHistory(ctx context.Context, repoID int64, refresh bool) ([]PRSizePoint, error) {
	return get[[]PRSizePoint](ctx, c, query("analyze-pull-requests-size-per-month", repoID), refresh)
}

// PRMergeTime returns the monthly open-to-merged percentiles in hours.
func (c *Client) PRMergeTime(ctx context.Context, repoID int64, refresh bool) ([]DurationPoint, error) {
	return get[[]DurationPoint](ctx, c, query("analyze-pull-request-open-to-merged", repoID), refresh)
}

// IssueOverview returns the issue summary, or a zero value when the API
// has none.
func (c *Client) IssueOverview(ctx context.Context, repoID int64, refresh bool) (IssueOverview, error) {
	rows, err := get[[]IssueOverview](ctx, c, query("analyze-repo-issue-overview", repoID), refresh)
	if err != nil || len(rows) == 0 {
		return IssueOverview{}, err
	}
	return rows[0], nil
}

// IssueResponseTime returns the monthly open-to-first-response percentiles
// in hours.
func (c *Client) IssueResponseTime(ctx context.Context, repoID int64, refresh bool) ([]DurationPoint, error) {
	return get[[]DurationPoint](ctx, c, query("analyze-issue-open-to-first-responded", repoID), refresh)
}

// IssuesOpenedClosed returns monthly opened and closed issue counts.
func (c *Client) IssuesOpenedClosed(ctx context.Context, repoID int64, refresh bool) ([]IssueFlowPoint, error) {
	return get[[]IssueFlowPoint](ctx, c, query("analyze-issue-opened-and-closed", repoID), refresh)
}

// GeoDistribution returns the countries of the population selected by
// metric, largest first as the API orders them.
func (c *Client) GeoDistribution(ctx context.Context, repoID int64, metric GeoMetric, refresh bool) ([]GeoEntry, error) {
	var path string
	switch metric {
	case GeoPRCreators:
		path = query("analyze-pull-request-creators-map", repoID)
	case GeoStargazers:
		path = query("analyze-stars-map", repoID, "period", "all_times")
	case GeoIssueCreators:
		path = query("analyze-issue-creators-map", repoID)
	default:
		_, err := ParseGeoMetric(string(metric))
		return nil, err
	}
	return get[[]GeoEntry](ctx, c, path, refresh)
}

// CompanyDistribution returns the companies of pull request creators.
func (c *Client) CompanyDistribution(ctx context.Context, repoID int64, refresh bool) ([]CompanyEntry, error) {
	return get[[]CompanyEntry](ctx, c, query("analyze-pull-request-creators-company", repoID), refresh)
}

// IssueCreatorsCompany returns the companies of issue creators.
func (c *Client) IssueCreatorsCompany(ctx context.Context, repoID int64, refresh bool) ([]CompanyEntry, error) {
	return get[[]CompanyEntry](ctx, c, query("analyze-issue-creators-company", repoID), refresh)
}

// TrendingPRContributors ranks pull request contributors, bots excluded.
func (c *Client) TrendingPRContributors(ctx context.Context, repoID int64, refresh bool) ([]ContributorRank, error) {
	return get[[]ContributorRank](ctx, c, query("analyze-people-code-pr-contribution-rank", repoID, "excludeBots", "true"), refresh)
}

// TrendingIssueContributors ranks issue commenters, bots excluded.
func (c *Client) TrendingIssueContributors(ctx context.Context, repoID int64, refresh bool) ([]ContributorRank, error) {
	return get[[]ContributorRank](ctx, c, query("analyze-people-issue-comment-contribution-rank", repoID, "excludeBots", "true"), refresh)
}
