package ossinsight

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/ghgraph/pkg/cache"
	"github.com/matzehuels/ghgraph/pkg/integrations"
)

// newServer answers each path (query string included) with the given body.
func newServer(t *testing.T, routes map[string]string) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, ok := routes[r.URL.RequestURI()]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(backend, time.Hour).WithBaseURL(server.URL)
	c.WithHTTPClient(server.Client())
	return c, &hits
}

func TestRepoInfo(t *testing.T) {
	c, _ := newServer(t, map[string]string{
		"/gh/repo/DeepLabCut/DeepLabCut": `{"data":{"id":126300497,"full_name":"DeepLabCut/DeepLabCut","stargazers_count":4500}}`,
	})

	info, err := c.RepoInfo(context.Background(), "DeepLabCut", "DeepLabCut", false)
	if err != nil {
		t.Fatalf("RepoInfo() error: %v", err)
	}
	if info.ID != 126300497 || info.FullName != "DeepLabCut/DeepLabCut" || info.StargazersCount != 4500 {
		t.Errorf("RepoInfo() = %+v", info)
	}
}

func TestRepoInfo_NotFound(t *testing.T) {
	c, _ := newServer(t, nil)
	_, err := c.RepoInfo(context.Background(), "nobody", "nothing", false)
	if !errors.Is(err, integrations.ErrStatus) || !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("RepoInfo() error = %v, want a 404 status error", err)
	}
}

func TestRepoInfo_RequiresOwnerAndName(t *testing.T) {
	c := NewClient(nil, 0)
	if _, err := c.RepoInfo(context.Background(), "", "repo", false); err == nil {
		t.Error("RepoInfo() with empty owner should fail")
	}
}

func TestStarHistory_StringNumbers(t *testing.T) {
	c, _ := newServer(t, map[string]string{
		"/q/analyze-stars-history?repoId=7": `{"data":[
			{"event_month":"2023-01-01","repo_id":7,"total":"10"},
			{"event_month":"2023-02-01","repo_id":7,"total":25}
		]}`,
	})

	got, err := c.StarHistory(context.Background(), 7, false)
	if err != nil {
		t.Fatalf("StarHistory() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d points, want 2", len(got))
	}
	if got[0].Stargazers != 10 || got[1].Stargazers != 25 {
		t.Errorf("stargazers = %v, %v", got[0].Stargazers, got[1].Stargazers)
	}
	if want := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC); !got[1].Date.Equal(want) {
		t.Errorf("date = %v, want %v", got[1].Date, want)
	}
}

func TestEndpoints_Paths(t *testing.T) {
	routes := map[string]string{
		"/q/analyze-commits-time-distribution?period=last_1_year&repoId=1":            `{"data":[{"dayofweek":1,"hour":9,"pushes":"4"}]}`,
		"/q/analyze-repo-pr-overview?repoId=1":                                        `{"data":[{"pull_requests":12,"pull_request_creators":"3"}]}`,
		"/q/analyze-pull-requests-size-per-month?repoId=1":                            `{"data":[{"event_month":"2024-01-01","xs":1,"s":2,"m":3,"l":4,"xl":5,"xxl":6}]}`,
		"/q/analyze-pull-request-open-to-merged?repoId=1":                             `{"data":[{"event_month":"2024-01-01","p50":"1.5"}]}`,
		"/q/analyze-repo-issue-overview?repoId=1":                                     `{"data":[]}`,
		"/q/analyze-issue-open-to-first-responded?repoId=1":                           `{"data":[{"event_month":"2024-01","p50":2}]}`,
		"/q/analyze-issue-opened-and-closed?repoId=1":                                 `{"data":[{"event_month":"2024-01-01","opened":5,"closed":3}]}`,
		"/q/analyze-stars-map?period=all_times&repoId=1":                              `{"data":[{"country_or_area":"CH","count":9}]}`,
		"/q/analyze-pull-request-creators-company?repoId=1":                           `{"data":[{"company_name":"EPFL","code_contributors":4}]}`,
		"/q/analyze-issue-creators-company?repoId=1":                                  `{"data":[{"company_name":"SDSC","issue_creators":2}]}`,
		"/q/analyze-people-code-pr-contribution-rank?excludeBots=true&repoId=1":       `{"data":[{"actor_login":"alice","events":8}]}`,
		"/q/analyze-people-issue-comment-contribution-rank?excludeBots=true&repoId=1": `{"data":[{"actor_login":"bob","events":"3"}]}`,
	}
	c, _ := newServer(t, routes)
	ctx := context.Background()

	slots, err := c.CommitTimeDistribution(ctx, 1, false)
	if err != nil || len(slots) != 1 || slots[0].Pushes != 4 || slots[0].Hour != 9 {
		t.Errorf("CommitTimeDistribution() = %+v, %v", slots, err)
	}
	pr, err := c.PROverview(ctx, 1, false)
	if err != nil || pr.PullRequests != 12 || pr.PullRequestCreators != 3 {
		t.Errorf("PROverview() = %+v, %v", pr, err)
	}
	sizes, err := c.PRSizeHistory(ctx, 1, false)
	if err != nil || len(sizes) != 1 {
		t.Fatalf("PRSizeHistory() = %+v, %v", sizes, err)
	}
	if diff := cmp.Diff([]float64{1, 2, 3, 4, 5, 6}, sizes[0].Values()); diff != "" {
		t.Errorf("PRSizePoint.Values() mismatch:\n%s", diff)
	}
	merge, err := c.PRMergeTime(ctx, 1, false)
	if err != nil || len(merge) != 1 || merge[0].P50 != 1.5 {
		t.Errorf("PRMergeTime() = %+v, %v", merge, err)
	}
	issues, err := c.IssueOverview(ctx, 1, false)
	if err != nil || issues != (IssueOverview{}) {
		t.Errorf("IssueOverview() on empty data = %+v, %v", issues, err)
	}
	resp, err := c.IssueResponseTime(ctx, 1, false)
	if err != nil || len(resp) != 1 || resp[0].Date.Month() != time.January {
		t.Errorf("IssueResponseTime() = %+v, %v", resp, err)
	}
	flow, err := c.IssuesOpenedClosed(ctx, 1, false)
	if err != nil || len(flow) != 1 || flow[0].Opened != 5 || flow[0].Closed != 3 {
		t.Errorf("IssuesOpenedClosed() = %+v, %v", flow, err)
	}
	geo, err := c.GeoDistribution(ctx, 1, GeoStargazers, false)
	if err != nil || len(geo) != 1 || geo[0].CountryOrArea != "CH" {
		t.Errorf("GeoDistribution() = %+v, %v", geo, err)
	}
	comp, err := c.CompanyDistribution(ctx, 1, false)
	if err != nil || len(comp) != 1 || comp[0].CodeContributors != 4 {
		t.Errorf("CompanyDistribution() = %+v, %v", comp, err)
	}
	icomp, err := c.IssueCreatorsCompany(ctx, 1, false)
	if err != nil || len(icomp) != 1 || icomp[0].IssueCreators != 2 {
		t.Errorf("IssueCreatorsCompany() = %+v, %v", icomp, err)
	}
	prRank, err := c.TrendingPRContributors(ctx, 1, false)
	if err != nil || len(prRank) != 1 || prRank[0].Login != "alice" {
		t.Errorf("TrendingPRContributors() = %+v, %v", prRank, err)
	}
	issueRank, err := c.TrendingIssueContributors(ctx, 1, false)
	if err != nil || len(issueRank) != 1 || issueRank[0].Events != 3 {
		t.Errorf("TrendingIssueContributors() = %+v, %v", issueRank, err)
	}
}

func TestGeoDistribution_UnknownMetric(t *testing.T) {
	c := NewClient(nil, 0)
	if _, err := c.GeoDistribution(context.Background(), 1, "followers", false); err == nil {
		t.Error("GeoDistribution() with unknown metric should fail")
	}
}

func TestResponsesAreCached(t *testing.T) {
	c, hits := newServer(t, map[string]string{
		"/q/analyze-stars-history?repoId=3": `{"data":[{"event_month":"2023-01-01","total":1}]}`,
	})
	ctx := context.Background()

	for range 3 {
		if _, err := c.StarHistory(ctx, 3, false); err != nil {
			t.Fatal(err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
	if _, err := c.StarHistory(ctx, 3, true); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("refresh should refetch, server saw %d requests", n)
	}
}

func TestServerError_NoRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(nil, 0).WithBaseURL(server.URL)
	c.WithHTTPClient(server.Client())

	_, err := c.StarHistory(context.Background(), 1, false)
	if !errors.Is(err, integrations.ErrStatus) {
		t.Errorf("StarHistory() error = %v, want ErrStatus", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server saw %d requests, want 1", hits.Load())
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    Number
		wantErr bool
	}{
		{`12`, 12, false},
		{`"12.5"`, 12.5, false},
		{`null`, 0, false},
		{`""`, 0, false},
		{`"many"`, 0, true},
	}
	for _, tt := range tests {
		var n Number
		err := json.Unmarshal([]byte(tt.in), &n)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && n != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, n, tt.want)
		}
	}
}

func TestMonth(t *testing.T) {
	for _, in := range []string{`"2024-03-01"`, `"2024-03"`, `"2024-03-01T00:00:00Z"`} {
		var m Month
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", in, err)
			continue
		}
		if m.Year() != 2024 || m.Month() != time.March {
			t.Errorf("Unmarshal(%s) = %v", in, m)
		}
	}
	var m Month
	if err := json.Unmarshal([]byte(`"March"`), &m); err == nil || !strings.Contains(err.Error(), "March") {
		t.Errorf("Unmarshal(March) error = %v", err)
	}
}
