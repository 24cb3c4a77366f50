package ossinsight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Number decodes a JSON number, a numeric string, or null (as zero).
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s = strings.TrimSpace(s); s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("number %q: %w", s, err)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Int returns n truncated to an int.
func (n Number) Int() int { return int(n) }

// Month is a calendar month sent as "2006-01-02", "2006-01" or RFC 3339.
type Month struct{ time.Time }

var monthLayouts = []string{"2006-01-02", "2006-01", time.RFC3339, "2006-01-02 15:04:05"}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Month) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		m.Time = time.Time{}
		return nil
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			m.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("month %q: unrecognized date format", s)
}

// MarshalJSON implements json.Marshaler.
func (m Month) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(m.Format("2006-01-02"))
}

// RepoInfo is the live GitHub metadata of a repository.
type RepoInfo struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	Description     string `json:"description"`
	HTMLURL         string `json:"html_url"`
	Language        string `json:"language"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	OpenIssuesCount int    `json:"open_issues_count"`
}

// StarPoint is the cumulative stargazer count at the end of a month.
type StarPoint struct {
	Date       Month  `json:"event_month"`
	Stargazers Number `json:"total"`
}

// CommitSlot counts pushes in one weekday/hour slot. DayOfWeek 0 is Sunday.
type CommitSlot struct {
	DayOfWeek int    `json:"dayofweek"`
	Hour      int    `json:"hour"`
	Pushes    Number `json:"pushes"`
}

// PROverview summarizes pull request activity.
type PROverview struct {
	PullRequests         Number `json:"pull_requests"`
	PullRequestCreators  Number `json:"pull_request_creators"`
	PullRequestReviews   Number `json:"pull_request_reviews"`
	PullRequestReviewers Number `json:"pull_request_reviewers"`
}

// PRSizeBuckets are the size classes of PRSizePoint, smallest first.
var PRSizeBuckets = []string{"xs", "s", "m", "l", "xl", "xxl"}

// PRSizePoint counts the pull requests of a month per size class.
type PRSizePoint struct {
	Date Month  `json:"event_month"`
	XS   Number `json:"xs"`
	S    Number `json:"s"`
	M    Number `json:"m"`
	L    Number `json:"l"`
	XL   Number `json:"xl"`
	XXL  Number `json:"xxl"`
}

// Values returns the counts in PRSizeBuckets order.
func (p PRSizePoint) Values() []float64 {
	return []float64{float64(p.XS), float64(p.S), float64(p.M), float64(p.L), float64(p.XL), float64(p.XXL)}
}

// DurationPoint holds the percentiles, in hours, of a monthly duration
// distribution such as open-to-merged.
type DurationPoint struct {
	Date Month  `json:"event_month"`
	P0   Number `json:"p0"`
	P25  Number `json:"p25"`
	P50  Number `json:"p50"`
	P75  Number `json:"p75"`
	P100 Number `json:"p100"`
}

// IssueOverview summarizes issue activity.
type IssueOverview struct {
	Issues          Number `json:"issues"`
	IssueCreators   Number `json:"issue_creators"`
	IssueComments   Number `json:"issue_comments"`
	IssueCommenters Number `json:"issue_commenters"`
}

// IssueFlowPoint counts the issues opened and closed in a month.
type IssueFlowPoint struct {
	Date   Month  `json:"event_month"`
	Opened Number `json:"opened"`
	Closed Number `json:"closed"`
}

// GeoEntry is the share of one country or area.
type GeoEntry struct {
	CountryOrArea string `json:"country_or_area"`
	Count         Number `json:"count"`
	Percentage    Number `json:"percentage"`
}

// CompanyEntry is the share of one company. Which count is set depends on
// the endpoint.
type CompanyEntry struct {
	CompanyName      string `json:"company_name"`
	CodeContributors Number `json:"code_contributors"`
	IssueCreators    Number `json:"issue_creators"`
	Proportion       Number `json:"proportion"`
}

// ContributorRank is one entry of a contribution ranking.
type ContributorRank struct {
	Login     string `json:"actor_login"`
	Events    Number `json:"events"`
	Additions Number `json:"additions"`
	Deletions Number `json:"deletions"`
}

// GeoMetric selects the population of a geographic distribution.
type GeoMetric string

const (
	GeoPRCreators    GeoMetric = "pr_creators"
	GeoStargazers    GeoMetric = "stargazers"
	GeoIssueCreators GeoMetric = "issue_creators"
)

// ParseGeoMetric validates s.
func ParseGeoMetric(s string) (GeoMetric, error) {
	switch m := GeoMetric(s); m {
	case GeoPRCreators, GeoStargazers, GeoIssueCreators:
		return m, nil
	}
	return "", fmt.Errorf("unknown geo metric %q (must be one of: pr_creators, stargazers, issue_creators)", s)
}
