package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghgraph/pkg/cache"
	ghErrors "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/integrations"
	"github.com/matzehuels/ghgraph/pkg/integrations/ossinsight"
	"github.com/matzehuels/ghgraph/pkg/render"
	"github.com/matzehuels/ghgraph/pkg/render/chart"
)

// Insight defaults.
const (
	DefaultInsightTTL = time.Hour
	DefaultTop        = 10
)

// Chart file names written by [Runner.Insight].
const (
	ChartStarHistory         = "star_history.png"
	ChartCommitsHeatmap      = "commits_heatmap.png"
	ChartPRSizeHistory       = "pr_size_history.png"
	ChartPRMergeTime         = "pr_merge_time.png"
	ChartIssueResponseTime   = "issue_response_time.png"
	ChartIssueOpenedClosed   = "issue_opened_closed.png"
	ChartGeoDistribution     = "geo_distribution.png"
	ChartCompanyDistribution = "company_distribution.png"
)

var (
	weekdays     = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	prSizeColors = []string{"#e8f5e9", "#c8e6c9", "#a5d6a7", "#81c784", "#66bb6a", "#4caf50"}
)

// InsightOptions configures an analytics run for one repository.
type InsightOptions struct {
	Owner     string
	Repo      string
	OutputDir string

	BaseURL  string
	CacheTTL time.Duration
	Refresh  bool

	// Top bounds the country, company and contributor rankings.
	Top       int
	GeoMetric ossinsight.GeoMetric

	Width, Height int

	Logger *log.Logger
}

func (o *InsightOptions) validate() error {
	if o.Owner == "" || o.Repo == "" {
		return ghErrors.New(ghErrors.ErrCodeInvalidInput, "repository owner and name are required")
	}
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.BaseURL == "" {
		o.BaseURL = ossinsight.DefaultBaseURL
	}
	if err := ghErrors.ValidateURL(o.BaseURL); err != nil {
		return err
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultInsightTTL
	}
	if o.Top <= 0 {
		o.Top = DefaultTop
	}
	if o.GeoMetric == "" {
		o.GeoMetric = ossinsight.GeoPRCreators
	}
	if _, err := ossinsight.ParseGeoMetric(string(o.GeoMetric)); err != nil {
		return ghErrors.Wrap(ghErrors.ErrCodeInvalidInput, err, "geo metric")
	}
	return nil
}

// InsightReport is what an analytics run fetched and drew.
type InsightReport struct {
	Repo          *ossinsight.RepoInfo
	PROverview    ossinsight.PROverview
	IssueOverview ossinsight.IssueOverview

	Companies            []ossinsight.CompanyEntry
	PRContributors       []ossinsight.ContributorRank
	IssueContributors    []ossinsight.ContributorRank
	IssueCreatorsCompany []ossinsight.CompanyEntry

	Charts  []ChartFile
	Skipped []string
}

// ChartFile is one written chart.
type ChartFile struct {
	Name string
	Path string
	Rows int
}

// chartJob fetches one dataset and draws it. It returns the PNG and the
// number of data rows, or chart.ErrEmpty.
type chartJob struct {
	name string
	draw func(ctx context.Context) ([]byte, int, error)
}

// Insight fetches the OSS Insight analytics of one repository, writes one
// PNG chart per non-empty dataset into opts.OutputDir and returns the
// summary figures. Any failed request aborts the run; nothing is retried.
func (r *Runner) Insight(ctx context.Context, opts InsightOptions) (*InsightReport, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	client := ossinsight.NewClient(r.Cache, opts.CacheTTL).WithBaseURL(opts.BaseURL)
	// Responses of different servers must not share cache entries.
	client.WithKeyer(cache.NewScopedKeyer(r.Keyer, opts.BaseURL+"|"))

	info, err := client.RepoInfo(ctx, opts.Owner, opts.Repo, opts.Refresh)
	if err != nil {
		return nil, insightError(err, "repository %s/%s", opts.Owner, opts.Repo)
	}
	logger.Info("repository", "name", info.FullName, "id", info.ID, "stars", info.StargazersCount)

	report := &InsightReport{Repo: info}
	id, refresh := info.ID, opts.Refresh

	if report.PROverview, err = client.PROverview(ctx, id, refresh); err != nil {
		return nil, insightError(err, "pr overview")
	}
	if report.IssueOverview, err = client.IssueOverview(ctx, id, refresh); err != nil {
		return nil, insightError(err, "issue overview")
	}
	if report.Companies, err = client.CompanyDistribution(ctx, id, refresh); err != nil {
		return nil, insightError(err, "company distribution")
	}
	if report.PRContributors, err = client.TrendingPRContributors(ctx, id, refresh); err != nil {
		return nil, insightError(err, "trending pr contributors")
	}
	if report.IssueContributors, err = client.TrendingIssueContributors(ctx, id, refresh); err != nil {
		return nil, insightError(err, "trending issue contributors")
	}
	if report.IssueCreatorsCompany, err = client.IssueCreatorsCompany(ctx, id, refresh); err != nil {
		return nil, insightError(err, "issue creators company")
	}
	report.Companies = head(report.Companies, opts.Top)
	report.PRContributors = head(report.PRContributors, opts.Top)
	report.IssueContributors = head(report.IssueContributors, opts.Top)
	report.IssueCreatorsCompany = head(report.IssueCreatorsCompany, opts.Top)

	for _, job := range insightCharts(client, info, opts, report) {
		data, rows, err := job.draw(ctx)
		if errors.Is(err, chart.ErrEmpty) {
			logger.Info("no data, skipping chart", "chart", job.name)
			report.Skipped = append(report.Skipped, job.name)
			continue
		}
		if err != nil {
			return nil, insightError(err, "chart %s", job.name)
		}
		path := filepath.Join(opts.OutputDir, job.name)
		if err := render.WriteFile(path, data); err != nil {
			return nil, ghErrors.Wrap(ghErrors.ErrCodeRenderFailed, err, "write %s", path)
		}
		logger.Debug("chart written", "path", path, "rows", rows)
		report.Charts = append(report.Charts, ChartFile{Name: job.name, Path: path, Rows: rows})
	}
	return report, nil
}

func insightCharts(c *ossinsight.Client, info *ossinsight.RepoInfo, opts InsightOptions, report *InsightReport) []chartJob {
	id, refresh, slug := info.ID, opts.Refresh, info.FullName
	if slug == "" {
		slug = opts.Owner + "/" + opts.Repo
	}
	base := chart.Options{Width: opts.Width, Height: opts.Height}
	with := func(title, x, y string) chart.Options {
		o := base
		o.Title, o.XLabel, o.YLabel = title, x, y
		return o
	}

	return []chartJob{
		{ChartStarHistory, func(ctx context.Context) ([]byte, int, error) {
			pts, err := c.StarHistory(ctx, id, refresh)
			if err != nil {
				return nil, 0, err
			}
			series := chart.Series{Name: "Stars", Color: "#1f77b4"}
			for _, p := range pts {
				series.Points = append(series.Points, chart.Point{T: p.Date.Time, V: float64(p.Stargazers)})
			}
			data, err := chart.Line(with("Stargazers Over Time - "+slug, "Date", "Cumulative Stars"), series)
			return data, len(pts), err
		}},
		{ChartCommitsHeatmap, func(ctx context.Context) ([]byte, int, error) {
			slots, err := c.CommitTimeDistribution(ctx, id, refresh)
			if err != nil {
				return nil, 0, err
			}
			if len(slots) == 0 {
				return nil, 0, chart.ErrEmpty
			}
			hours := make([]string, 24)
			for h := range hours {
				hours[h] = strconv.Itoa(h)
			}
			values := make([][]float64, len(weekdays))
			for d := range values {
				values[d] = make([]float64, len(hours))
			}
			for _, s := range slots {
				if s.DayOfWeek < 0 || s.DayOfWeek >= len(weekdays) || s.Hour < 0 || s.Hour >= len(hours) {
					continue
				}
				values[s.DayOfWeek][s.Hour] += float64(s.Pushes)
			}
			data, err := chart.Heatmap(with("Commit Time Distribution - "+slug, "Hour", "Day"), weekdays, hours, values)
			return data, len(slots), err
		}},
		{ChartPRSizeHistory, func(ctx context.Context) ([]byte, int, error) {
			pts, err := c.PRSizeHistory(ctx, id, refresh)
			if err != nil {
				return nil, 0, err
			}
			stacks := make([]chart.Stack, len(pts))
			for i, p := range pts {
				stacks[i] = chart.Stack{T: p.Date.Time, Values: p.Values()}
			}
			data, err := chart.StackedBars(with("PR Size Distribution Over Time - "+slug, "Date", "Number of PRs"),
				ossinsight.PRSizeBuckets, prSizeColors, stacks)
			return data, len(pts), err
		}},
		{ChartPRMergeTime, durationChart(c.PRMergeTime, id, refresh,
			with("Median PR Merge Time (Hours) - "+slug, "Date", "Hours to Merge"), "Median Merge Time", "#000080")},
		{ChartIssueResponseTime, durationChart(c.IssueResponseTime, id, refresh,
			with("Median Issue Response Time (Hours) - "+slug, "Date", "Hours to First Response"), "Median Response Time", "#b22222")},
		{ChartIssueOpenedClosed, func(ctx context.Context) ([]byte, int, error) {
			pts, err := c.IssuesOpenedClosed(ctx, id, refresh)
			if err != nil {
				return nil, 0, err
			}
			opened := chart.Series{Name: "Opened", Color: "#008000"}
			closed := chart.Series{Name: "Closed", Color: "#ff0000"}
			for _, p := range pts {
				opened.Points = append(opened.Points, chart.Point{T: p.Date.Time, V: float64(p.Opened)})
				closed.Points = append(closed.Points, chart.Point{T: p.Date.Time, V: float64(p.Closed)})
			}
			data, err := chart.Line(with("Issues Opened vs Closed - "+slug, "Date", "Count"), opened, closed)
			return data, len(pts), err
		}},
		{ChartGeoDistribution, func(ctx context.Context) ([]byte, int, error) {
			entries, err := c.GeoDistribution(ctx, id, opts.GeoMetric, refresh)
			if err != nil {
				return nil, 0, err
			}
			entries = head(entries, opts.Top)
			bars := make([]chart.Bar, len(entries))
			for i, e := range entries {
				bars[i] = chart.Bar{Label: e.CountryOrArea, Value: float64(e.Count)}
			}
			title := fmt.Sprintf("Top %d Contributor Countries (%s)", opts.Top, geoTitle(opts.GeoMetric))
			data, err := chart.Bars(with(title, "Country", "Number of Contributors"), "#008080", bars)
			return data, len(entries), err
		}},
		{ChartCompanyDistribution, func(context.Context) ([]byte, int, error) {
			bars := make([]chart.Bar, len(report.Companies))
			for i, e := range report.Companies {
				bars[i] = chart.Bar{Label: e.CompanyName, Value: float64(e.CodeContributors)}
			}
			title := fmt.Sprintf("Top %d Contributor Companies", opts.Top)
			data, err := chart.Bars(with(title, "Company", "Number of Contributors"), "#ffa500", bars)
			return data, len(bars), err
		}},
	}
}

func durationChart(
	fetch func(context.Context, int64, bool) ([]ossinsight.DurationPoint, error),
	id int64, refresh bool, opts chart.Options, name, color string,
) func(context.Context) ([]byte, int, error) {
	return func(ctx context.Context) ([]byte, int, error) {
		pts, err := fetch(ctx, id, refresh)
		if err != nil {
			return nil, 0, err
		}
		series := chart.Series{Name: name, Color: color}
		for _, p := range pts {
			series.Points = append(series.Points, chart.Point{T: p.Date.Time, V: float64(p.P50)})
		}
		data, err := chart.Line(opts, series)
		return data, len(pts), err
	}
}

func geoTitle(m ossinsight.GeoMetric) string {
	switch m {
	case ossinsight.GeoStargazers:
		return "Stargazers"
	case ossinsight.GeoIssueCreators:
		return "Issue Creators"
	default:
		return "PR Creators"
	}
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// insightError maps client failures onto error codes.
func insightError(err error, format string, args ...any) error {
	code := ghErrors.ErrCodeRenderFailed
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		code = ghErrors.ErrCodeNotFound
	case errors.Is(err, integrations.ErrNetwork), errors.Is(err, integrations.ErrStatus):
		code = ghErrors.ErrCodeNetwork
	case errors.Is(err, integrations.ErrDecode):
		code = ghErrors.ErrCodeInternal
	}
	return ghErrors.Wrap(code, err, format, args...)
}
