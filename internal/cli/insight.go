package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	ghErrors "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/integrations/ossinsight"
	"github.com/matzehuels/ghgraph/pkg/pipeline"
)

// insightCommand creates the insight command.
func (c *CLI) insightCommand() *cobra.Command {
	var (
		dir     string
		top     int
		geo     string
		refresh bool
		width   int
		height  int
	)

	cmd := &cobra.Command{
		Use:   "insight <owner/name>",
		Short: "Chart repository analytics from OSS Insight",
		Long: `Insight fetches star history, commit times, pull request and issue
statistics, contributor geography and company affiliation of a public
repository from the OSS Insight API and writes one PNG chart per dataset.
Datasets without data are skipped.`,
		Example: `  ghgraph insight DeepLabCut/DeepLabCut --dir charts
  ghgraph insight epfl/dlc --geo stargazers --top 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := ghErrors.ParseRepoSlug(args[0])
			if err != nil {
				return err
			}
			metric, err := ossinsight.ParseGeoMetric(geo)
			if err != nil {
				return ghErrors.Wrap(ghErrors.ErrCodeInvalidInput, err, "--geo")
			}
			return c.runInsight(cmd, pipeline.InsightOptions{
				Owner:     owner,
				Repo:      repo,
				OutputDir: dir,
				Top:       top,
				GeoMetric: metric,
				Refresh:   refresh,
				Width:     width,
				Height:    height,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&dir, "dir", "d", "insight", "output directory for charts")
	flags.IntVar(&top, "top", pipeline.DefaultTop, "entries shown in country, company and contributor rankings")
	flags.StringVar(&geo, "geo", string(ossinsight.GeoPRCreators), "geo distribution population: pr_creators, stargazers or issue_creators")
	flags.BoolVar(&refresh, "refresh", false, "ignore cached API responses")
	flags.IntVar(&width, "width", 0, "chart width in pixels")
	flags.IntVar(&height, "height", 0, "chart height in pixels")
	_ = cmd.RegisterFlagCompletionFunc("geo", fixedCompletions(
		string(ossinsight.GeoPRCreators), string(ossinsight.GeoStargazers), string(ossinsight.GeoIssueCreators)))
	return cmd
}

func (c *CLI) runInsight(cmd *cobra.Command, opts pipeline.InsightOptions) error {
	ctx := cmd.Context()
	runner, cfg, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	opts.BaseURL = cfg.Insight.BaseURL
	opts.CacheTTL = cfg.Insight.TTL.Duration
	opts.Logger = loggerFromContext(ctx)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching analytics for %s/%s...", opts.Owner, opts.Repo))
	spinner.Start()
	report, err := runner.Insight(ctx, opts)
	if err != nil {
		spinner.StopWithError("Insight failed")
		return err
	}
	spinner.Stop()

	printInsight(report)
	return nil
}

func printInsight(r *pipeline.InsightReport) {
	fmt.Fprintln(stdout, StyleTitle.Render(r.Repo.FullName))
	if r.Repo.Description != "" {
		printDetail("%s", r.Repo.Description)
	}
	printKeyValue("Stars", fmt.Sprint(r.Repo.StargazersCount))
	printKeyValue("Forks", fmt.Sprint(r.Repo.ForksCount))
	printKeyValue("Pull requests", fmt.Sprintf("%d by %d creators", r.PROverview.PullRequests.Int(), r.PROverview.PullRequestCreators.Int()))
	printKeyValue("PR reviews", fmt.Sprintf("%d by %d reviewers", r.PROverview.PullRequestReviews.Int(), r.PROverview.PullRequestReviewers.Int()))
	printKeyValue("Issues", fmt.Sprintf("%d by %d creators", r.IssueOverview.Issues.Int(), r.IssueOverview.IssueCreators.Int()))
	printKeyValue("Issue comments", fmt.Sprintf("%d by %d commenters", r.IssueOverview.IssueComments.Int(), r.IssueOverview.IssueCommenters.Int()))

	if names := rankNames(r.PRContributors); names != "" {
		printKeyValue("Top PR authors", names)
	}
	if names := rankNames(r.IssueContributors); names != "" {
		printKeyValue("Top commenters", names)
	}
	if names := companyNames(r.IssueCreatorsCompany); names != "" {
		printKeyValue("Issue companies", names)
	}

	fmt.Fprintln(stdout)
	printSuccess("Wrote %s charts", StyleNumber.Render(fmt.Sprint(len(r.Charts))))
	for _, c := range r.Charts {
		printFile(c.Path)
	}
	for _, name := range r.Skipped {
		printDetail("skipped %s (no data)", name)
	}
}

func rankNames(ranks []ossinsight.ContributorRank) string {
	names := make([]string, len(ranks))
	for i, r := range ranks {
		names[i] = fmt.Sprintf("%s (%d)", r.Login, r.Events.Int())
	}
	return strings.Join(names, ", ")
}

func companyNames(entries []ossinsight.CompanyEntry) string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.CompanyName
	}
	return strings.Join(names, ", ")
}
