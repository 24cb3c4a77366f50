package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	ghErrors "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/model"
	"github.com/matzehuels/ghgraph/pkg/pipeline"
	"github.com/matzehuels/ghgraph/pkg/table"
)

// Row output formats.
const (
	rowsJSON = "json"
	rowsCSV  = "csv"
)

// graphFlags holds the source selection flags shared by extract, render
// and clusters.
type graphFlags struct {
	types   string
	filter  string
	refresh bool
}

func (f *graphFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.types, "types", "", "entity types to extract, comma-separated (default user,org,repo)")
	flags.StringVar(&f.filter, "filter", "", "keep rows whose source or target matches this regular expression")
	flags.BoolVar(&f.refresh, "refresh", false, "ignore cached extractions")
	_ = cmd.RegisterFlagCompletionFunc("types", fixedCompletions("user", "org", "repo"))
}

// pipelineOptions builds pipeline options from the config and flags.
func (c *CLI) pipelineOptions(f graphFlags) (pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	types, err := parseTypes(f.types)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		URI:      cfg.Neo4j.URI,
		Database: cfg.Neo4j.Database,
		Types:    types,
		Schema:   model.DefaultSchema(),
		Filter:   f.filter,
		Refresh:  f.refresh,
		CacheTTL: cfg.Cache.TTL.Duration,
	}, nil
}

// extractCommand creates the extract command.
func (c *CLI) extractCommand() *cobra.Command {
	var (
		gf     graphFlags
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Write the relationship table as JSON or CSV",
		Long: `Extract reads users, organizations and repositories from Neo4j and
writes one row per relationship: source, target, relationship kind and the
entity types and ids of both ends.`,
		Example: `  ghgraph extract -o rows.json
  ghgraph extract --format csv --filter deeplabcut > rows.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = rowsFormatFromPath(output)
			}
			if format != rowsJSON && format != rowsCSV {
				return ghErrors.New(ghErrors.ErrCodeInvalidFormat, "unknown row format %q (want json or csv)", format)
			}
			return c.runExtract(cmd, gf, output, format)
		},
	}

	gf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "", "row format: json or csv (default from --output extension, else json)")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletions(rowsJSON, rowsCSV))
	return cmd
}

func (c *CLI) runExtract(cmd *cobra.Command, gf graphFlags, output, format string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, _, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close(ctx)
	defer runner.Cache.Close()

	opts, err := c.pipelineOptions(gf)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	rows, hit, err := runner.Rows(ctx, opts)
	if err != nil {
		return err
	}
	prog.done("extracted rows", "rows", len(rows), "cached", hit)

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return err
		}
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if format == rowsCSV {
		err = table.WriteCSV(w, rows)
	} else {
		err = table.WriteJSON(w, rows)
	}
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	if output != "" {
		printSuccess("Wrote %s rows", StyleNumber.Render(fmt.Sprint(len(rows))))
		printFile(output)
		counts := table.Count(rows)
		for _, rel := range opts.Schema.Relations {
			if n := counts[rel.Kind]; n > 0 {
				printDetail("%s: %d", rel.Kind, n)
			}
		}
	}
	return nil
}

func rowsFormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return rowsCSV
	}
	return rowsJSON
}
