package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	ghErrors "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/pipeline"
	"github.com/matzehuels/ghgraph/pkg/render"
	"github.com/matzehuels/ghgraph/pkg/render/nodelink"
)

// drawFlags holds the image flags shared by render and clusters.
type drawFlags struct {
	formats     string
	width       int
	height      int
	seed        uint64
	exploration string
	manifest    string
}

func (f *drawFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.formats, "format", "f", "", "output formats, comma-separated: png, svg, dot, pdf (default from config)")
	flags.IntVar(&f.width, "width", 0, "image width in pixels (default from config)")
	flags.IntVar(&f.height, "height", 0, "image height in pixels (default from config)")
	flags.Uint64Var(&f.seed, "seed", 0, "layout seed (default from config)")
	flags.StringVar(&f.exploration, "exploration", "", "JSON file with seeds, visited and discovered nodes for coloring")
	flags.StringVar(&f.manifest, "manifest", "", "write a JSON manifest of the rendered files")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletions("png", "svg", "dot", "pdf"))
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		gf     graphFlags
		df     drawFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the whole collaboration graph into one image",
		Example: `  ghgraph render -o graph.png
  ghgraph render -o graph.svg -f svg,png --filter epfl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.renderPipelineOptions(gf, df)
			if err != nil {
				return err
			}
			opts.Mode = pipeline.ModeGraph
			opts.Output = output
			return c.runRender(cmd.Context(), opts, df.manifest)
		},
	}

	gf.register(cmd)
	df.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "graph.png", "output file; the extension is replaced per format")
	return cmd
}

// clustersCommand creates the clusters command.
func (c *CLI) clustersCommand() *cobra.Command {
	var (
		gf     graphFlags
		df     drawFlags
		dir    string
		prefix string
		pick   bool
	)

	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Render one image per connected cluster",
		Long: `Clusters splits the graph into weakly connected components and draws
each into {prefix}_cluster_NN.{ext}, largest first. With --pick an
interactive list selects which clusters to draw.`,
		Example: `  ghgraph clusters --dir out
  ghgraph clusters --dir out --prefix epfl --pick`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.renderPipelineOptions(gf, df)
			if err != nil {
				return err
			}
			opts.Mode = pipeline.ModeClusters
			opts.OutputDir = dir
			opts.Prefix = prefix
			if pick {
				return c.runPick(cmd.Context(), opts, df.manifest)
			}
			return c.runRender(cmd.Context(), opts, df.manifest)
		},
	}

	gf.register(cmd)
	df.register(cmd)
	cmd.Flags().StringVarP(&dir, "dir", "d", "clusters", "output directory")
	cmd.Flags().StringVar(&prefix, "prefix", "", "file name prefix")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose clusters interactively")
	return cmd
}

func (c *CLI) renderPipelineOptions(gf graphFlags, df drawFlags) (pipeline.Options, error) {
	opts, err := c.pipelineOptions(gf)
	if err != nil {
		return opts, err
	}
	if opts.Render, err = renderOptions(c.cfg, df.formats, df.width, df.height, df.seed); err != nil {
		return opts, err
	}
	if df.exploration != "" {
		if opts.Exploration, err = loadExploration(df.exploration); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, manifest string) error {
	runner, _, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close(ctx)
	defer runner.Cache.Close()

	spinner := newSpinnerWithContext(ctx, "Extracting graph...")
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	return reportRender(res, manifest)
}

// runPick extracts and builds the graph, lets the user choose clusters and
// renders only those.
func (c *CLI) runPick(ctx context.Context, opts pipeline.Options, manifest string) error {
	runner, _, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close(ctx)
	defer runner.Cache.Close()

	rows, _, err := runner.Rows(ctx, opts)
	if err != nil {
		return err
	}
	g := runner.Build(ctx, rows, opts)
	clusters := nodelink.Clusters(g, opts.Exploration)
	if len(clusters) == 0 {
		printWarning("Nothing to render: the graph is empty")
		return nil
	}

	result, err := tea.NewProgram(NewClusterListModel(clusters), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("cluster picker: %w", err)
	}
	model := result.(ClusterListModel)
	if model.Quit || len(model.Selected) == 0 {
		printInfo("No clusters selected")
		return nil
	}
	opts.Render.Only = model.Selected

	prog := newProgress(loggerFromContext(ctx))
	m, err := runner.Render(ctx, g, opts)
	if err != nil {
		return err
	}
	prog.done("rendered clusters", "files", len(m.Files))
	return reportRender(&pipeline.Result{Graph: g, Manifest: m, Rows: rows}, manifest)
}

func reportRender(res *pipeline.Result, manifest string) error {
	if res.Manifest == nil || len(res.Manifest.Files) == 0 {
		printWarning("Nothing rendered")
		return nil
	}
	printSuccess("Rendered %s files", StyleNumber.Render(fmt.Sprint(len(res.Manifest.Files))))
	if res.Stats.Rows > 0 {
		printStats(res.Stats.Nodes, res.Stats.Edges, res.Stats.Rows, res.CacheInfo.ExtractHit)
	}
	for _, f := range res.Manifest.Files {
		printFile(f.Path)
	}
	if manifest == "" {
		return nil
	}
	data, err := json.MarshalIndent(res.Manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := render.WriteFile(manifest, append(data, '\n')); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	printDetail("Manifest: %s", manifest)
	return nil
}

func loadExploration(path string) (*nodelink.Exploration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ghErrors.Wrap(ghErrors.ErrCodeInvalidInput, err, "read exploration")
	}
	var x nodelink.Exploration
	if err := json.Unmarshal(data, &x); err != nil {
		return nil, ghErrors.Wrap(ghErrors.ErrCodeInvalidInput, err, "parse exploration %s", path)
	}
	return &x, nil
}
