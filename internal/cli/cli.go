package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ghgraph/pkg/buildinfo"
	"github.com/matzehuels/ghgraph/pkg/cache"
	"github.com/matzehuels/ghgraph/pkg/config"
	ghErrors "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/extract"
	"github.com/matzehuels/ghgraph/pkg/extract/neo4j"
	"github.com/matzehuels/ghgraph/pkg/model"
	"github.com/matzehuels/ghgraph/pkg/observability"
	"github.com/matzehuels/ghgraph/pkg/pipeline"
	"github.com/matzehuels/ghgraph/pkg/render/nodelink"
)

const appName = "ghgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	verbose    bool

	cfg *config.Config
}

// New creates a CLI logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "ghgraph draws GitHub collaboration graphs stored in Neo4j",
		Long: `ghgraph reads users, organizations and repositories together with their
membership, ownership, contribution and fork relationships from a Neo4j
database and renders them as node-link images, either as one picture or one
picture per connected cluster. The insight command charts repository
analytics from the OSS Insight API.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				observability.Install(observability.NewLogHooks(c.Logger).All())
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging, including cache and HTTP traces")
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/ghgraph/config.toml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the extraction and API response cache")

	root.AddCommand(c.extractCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.clustersCommand())
	root.AddCommand(c.insightCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the settings once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.cfg = cfg
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use. The database is only
// contacted when an extraction misses the cache.
func (c *CLI) newRunner(ctx context.Context, needDB bool) (*pipeline.Runner, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if needDB {
		if err := cfg.RequireNeo4j(); err != nil {
			return nil, nil, err
		}
	}
	backend, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	connect := func(ctx context.Context) (extract.Querier, error) {
		c.Logger.Debug("connecting", "uri", cfg.Neo4j.URI, "database", cfg.Neo4j.Database)
		return neo4j.Open(ctx, cfg.Neo4j)
	}
	return pipeline.NewRunner(connect, backend, nil, loggerFromContext(ctx)), cfg, nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	opts, err := cfg.CacheOptions()
	if err != nil {
		return nil, err
	}
	backend, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, ghErrors.Wrap(ghErrors.ErrCodeInvalidConfig, err, "open %s cache", opts.Backend)
	}
	return backend, nil
}

// renderOptions merges config defaults and command flags.
func renderOptions(cfg *config.Config, formats string, width, height int, seed uint64) (nodelink.Options, error) {
	opts := nodelink.Options{
		Width:             cfg.Render.Width,
		Height:            cfg.Render.Height,
		Seed:              cfg.Render.Seed,
		LabelLimit:        cfg.Render.LabelLimit,
		ClusterLabelLimit: cfg.Render.ClusterLabelLimit,
		Capabilities:      nodelink.DetectCapabilities(),
	}
	if cfg.Render.Declutter != nil {
		opts.Capabilities.Declutter = *cfg.Render.Declutter
	}
	if width > 0 {
		opts.Width = width
	}
	if height > 0 {
		opts.Height = height
	}
	if seed > 0 {
		opts.Seed = seed
	}

	var err error
	if formats == "" {
		opts.Formats, err = cfg.Formats()
	} else {
		opts.Formats, err = parseFormats(formats)
	}
	return opts, err
}

// parseFormats parses a comma-separated format list.
func parseFormats(s string) ([]nodelink.Format, error) {
	var out []nodelink.Format
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := nodelink.ParseFormat(part)
		if err != nil {
			return nil, ghErrors.Wrap(ghErrors.ErrCodeInvalidFormat, err, "--format")
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		out = []nodelink.Format{nodelink.FormatPNG}
	}
	return out, nil
}

// parseTypes parses a comma-separated entity type list.
func parseTypes(s string) ([]model.EntityType, error) {
	if s == "" {
		return nil, nil
	}
	var out []model.EntityType
	for _, part := range strings.Split(s, ",") {
		t, err := model.ParseEntityType(strings.TrimSpace(part))
		if err != nil {
			return nil, ghErrors.Wrap(ghErrors.ErrCodeInvalidInput, err, "--types")
		}
		out = append(out, t)
	}
	return out, nil
}
