package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghgraph/pkg/builder"
	"github.com/matzehuels/ghgraph/pkg/cache"
	ghErrors "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/extract"
	"github.com/matzehuels/ghgraph/pkg/model"
	"github.com/matzehuels/ghgraph/pkg/observability"
	"github.com/matzehuels/ghgraph/pkg/render/nodelink"
	"github.com/matzehuels/ghgraph/pkg/table"
)

// Connector opens the data source on first use.
type Connector func(ctx context.Context) (extract.Querier, error)

// ErrNoSource is returned when an extraction misses the cache and the
// Runner has no Connector.
var ErrNoSource = errors.New("no data source configured")

// Runner executes pipeline stages with caching.
//
// The data source is opened lazily, so a run served entirely from the
// cache never connects. A Runner is not safe for concurrent use while the
// connection is being opened.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	connect Connector
	querier extract.Querier
}

// NewRunner creates a runner reading through connect. A nil cache disables
// caching and a nil keyer uses the default key scheme.
func NewRunner(connect Connector, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, connect: connect}
}

// Execute runs extract → table → build → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Extract
	start := time.Now()
	x, hit, err := r.ExtractWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.ExtractTime = time.Since(start)
	result.CacheInfo.ExtractHit = hit
	r.Logger.Info("extracted records", "source", opts.source(), "cached", hit, "duration", result.Stats.ExtractTime)

	// Stage 2: Table
	rows, err := r.Table(x, opts)
	if err != nil {
		return nil, err
	}
	result.Rows = rows
	result.Stats.Rows = len(rows)

	// Stage 3: Build
	start = time.Now()
	g := r.Build(ctx, rows, opts)
	result.Graph = g
	result.Stats.BuildTime = time.Since(start)
	result.Stats.Entities = g.Stats()
	r.Logger.Info("built graph",
		"users", len(g.Users),
		"orgs", len(g.Orgs),
		"repos", len(g.Repos),
		"duration", result.Stats.BuildTime)

	d := nodelink.ToDigraph(g, opts.Exploration)
	result.Stats.Nodes, result.Stats.Edges = d.NodeCount(), d.EdgeCount()

	// Stage 4: Render
	if opts.Mode == ModeNone {
		return result, nil
	}
	start = time.Now()
	m, err := r.Render(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Manifest = m
	result.Stats.RenderTime = time.Since(start)
	r.Logger.Info("rendered outputs", "files", len(m.Files), "duration", result.Stats.RenderTime)

	return result, nil
}

// ExtractWithCacheInfo returns the extraction for opts and whether it came
// from the cache. Failed reads are never cached.
func (r *Runner) ExtractWithCacheInfo(ctx context.Context, opts Options) (*extract.Extraction, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForExtract(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.ExtractionKey(extractionKeyOpts(opts))
	if key == "" {
		r.Logger.Debug("extraction options have no cache key, not caching")
	}
	if !opts.Refresh && key != "" {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		if hit {
			var x extract.Extraction
			if err := json.Unmarshal(data, &x); err == nil {
				observability.Cache().OnCacheHit(ctx, "extraction")
				return &x, true, nil
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", key)
		}
		observability.Cache().OnCacheMiss(ctx, "extraction")
	}

	q, err := r.source(ctx)
	if err != nil {
		return nil, false, err
	}
	x, err := extract.New(q, extract.WithLabels(opts.Labels), extract.WithLogger(r.Logger)).
		Extract(ctx, opts.Types, opts.Schema)
	if err != nil {
		return nil, false, ghErrors.Wrap(ghErrors.ErrCodeQueryFailed, err, "extract")
	}

	if data, err := json.Marshal(x); err == nil && key != "" {
		if err := r.Cache.Set(ctx, key, data, opts.CacheTTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "extraction", len(data))
		}
	}
	return x, false, nil
}

// Extract is ExtractWithCacheInfo without the hit flag.
func (r *Runner) Extract(ctx context.Context, opts Options) (*extract.Extraction, error) {
	x, _, err := r.ExtractWithCacheInfo(ctx, opts)
	return x, err
}

// Table flattens x and applies the row filter.
func (r *Runner) Table(x *extract.Extraction, opts Options) ([]table.Row, error) {
	r.applyLogger(&opts)
	rows := table.Flatten(x, opts.Schema)
	filtered, err := table.Filter(rows, opts.Filter)
	if err != nil {
		return nil, ghErrors.Wrap(ghErrors.ErrCodeInvalidInput, err, "filter rows")
	}
	if len(filtered) == 0 {
		r.Logger.Warn("no rows left", "total", len(rows), "filter", opts.Filter)
	} else {
		r.Logger.Debug("flattened rows", "total", len(rows), "kept", len(filtered))
	}
	return filtered, nil
}

// Rows runs extract and table.
func (r *Runner) Rows(ctx context.Context, opts Options) ([]table.Row, bool, error) {
	if err := opts.ValidateForExtract(); err != nil {
		return nil, false, err
	}
	x, hit, err := r.ExtractWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	rows, err := r.Table(x, opts)
	return rows, hit, err
}

// Build folds rows into a typed graph.
func (r *Runner) Build(ctx context.Context, rows []table.Row, opts Options) *model.Graph {
	r.applyLogger(&opts)
	schema := opts.Schema
	if len(schema.Relations) == 0 {
		schema = model.DefaultSchema()
	}
	return builder.Build(ctx, rows, schema, builder.WithLogger(opts.Logger))
}

// Render draws g according to opts.Mode.
func (r *Runner) Render(ctx context.Context, g *model.Graph, opts Options) (*nodelink.Manifest, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	var (
		m   *nodelink.Manifest
		err error
	)
	switch opts.Mode {
	case ModeGraph:
		m, err = nodelink.Render(ctx, g, opts.Exploration, opts.Output, opts.Render)
	case ModeClusters:
		m, err = nodelink.RenderClusters(ctx, g, opts.Exploration, opts.OutputDir, opts.Prefix, opts.Render)
	default:
		return nil, ghErrors.New(ghErrors.ErrCodeInvalidInput, "nothing to render in mode %q", opts.Mode)
	}
	if err != nil {
		return nil, ghErrors.Wrap(ghErrors.ErrCodeRenderFailed, err, "render")
	}
	return m, nil
}

// Close releases the data source when it was opened.
func (r *Runner) Close(ctx context.Context) error {
	if c, ok := r.querier.(interface{ Close(context.Context) error }); ok {
		r.querier = nil
		return c.Close(ctx)
	}
	return nil
}

func (r *Runner) source(ctx context.Context) (extract.Querier, error) {
	if r.querier != nil {
		return r.querier, nil
	}
	if r.connect == nil {
		return nil, ErrNoSource
	}
	q, err := r.connect(ctx)
	if err != nil {
		return nil, ghErrors.Wrap(ghErrors.ErrCodeQueryFailed, err, "connect")
	}
	r.querier = q
	return q, nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func extractionKeyOpts(opts Options) cache.ExtractionKeyOpts {
	types := make([]string, len(opts.Types))
	for i, t := range opts.Types {
		types[i] = string(t)
	}
	return cache.ExtractionKeyOpts{
		URI:      opts.URI,
		Database: opts.Database,
		Types:    types,
		Schema:   schemaKey{Schema: opts.Schema, Labels: opts.Labels},
	}
}

type schemaKey struct {
	Schema model.Schema                `json:"schema"`
	Labels map[model.EntityType]string `json:"labels,omitempty"`
}

// source names the database for log lines.
func (o Options) source() string {
	if o.Database == "" {
		return o.URI
	}
	return fmt.Sprintf("%s/%s", o.URI, o.Database)
}
