// Package pipeline runs ghgraph's extract → flatten → build → render flow.
//
// The same [Runner] backs every CLI command: `extract` stops after the
// table stage, `render` and `clusters` run all stages, and `insight` uses
// [Runner.Insight] against the OSS Insight API instead of the database.
//
// # Usage
//
//	runner := pipeline.NewRunner(connect, cache, nil, logger)
//	defer runner.Close(ctx)
//
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Output:  "graph.png",
//	    Filter:  "epfl|sdsc",
//	})
//
// Extractions are memoized in the cache under a key derived from the
// connection, entity types and schema. Set Refresh to bypass the lookup.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	ghErrors "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/model"
	"github.com/matzehuels/ghgraph/pkg/render/nodelink"
	"github.com/matzehuels/ghgraph/pkg/table"
)

// DefaultExtractionTTL is how long an extraction stays cached.
const DefaultExtractionTTL = 24 * time.Hour

// Mode selects what Execute renders.
type Mode string

const (
	// ModeNone stops after building the graph.
	ModeNone Mode = "none"
	// ModeGraph draws the whole graph into Output.
	ModeGraph Mode = "graph"
	// ModeClusters draws one image per weakly connected component into
	// OutputDir.
	ModeClusters Mode = "clusters"
)

// Options configures a pipeline run.
type Options struct {
	// Source identifies the database for cache keys.
	URI      string `json:"uri,omitempty"`
	Database string `json:"database,omitempty"`

	// Extraction
	Types    []model.EntityType          `json:"types,omitempty"`
	Schema   model.Schema                `json:"schema"`
	Labels   map[model.EntityType]string `json:"labels,omitempty"`
	Refresh  bool                        `json:"refresh,omitempty"`
	CacheTTL time.Duration               `json:"cache_ttl,omitempty"`

	// Table
	Filter string `json:"filter,omitempty"`

	// Render
	Mode        Mode                  `json:"mode,omitempty"`
	Output      string                `json:"output,omitempty"`
	OutputDir   string                `json:"output_dir,omitempty"`
	Prefix      string                `json:"prefix,omitempty"`
	Exploration *nodelink.Exploration `json:"exploration,omitempty"`
	Render      nodelink.Options      `json:"-"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result holds the outputs of a pipeline run.
type Result struct {
	Rows      []table.Row
	Graph     *model.Graph
	Manifest  *nodelink.Manifest
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds sizes and stage timings.
type Stats struct {
	Nodes       int
	Edges       int
	Rows        int
	Entities    map[model.EntityType]int
	ExtractTime time.Duration
	BuildTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	ExtractHit bool
}

// ValidateForExtract checks the extraction options and fills their
// defaults.
func (o *Options) ValidateForExtract() error {
	if len(o.Types) == 0 {
		o.Types = append([]model.EntityType(nil), model.EntityTypes...)
	}
	for _, t := range o.Types {
		if _, err := model.ParseEntityType(string(t)); err != nil {
			return ghErrors.Wrap(ghErrors.ErrCodeInvalidInput, err, "entity types")
		}
	}
	if len(o.Schema.Relations) == 0 {
		o.Schema = model.DefaultSchema()
	}
	if err := o.Schema.Validate(); err != nil {
		return ghErrors.Wrap(ghErrors.ErrCodeInvalidSchema, err, "schema")
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultExtractionTTL
	}
	return ghErrors.ValidateFilterPattern(o.Filter)
}

// ValidateForRender checks the render options and fills their defaults.
func (o *Options) ValidateForRender() error {
	if o.Mode == "" {
		o.Mode = ModeNone
		switch {
		case o.OutputDir != "":
			o.Mode = ModeClusters
		case o.Output != "":
			o.Mode = ModeGraph
		}
	}
	switch o.Mode {
	case ModeNone:
	case ModeGraph:
		if o.Output == "" {
			return ghErrors.New(ghErrors.ErrCodeInvalidInput, "graph mode needs an output path")
		}
	case ModeClusters:
		if o.OutputDir == "" {
			return ghErrors.New(ghErrors.ErrCodeInvalidInput, "cluster mode needs an output directory")
		}
		if err := ghErrors.ValidateFilePrefix(o.Prefix); err != nil {
			return err
		}
	default:
		return ghErrors.New(ghErrors.ErrCodeInvalidInput, "unknown mode %q", o.Mode)
	}

	if o.Mode != ModeNone {
		if o.Render.Logger == nil {
			o.Render.Logger = o.Logger
		}
		o.Render.SetDefaults()
		if err := o.Render.Validate(); err != nil {
			return ghErrors.Wrap(ghErrors.ErrCodeInvalidFormat, err, "render options")
		}
	}
	return nil
}

// ValidateAndSetDefaults prepares o for a full run. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForExtract(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}
