// Package builder folds relationship rows into a [model.Graph].
//
// Build is a single pass over the rows. Entities are created on first
// reference and never removed; relationships are stored on both endpoints.
// Rows with a relationship kind outside the schema, or an endpoint type the
// model does not know, are skipped and logged at debug level.
package builder

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghgraph/pkg/model"
	"github.com/matzehuels/ghgraph/pkg/observability"
	"github.com/matzehuels/ghgraph/pkg/table"
)

// Option configures Build.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger reports skipped rows to l.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Build returns the graph described by rows. The schema decides which
// relationship kinds are recognized.
func Build(ctx context.Context, rows []table.Row, schema model.Schema, opts ...Option) *model.Graph {
	o := options{logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	g := model.NewGraph()
	skipped := 0
	for _, r := range rows {
		if !apply(g, r, schema) {
			skipped++
			o.logger.Debug("skipping row", "source", r.Source, "target", r.Target,
				"relationship", r.Relationship, "source_type", r.SourceType, "target_type", r.TargetType)
		}
	}
	if skipped > 0 {
		o.logger.Debug("rows skipped", "count", skipped, "total", len(rows))
	}
	observability.Pipeline().OnBuildComplete(ctx, g.Len(), time.Since(start))
	return g
}

// apply folds one row into g and reports whether the row was recognized.
func apply(g *model.Graph, r table.Row, schema model.Schema) bool {
	if !schema.Has(r.Relationship) {
		return false
	}
	if !r.SourceType.Valid() || !r.TargetType.Valid() {
		return false
	}
	_ = g.Add(r.SourceType, r.Source, r.SourceID)
	_ = g.Add(r.TargetType, r.Target, r.TargetID)

	switch r.Relationship {
	case model.MemberOf:
		if r.SourceType == model.User && r.TargetType == model.Org {
			g.AddMember(r.Source, r.Target)
		}
	case model.OwnerOf:
		if r.TargetType == model.Repo {
			_ = g.SetOwner(r.SourceType, r.Source, r.Target)
		}
	case model.ContributorOf:
		if r.TargetType == model.Repo {
			_ = g.AddContributor(r.SourceType, r.Source, r.Target)
		}
	case model.ParentOf:
		if r.SourceType == model.Repo && r.TargetType == model.Repo {
			g.AddFork(r.Source, r.Target)
		}
	}
	return true
}
