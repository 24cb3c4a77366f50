// Package pkg provides the libraries behind ghgraph, which draws the
// collaboration network of GitHub users, organizations and repositories
// stored in a Neo4j database.
//
// # Overview
//
// The pkg directory is organized by pipeline stage:
//
//  1. [extract] - parameterized label and relationship scans against Neo4j
//  2. [table] - flatten raw records into relationship rows
//  3. [builder] - fold rows into the typed [model.Graph]
//  4. [render/nodelink] - lay out and draw the graph or its clusters
//  5. [pipeline] - orchestration with caching, plus repository analytics
//
// Supporting packages: [cache] (file, redis and null backends), [config]
// (TOML settings and environment overrides), [digraph] and [layout] (the
// generic graph and its 2D placement), [integrations/ossinsight] and
// [render/chart] (analytics client and charts), [errors] (coded errors),
// [observability] (hooks) and [buildinfo].
//
// # Architecture
//
//	Neo4j (users, orgs, repos + member_of, owner_of, contributor_of, fork_of)
//	         ↓
//	    [extract] raw nodes and edge-index pairs
//	         ↓
//	    [table] (source, target, relationship, types, ids) rows
//	         ↓
//	    [builder] typed graph, entities deduplicated by name
//	         ↓
//	    [render/nodelink] PNG/SVG/DOT/PDF, one image or one per cluster
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/ghgraph/pkg/cache"
//	    "github.com/matzehuels/ghgraph/pkg/extract"
//	    "github.com/matzehuels/ghgraph/pkg/extract/neo4j"
//	    "github.com/matzehuels/ghgraph/pkg/pipeline"
//	)
//
//	connect := func(ctx context.Context) (extract.Querier, error) {
//	    return neo4j.Open(ctx, neo4j.ConfigFromEnv(neo4j.Config{}))
//	}
//	runner := pipeline.NewRunner(connect, cache.NewNullCache(), nil, nil)
//	defer runner.Close(ctx)
//
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    URI:       os.Getenv("NEO4J_URI"),
//	    OutputDir: "clusters",
//	})
//
// [extract]: github.com/matzehuels/ghgraph/pkg/extract
// [table]: github.com/matzehuels/ghgraph/pkg/table
// [builder]: github.com/matzehuels/ghgraph/pkg/builder
// [model.Graph]: github.com/matzehuels/ghgraph/pkg/model
// [render/nodelink]: github.com/matzehuels/ghgraph/pkg/render/nodelink
// [pipeline]: github.com/matzehuels/ghgraph/pkg/pipeline
// [cache]: github.com/matzehuels/ghgraph/pkg/cache
// [config]: github.com/matzehuels/ghgraph/pkg/config
// [digraph]: github.com/matzehuels/ghgraph/pkg/digraph
// [layout]: github.com/matzehuels/ghgraph/pkg/layout
// [integrations/ossinsight]: github.com/matzehuels/ghgraph/pkg/integrations/ossinsight
// [render/chart]: github.com/matzehuels/ghgraph/pkg/render/chart
// [errors]: github.com/matzehuels/ghgraph/pkg/errors
// [observability]: github.com/matzehuels/ghgraph/pkg/observability
// [buildinfo]: github.com/matzehuels/ghgraph/pkg/buildinfo
package pkg
