// Package extract reads typed nodes and relationship edge lists out of a
// graph data source.
//
// The [Extractor] issues two query shapes through a [Querier]: a label scan
// per entity type and a fixed-pattern relationship scan per schema variant.
// Every call to [Querier.Read] is one logical read; the Neo4j implementation
// in the neo4j subpackage opens and closes one session per read.
//
// Query failures are logged and returned unchanged. Nothing is retried.
package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghgraph/pkg/model"
	"github.com/matzehuels/ghgraph/pkg/observability"
)

// Record is one result row keyed by the names in the query's RETURN clause.
type Record map[string]any

// Querier executes a parameterized read query.
type Querier interface {
	Read(ctx context.Context, query string, params map[string]any) ([]Record, error)
}

// Features is the property record attached to a node or edge.
type Features map[string]any

// Name returns the "name" feature, or "" when absent or not a string.
func (f Features) Name() string {
	s, _ := f["name"].(string)
	return s
}

// NodeSet holds the identifiers and feature records of one entity type.
// IDs and Features are parallel.
type NodeSet struct {
	IDs      []int64    `json:"ids"`
	Features []Features `json:"features"`
}

// EdgeSet holds one relationship variant as parallel source/target
// identifier arrays plus optional edge features.
type EdgeSet struct {
	Sources  []int64 `json:"sources"`
	Targets  []int64 `json:"targets"`
	Features []any   `json:"features,omitempty"`
}

// Len returns the number of edges.
func (e EdgeSet) Len() int { return min(len(e.Sources), len(e.Targets)) }

// Extraction is the raw output of an extraction run.
type Extraction struct {
	Nodes map[model.EntityType]NodeSet          `json:"nodes"`
	Edges map[model.RelKind]map[string]EdgeSet `json:"edges"`
}

// Stats returns the node and edge totals.
func (x *Extraction) Stats() (nodes, edges int) {
	for _, ns := range x.Nodes {
		nodes += len(ns.IDs)
	}
	for _, variants := range x.Edges {
		for _, es := range variants {
			edges += es.Len()
		}
	}
	return nodes, edges
}

// Extractor runs label and relationship scans.
type Extractor struct {
	q      Querier
	labels map[model.EntityType]string
	logger *log.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLabels maps entity types to database labels. Types without an entry
// use their own name as label.
func WithLabels(labels map[model.EntityType]string) Option {
	return func(e *Extractor) {
		for t, l := range labels {
			e.labels[t] = l
		}
	}
}

// WithLogger sets the logger used to report query failures.
func WithLogger(l *log.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Extractor reading through q.
func New(q Querier, opts ...Option) *Extractor {
	e := &Extractor{
		q:      q,
		labels: make(map[model.EntityType]string),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) label(t model.EntityType) string {
	if l, ok := e.labels[t]; ok && l != "" {
		return l
	}
	return string(t)
}

// Extract scans every requested entity type and every relationship variant
// of schema.
func (e *Extractor) Extract(ctx context.Context, types []model.EntityType, schema model.Schema) (*Extraction, error) {
	observability.Pipeline().OnExtractStart(ctx, len(types), len(schema.Relations))
	x, err := e.extract(ctx, types, schema)
	nodes, edges := 0, 0
	if x != nil {
		nodes, edges = x.Stats()
	}
	observability.Pipeline().OnExtractComplete(ctx, nodes, edges, err)
	return x, err
}

func (e *Extractor) extract(ctx context.Context, types []model.EntityType, schema model.Schema) (*Extraction, error) {
	nodes, err := e.Nodes(ctx, types)
	if err != nil {
		return nil, err
	}
	edges, err := e.Edges(ctx, schema)
	if err != nil {
		return nil, err
	}
	return &Extraction{Nodes: nodes, Edges: edges}, nil
}

// Nodes runs one label scan per entity type.
func (e *Extractor) Nodes(ctx context.Context, types []model.EntityType) (map[model.EntityType]NodeSet, error) {
	out := make(map[model.EntityType]NodeSet, len(types))
	for _, t := range types {
		query := nodeQuery(e.label(t))
		records, err := e.q.Read(ctx, query, nil)
		if err != nil {
			e.logger.Error("node scan failed", "type", t, "query", query, "err", err)
			return nil, fmt.Errorf("scan %s nodes: %w", t, err)
		}

		var ns NodeSet
		for _, rec := range records {
			id, ok := toInt64(rec["id"])
			if !ok {
				e.logger.Debug("skipping node without id", "type", t)
				continue
			}
			f := Features{}
			for _, key := range []string{"name", "anchor"} {
				if v, ok := rec[key]; ok && v != nil {
					f[key] = v
				}
			}
			ns.IDs = append(ns.IDs, id)
			ns.Features = append(ns.Features, f)
		}
		e.logger.Debug("scanned nodes", "type", t, "count", len(ns.IDs))
		out[t] = ns
	}
	return out, nil
}

// Edges runs one relationship scan per schema variant.
func (e *Extractor) Edges(ctx context.Context, schema model.Schema) (map[model.RelKind]map[string]EdgeSet, error) {
	out := make(map[model.RelKind]map[string]EdgeSet, len(schema.Relations))
	for _, rel := range schema.Relations {
		out[rel.Kind] = make(map[string]EdgeSet, len(rel.Variants))
		for _, v := range rel.Variants {
			query := edgeQuery(e.label(v.Source), string(rel.Kind), e.label(v.Target))
			records, err := e.q.Read(ctx, query, nil)
			if err != nil {
				e.logger.Error("relationship scan failed", "kind", rel.Kind, "variant", v.Name, "query", query, "err", err)
				return nil, fmt.Errorf("scan %s/%s edges: %w", rel.Kind, v.Name, err)
			}

			var es EdgeSet
			for _, rec := range records {
				src, okS := toInt64(rec["src"])
				dst, okD := toInt64(rec["dst"])
				if !okS || !okD {
					continue
				}
				es.Sources = append(es.Sources, src)
				es.Targets = append(es.Targets, dst)
				es.Features = append(es.Features, rec["feat"])
			}
			e.logger.Debug("scanned edges", "kind", rel.Kind, "variant", v.Name, "count", es.Len())
			out[rel.Kind][v.Name] = es
		}
	}
	return out, nil
}

func nodeQuery(label string) string {
	return fmt.Sprintf("MATCH (n:%s) RETURN id(n) AS id, n.name AS name, n.anchor AS anchor", quoteIdent(label))
}

func edgeQuery(src, rel, dst string) string {
	return fmt.Sprintf("MATCH (a:%s)-[r:%s]->(b:%s) RETURN id(a) AS src, id(b) AS dst, r.feat AS feat",
		quoteIdent(src), quoteIdent(rel), quoteIdent(dst))
}

// quoteIdent backtick-quotes a Cypher identifier. Labels and relationship
// types cannot be passed as query parameters.
func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), n == float64(int64(n))
	}
	return 0, false
}
