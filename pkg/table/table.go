// Package table flattens an extraction into relationship rows.
//
// A [Row] carries both endpoint names, their entity types, numeric ids and
// the relationship kind. Rows are produced in schema order, then variant
// order, then edge-array order, so fixtures stay stable across runs.
package table

import (
	"fmt"
	"regexp"

	"github.com/matzehuels/ghgraph/pkg/extract"
	"github.com/matzehuels/ghgraph/pkg/model"
)

// Row is one relationship instance between two named entities.
type Row struct {
	Source       string           `json:"source"`
	Target       string           `json:"target"`
	Relationship model.RelKind    `json:"property"`
	SourceType   model.EntityType `json:"source_type"`
	TargetType   model.EntityType `json:"target_type"`
	SourceID     int64            `json:"source_id"`
	TargetID     int64            `json:"target_id"`
}

// SyntheticName is the display name used when a node has no name feature
// or its id is unknown.
func SyntheticName(t model.EntityType, id int64) string {
	return fmt.Sprintf("%s_%d", t, id)
}

// Flatten resolves every extracted edge whose kind and variant appear in
// schema into a Row.
func Flatten(x *extract.Extraction, schema model.Schema) []Row {
	if x == nil {
		return nil
	}

	names := make(map[model.EntityType]map[int64]string, len(x.Nodes))
	for t, ns := range x.Nodes {
		lookup := make(map[int64]string, len(ns.IDs))
		for i, id := range ns.IDs {
			if i < len(ns.Features) {
				if name := ns.Features[i].Name(); name != "" {
					lookup[id] = name
				}
			}
		}
		names[t] = lookup
	}
	resolve := func(t model.EntityType, id int64) string {
		if name, ok := names[t][id]; ok {
			return name
		}
		return SyntheticName(t, id)
	}

	var rows []Row
	for _, rel := range schema.Relations {
		variants, ok := x.Edges[rel.Kind]
		if !ok {
			continue
		}
		for _, v := range rel.Variants {
			es, ok := variants[v.Name]
			if !ok {
				continue
			}
			for i := range es.Len() {
				src, dst := es.Sources[i], es.Targets[i]
				rows = append(rows, Row{
					Source:       resolve(v.Source, src),
					Target:       resolve(v.Target, dst),
					Relationship: rel.Kind,
					SourceType:   v.Source,
					TargetType:   v.Target,
					SourceID:     src,
					TargetID:     dst,
				})
			}
		}
	}
	return rows
}

// Filter keeps rows whose source or target name matches pattern,
// case-insensitively. An empty pattern keeps every row.
func Filter(rows []Row, pattern string) ([]Row, error) {
	if pattern == "" {
		return rows, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("filter pattern: %w", err)
	}
	var out []Row
	for _, r := range rows {
		if re.MatchString(r.Source) || re.MatchString(r.Target) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Count returns the number of rows per relationship kind.
func Count(rows []Row) map[model.RelKind]int {
	out := make(map[model.RelKind]int)
	for _, r := range rows {
		out[r.Relationship]++
	}
	return out
}
