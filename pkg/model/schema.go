package model

import (
	"errors"
	"fmt"
)

// ErrInvalidSchema is returned by [Schema.Validate].
var ErrInvalidSchema = errors.New("invalid schema")

// Variant is one (source type, target type) pair that may carry a
// relationship kind. Name distinguishes variants of the same kind.
type Variant struct {
	Name   string     `json:"name" toml:"name"`
	Source EntityType `json:"source" toml:"source"`
	Target EntityType `json:"target" toml:"target"`
}

// Relation groups the variants of one relationship kind.
type Relation struct {
	Kind     RelKind   `json:"kind" toml:"kind"`
	Variants []Variant `json:"variants" toml:"variants"`
}

// Schema is the ordered list of relations to extract and fold.
type Schema struct {
	Relations []Relation `json:"relations" toml:"relations"`
}

// DefaultSchema returns the schema of the GitHub network dataset.
func DefaultSchema() Schema {
	return Schema{Relations: []Relation{
		{Kind: MemberOf, Variants: []Variant{
			{Name: "type1", Source: User, Target: Org},
		}},
		{Kind: OwnerOf, Variants: []Variant{
			{Name: "type1", Source: User, Target: Repo},
			{Name: "type2", Source: Org, Target: Repo},
		}},
		{Kind: ContributorOf, Variants: []Variant{
			{Name: "type1", Source: User, Target: Repo},
			{Name: "type2", Source: Org, Target: Repo},
		}},
		{Kind: ParentOf, Variants: []Variant{
			{Name: "type1", Source: Repo, Target: Repo},
		}},
	}}
}

// Has reports whether kind is declared by the schema.
func (s Schema) Has(kind RelKind) bool {
	_, ok := s.Relation(kind)
	return ok
}

// Relation returns the relation declared for kind.
func (s Schema) Relation(kind RelKind) (Relation, bool) {
	for _, r := range s.Relations {
		if r.Kind == kind {
			return r, true
		}
	}
	return Relation{}, false
}

// Variant returns the named variant of kind.
func (s Schema) Variant(kind RelKind, name string) (Variant, bool) {
	rel, ok := s.Relation(kind)
	if !ok {
		return Variant{}, false
	}
	for _, v := range rel.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// EntityTypes returns the entity types referenced by the schema, in
// canonical order.
func (s Schema) EntityTypes() []EntityType {
	seen := make(map[EntityType]bool)
	for _, r := range s.Relations {
		for _, v := range r.Variants {
			seen[v.Source] = true
			seen[v.Target] = true
		}
	}
	var out []EntityType
	for _, t := range EntityTypes {
		if seen[t] {
			out = append(out, t)
		}
	}
	return out
}

// Validate rejects unknown kinds or types, duplicate relations, duplicate
// variant names and empty variant lists.
func (s Schema) Validate() error {
	if len(s.Relations) == 0 {
		return fmt.Errorf("%w: no relations", ErrInvalidSchema)
	}
	kinds := make(map[RelKind]bool)
	for _, r := range s.Relations {
		if !r.Kind.Valid() {
			return fmt.Errorf("%w: relation %q", ErrInvalidSchema, r.Kind)
		}
		if kinds[r.Kind] {
			return fmt.Errorf("%w: relation %q declared twice", ErrInvalidSchema, r.Kind)
		}
		kinds[r.Kind] = true
		if len(r.Variants) == 0 {
			return fmt.Errorf("%w: relation %q has no variants", ErrInvalidSchema, r.Kind)
		}
		names := make(map[string]bool)
		for _, v := range r.Variants {
			if v.Name == "" || names[v.Name] {
				return fmt.Errorf("%w: relation %q has empty or duplicate variant %q", ErrInvalidSchema, r.Kind, v.Name)
			}
			names[v.Name] = true
			if !v.Source.Valid() || !v.Target.Valid() {
				return fmt.Errorf("%w: %s.%s connects %q to %q", ErrInvalidSchema, r.Kind, v.Name, v.Source, v.Target)
			}
		}
	}
	return nil
}
