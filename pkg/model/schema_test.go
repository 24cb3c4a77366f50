package model

import (
	"errors"
	"slices"
	"testing"
)

func TestDefaultSchema(t *testing.T) {
	s := DefaultSchema()
	if err := s.Validate(); err != nil {
		t.Fatalf("DefaultSchema().Validate() = %v", err)
	}

	var kinds []RelKind
	for _, r := range s.Relations {
		kinds = append(kinds, r.Kind)
	}
	if !slices.Equal(kinds, RelKinds) {
		t.Errorf("relation order = %v, want %v", kinds, RelKinds)
	}

	v, ok := s.Variant(OwnerOf, "type2")
	if !ok || v.Source != Org || v.Target != Repo {
		t.Errorf("Variant(owner_of, type2) = %+v, %v", v, ok)
	}
	if got := s.EntityTypes(); !slices.Equal(got, EntityTypes) {
		t.Errorf("EntityTypes() = %v", got)
	}
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
	}{
		{name: "empty", schema: Schema{}},
		{name: "unknown kind", schema: Schema{Relations: []Relation{
			{Kind: "follows", Variants: []Variant{{Name: "a", Source: User, Target: User}}},
		}}},
		{name: "unknown type", schema: Schema{Relations: []Relation{
			{Kind: MemberOf, Variants: []Variant{{Name: "a", Source: User, Target: "team"}}},
		}}},
		{name: "duplicate variant", schema: Schema{Relations: []Relation{
			{Kind: MemberOf, Variants: []Variant{
				{Name: "a", Source: User, Target: Org},
				{Name: "a", Source: User, Target: Org},
			}},
		}}},
		{name: "duplicate relation", schema: Schema{Relations: []Relation{
			{Kind: ParentOf, Variants: []Variant{{Name: "a", Source: Repo, Target: Repo}}},
			{Kind: ParentOf, Variants: []Variant{{Name: "b", Source: Repo, Target: Repo}}},
		}}},
		{name: "no variants", schema: Schema{Relations: []Relation{{Kind: ParentOf}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.schema.Validate(); !errors.Is(err, ErrInvalidSchema) {
				t.Errorf("Validate() = %v, want ErrInvalidSchema", err)
			}
		})
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := ParseEntityType("repo"); err != nil {
		t.Errorf("ParseEntityType(repo) = %v", err)
	}
	if _, err := ParseEntityType("Repository"); !errors.Is(err, ErrUnknownEntityType) {
		t.Errorf("ParseEntityType(Repository) = %v", err)
	}
	if _, err := ParseRelKind("parent_of"); err != nil {
		t.Errorf("ParseRelKind(parent_of) = %v", err)
	}
	if _, err := ParseRelKind("unknown"); !errors.Is(err, ErrUnknownRelKind) {
		t.Errorf("ParseRelKind(unknown) = %v", err)
	}
}
