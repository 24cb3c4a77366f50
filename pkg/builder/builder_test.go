package builder

import (
	"context"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/ghgraph/pkg/model"
	"github.com/matzehuels/ghgraph/pkg/table"
)

func row(src, dst string, kind model.RelKind, st, dt model.EntityType) table.Row {
	return table.Row{Source: src, Target: dst, Relationship: kind, SourceType: st, TargetType: dt}
}

func sampleRows() []table.Row {
	return []table.Row{
		row("alice", "epfl", model.MemberOf, model.User, model.Org),
		row("bob", "epfl", model.MemberOf, model.User, model.Org),
		row("epfl", "renku", model.OwnerOf, model.Org, model.Repo),
		row("alice", "renku", model.ContributorOf, model.User, model.Repo),
		row("sdsc", "renku", model.ContributorOf, model.Org, model.Repo),
		row("bob", "dotfiles", model.OwnerOf, model.User, model.Repo),
		row("renku", "renku-fork", model.ParentOf, model.Repo, model.Repo),
	}
}

func TestBuild_EndpointsExist(t *testing.T) {
	rows := sampleRows()
	g := Build(context.Background(), rows, model.DefaultSchema())

	for _, r := range rows {
		if !g.Has(r.SourceType, r.Source) {
			t.Errorf("source %s %q missing", r.SourceType, r.Source)
		}
		if !g.Has(r.TargetType, r.Target) {
			t.Errorf("target %s %q missing", r.TargetType, r.Target)
		}
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBuild_Symmetry(t *testing.T) {
	g := Build(context.Background(), sampleRows(), model.DefaultSchema())

	for name, u := range g.Users {
		for _, r := range u.OwnerOf {
			if g.Repos[r].Owner != name {
				t.Errorf("user %s owns %s but repo owner is %q", name, r, g.Repos[r].Owner)
			}
		}
		for _, r := range u.ContributorOf {
			if !slices.Contains(g.Repos[r].Contributors, name) {
				t.Errorf("user %s contributes to %s but is not listed there", name, r)
			}
		}
	}
	for name, o := range g.Orgs {
		for _, r := range o.OwnerOf {
			if g.Repos[r].Owner != name {
				t.Errorf("org %s owns %s but repo owner is %q", name, r, g.Repos[r].Owner)
			}
		}
		for _, r := range o.ContributorOf {
			if !slices.Contains(g.Repos[r].Contributors, name) {
				t.Errorf("org %s contributes to %s but is not listed there", name, r)
			}
		}
	}
	for name, r := range g.Repos {
		for _, c := range r.Contributors {
			var list []string
			if u, ok := g.Users[c]; ok {
				list = u.ContributorOf
			} else if o, ok := g.Orgs[c]; ok {
				list = o.ContributorOf
			}
			if !slices.Contains(list, name) {
				t.Errorf("repo %s lists contributor %s without a back reference", name, c)
			}
		}
		for _, child := range r.ParentOf {
			if _, ok := g.Repos[child]; !ok {
				t.Errorf("fork %s of %s missing", child, name)
			}
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	rows := sampleRows()
	first := Build(context.Background(), rows, model.DefaultSchema())
	second := Build(context.Background(), rows, model.DefaultSchema())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("rebuild differs:\n%s", diff)
	}

	doubled := Build(context.Background(), append(slices.Clone(rows), rows...), model.DefaultSchema())
	if diff := cmp.Diff(first, doubled); diff != "" {
		t.Errorf("replaying rows changed the graph:\n%s", diff)
	}
}

func TestBuild_OwnerOf(t *testing.T) {
	tests := []struct {
		name string
		rows []table.Row
		want string
	}{
		{
			name: "single owner",
			rows: []table.Row{row("epfl", "renku", model.OwnerOf, model.Org, model.Repo)},
			want: "epfl",
		},
		{
			name: "last owner wins",
			rows: []table.Row{
				row("alice", "renku", model.OwnerOf, model.User, model.Repo),
				row("epfl", "renku", model.OwnerOf, model.Org, model.Repo),
			},
			want: "epfl",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(context.Background(), tt.rows, model.DefaultSchema())
			if got := g.Repos["renku"].Owner; got != tt.want {
				t.Errorf("Owner = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_Empty(t *testing.T) {
	g := Build(context.Background(), nil, model.DefaultSchema())
	if g.Users == nil || g.Orgs == nil || g.Repos == nil {
		t.Fatal("Build(nil) should return initialized maps")
	}
	if !g.Empty() {
		t.Errorf("Build(nil) has %d entities", g.Len())
	}
}

func TestBuild_SkipsUnrecognizedRows(t *testing.T) {
	schema := model.Schema{Relations: []model.Relation{
		{Kind: model.MemberOf, Variants: []model.Variant{{Name: "type1", Source: model.User, Target: model.Org}}},
	}}
	rows := []table.Row{
		row("alice", "renku", model.OwnerOf, model.User, model.Repo),
		row("alice", "team", model.MemberOf, model.User, "team"),
		row("alice", "epfl", model.MemberOf, model.User, model.Org),
	}
	g := Build(context.Background(), rows, schema)

	if len(g.Repos) != 0 {
		t.Errorf("owner_of outside the schema created repos: %v", g.RepoNames())
	}
	if got := g.Stats(); got[model.User] != 1 || got[model.Org] != 1 {
		t.Errorf("Stats() = %v", got)
	}
}

func TestBuild_IDs(t *testing.T) {
	rows := []table.Row{
		{Source: "alice", Target: "epfl", Relationship: model.MemberOf, SourceType: model.User, TargetType: model.Org, SourceID: 1, TargetID: 10},
		{Source: "alice", Target: "renku", Relationship: model.OwnerOf, SourceType: model.User, TargetType: model.Repo, SourceID: 0, TargetID: 20},
	}
	g := Build(context.Background(), rows, model.DefaultSchema())
	if g.Users["alice"].ID != 1 {
		t.Errorf("alice.ID = %d, want 1", g.Users["alice"].ID)
	}
	if g.Repos["renku"].ID != 20 {
		t.Errorf("renku.ID = %d, want 20", g.Repos["renku"].ID)
	}
}
