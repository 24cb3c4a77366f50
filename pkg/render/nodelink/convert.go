package nodelink

import (
	"maps"
	"slices"

	"github.com/matzehuels/ghgraph/pkg/digraph"
	"github.com/matzehuels/ghgraph/pkg/model"
)

// Discovery records a name reached during an incremental crawl but not
// loaded: the entity it was found from and, when known, its type.
type Discovery struct {
	Parent string           `json:"parent"`
	Type   model.EntityType `json:"type,omitempty"`
}

// Exploration marks up a partially crawled graph. A nil Exploration draws
// every entity as visited.
type Exploration struct {
	Seeds      []string             `json:"seeds,omitempty"`
	Visited    []string             `json:"visited,omitempty"`
	Discovered map[string]Discovery `json:"discovered,omitempty"`
}

func (x *Exploration) state(name string) digraph.State {
	if x == nil {
		return digraph.StateVisited
	}
	if slices.Contains(x.Seeds, name) {
		return digraph.StateSeed
	}
	if len(x.Visited) > 0 && !slices.Contains(x.Visited, name) {
		return digraph.StateUnvisited
	}
	return digraph.StateVisited
}

// ToDigraph materializes g, plus the discovered entries of x, as a directed
// graph. Node IDs are type-qualified (see [digraph.Key]), so a user and a
// repository sharing a name stay two nodes; Name keeps the display name.
// Nodes are added users first, then organizations, then repositories, each
// sorted by name, then discovered names sorted. When two relationships
// connect the same ordered pair the first one derived wins.
func ToDigraph(g *model.Graph, x *Exploration) *digraph.Graph {
	d := digraph.New()
	add := func(name string, t model.EntityType) {
		_ = d.AddNode(digraph.Node{ID: digraph.Key(t, name), Name: name, Type: t, State: x.state(name)})
	}
	for _, name := range g.UserNames() {
		add(name, model.User)
	}
	for _, name := range g.OrgNames() {
		add(name, model.Org)
	}
	for _, name := range g.RepoNames() {
		add(name, model.Repo)
	}

	edge := func(fromType model.EntityType, from string, toType model.EntityType, to string, kind model.RelKind) {
		_, _ = d.AddEdge(digraph.Edge{From: digraph.Key(fromType, from), To: digraph.Key(toType, to), Kind: kind})
	}
	isRepo := func(name string) bool { return g.Has(model.Repo, name) }

	for _, name := range g.UserNames() {
		u := g.Users[name]
		for _, r := range u.OwnerOf {
			if isRepo(r) {
				edge(model.User, name, model.Repo, r, model.OwnerOf)
			}
		}
		for _, r := range u.ContributorOf {
			if isRepo(r) {
				edge(model.User, name, model.Repo, r, model.ContributorOf)
			}
		}
	}
	for _, name := range g.OrgNames() {
		o := g.Orgs[name]
		for _, m := range o.Members {
			if g.Has(model.User, m) {
				edge(model.User, m, model.Org, name, model.MemberOf)
			}
		}
		for _, r := range o.OwnerOf {
			if isRepo(r) {
				edge(model.Org, name, model.Repo, r, model.OwnerOf)
			}
		}
		for _, r := range o.ContributorOf {
			if isRepo(r) {
				edge(model.Org, name, model.Repo, r, model.ContributorOf)
			}
		}
	}
	for _, name := range g.RepoNames() {
		r := g.Repos[name]
		for _, c := range r.Contributors {
			for _, t := range []model.EntityType{model.User, model.Org} {
				if !g.Has(t, c) {
					continue
				}
				if c == r.Owner {
					edge(t, c, model.Repo, name, model.OwnerOf)
				} else {
					edge(t, c, model.Repo, name, model.ContributorOf)
				}
			}
		}
		for _, child := range r.ParentOf {
			if isRepo(child) {
				edge(model.Repo, name, model.Repo, child, model.ParentOf)
			}
		}
	}

	if x == nil || len(x.Discovered) == 0 {
		return d
	}
	// typeOf resolves a discovered or crawled name to its entity type,
	// preferring the type recorded at discovery.
	typeOf := func(name string) model.EntityType {
		if disc, ok := x.Discovered[name]; ok && disc.Type != "" {
			return disc.Type
		}
		t, _ := g.TypeOf(name)
		return t
	}
	names := slices.Sorted(maps.Keys(x.Discovered))
	for _, name := range names {
		t := typeOf(name)
		if _, ok := d.Node(digraph.Key(t, name)); ok {
			continue
		}
		_ = d.AddNode(digraph.Node{ID: digraph.Key(t, name), Name: name, Type: t, State: digraph.StateDiscovered})
	}
	for _, name := range names {
		parentType, childType := typeOf(x.Discovered[name].Parent), typeOf(name)
		parent, ok := d.Node(digraph.Key(parentType, x.Discovered[name].Parent))
		if !ok {
			continue
		}
		edge(parentType, parent.Name, childType, name, InferKind(parent.Type, childType))
	}
	return d
}

// InferKind guesses the relationship between a discovering entity and the
// entity it discovered. Pairs without a rule map to model.Unknown.
func InferKind(parent, child model.EntityType) model.RelKind {
	switch {
	case parent == model.User && child == model.Org, parent == model.Org && child == model.User:
		return model.MemberOf
	case isAccount(parent) && child == model.Repo, parent == model.Repo && isAccount(child):
		return model.ContributorOf
	case parent == model.Repo && child == model.Repo:
		return model.ParentOf
	default:
		return model.Unknown
	}
}

func isAccount(t model.EntityType) bool { return t == model.User || t == model.Org }
