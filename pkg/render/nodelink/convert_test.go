package nodelink

import (
	"testing"

	"github.com/matzehuels/ghgraph/pkg/digraph"
	"github.com/matzehuels/ghgraph/pkg/model"
)

func sampleGraph(t *testing.T) *model.Graph {
	t.Helper()
	g := model.NewGraph()
	g.AddMember("alice", "acme")
	if err := g.SetOwner(model.Org, "acme", "proj"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddContributor(model.User, "alice", "proj"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddContributor(model.Org, "acme", "proj"); err != nil {
		t.Fatal(err)
	}
	g.AddFork("proj", "proj-fork")
	return g
}

func TestToDigraph_Edges(t *testing.T) {
	d := ToDigraph(sampleGraph(t), nil)

	tests := []struct {
		from, to string
		want     model.RelKind
	}{
		{"user:alice", "org:acme", model.MemberOf},
		{"org:acme", "repo:proj", model.OwnerOf},
		{"user:alice", "repo:proj", model.ContributorOf},
		{"repo:proj", "repo:proj-fork", model.ParentOf},
	}
	for _, tt := range tests {
		e, ok := d.Edge(tt.from, tt.to)
		if !ok {
			t.Errorf("missing edge %s -> %s", tt.from, tt.to)
			continue
		}
		if e.Kind != tt.want {
			t.Errorf("edge %s -> %s kind = %s, want %s", tt.from, tt.to, e.Kind, tt.want)
		}
	}
	if d.EdgeCount() != len(tests) {
		t.Errorf("EdgeCount() = %d, want %d", d.EdgeCount(), len(tests))
	}
}

func TestToDigraph_NodeOrder(t *testing.T) {
	d := ToDigraph(sampleGraph(t), nil)
	want := []string{"user:alice", "org:acme", "repo:proj", "repo:proj-fork"}
	got := d.NodeIDs()
	if len(got) != len(want) {
		t.Fatalf("NodeIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NodeIDs()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestToDigraph_DanglingTargetsDropped(t *testing.T) {
	g := model.NewGraph()
	g.AddUser("bob", 1)
	g.Users["bob"].ContributorOf = append(g.Users["bob"].ContributorOf, "ghost")

	d := ToDigraph(g, nil)
	if d.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0 for a target outside the graph", d.EdgeCount())
	}
	if d.NodeCount() != 1 {
		t.Error("dangling target should not become a node")
	}
}

func TestToDigraph_Exploration(t *testing.T) {
	x := &Exploration{
		Seeds:   []string{"alice"},
		Visited: []string{"alice", "acme"},
		Discovered: map[string]Discovery{
			"newrepo": {Parent: "acme", Type: model.Repo},
			"orphan":  {Parent: "nobody"},
		},
	}
	d := ToDigraph(sampleGraph(t), x)

	states := map[string]digraph.State{
		"user:alice":   digraph.StateSeed,
		"org:acme":     digraph.StateVisited,
		"repo:proj":    digraph.StateUnvisited,
		"repo:newrepo": digraph.StateDiscovered,
		"orphan":       digraph.StateDiscovered,
	}
	for id, want := range states {
		n, ok := d.Node(id)
		if !ok {
			t.Errorf("missing node %s", id)
			continue
		}
		if n.State != want {
			t.Errorf("%s state = %s, want %s", id, n.State, want)
		}
	}

	e, ok := d.Edge("org:acme", "repo:newrepo")
	if !ok || e.Kind != model.ContributorOf {
		t.Errorf("discovery edge = %+v, %v; want contributor_of", e, ok)
	}
	if d.Degree("orphan") != 0 {
		t.Error("discovery with unknown parent should stay unconnected")
	}
}

func TestToDigraph_SharedNameAcrossTypes(t *testing.T) {
	g := model.NewGraph()
	if err := g.SetOwner(model.User, "renku", "renku"); err != nil {
		t.Fatal(err)
	}
	d := ToDigraph(g, nil)

	if d.NodeCount() != 2 {
		t.Fatalf("NodeCount() = %d, want a user and a repository", d.NodeCount())
	}
	for id, want := range map[string]model.EntityType{"user:renku": model.User, "repo:renku": model.Repo} {
		n, ok := d.Node(id)
		if !ok || n.Type != want || n.Label() != "renku" {
			t.Errorf("node %s = %+v, %v", id, n, ok)
		}
	}
	e, ok := d.Edge("user:renku", "repo:renku")
	if !ok || e.Kind != model.OwnerOf {
		t.Errorf("owner edge = %+v, %v; want owner_of", e, ok)
	}
	if got := Clusters(g, nil)[0].Members; len(got) != 2 || got[0] != "renku" || got[1] != "renku" {
		t.Errorf("cluster members = %v", got)
	}
}

func TestToDigraph_DiscoveredTypeFromGraph(t *testing.T) {
	x := &Exploration{
		Discovered: map[string]Discovery{
			"alice":  {Parent: "proj"},
			"newbie": {Parent: "acme", Type: model.User},
		},
	}
	d := ToDigraph(sampleGraph(t), x)

	if d.NodeCount() != 5 {
		t.Errorf("NodeCount() = %d, want a single new node for newbie", d.NodeCount())
	}
	if e, ok := d.Edge("org:acme", "user:newbie"); !ok || e.Kind != model.MemberOf {
		t.Errorf("discovery edge = %+v, %v; want member_of", e, ok)
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		parent, child model.EntityType
		want          model.RelKind
	}{
		{model.User, model.Org, model.MemberOf},
		{model.Org, model.User, model.MemberOf},
		{model.User, model.Repo, model.ContributorOf},
		{model.Repo, model.Org, model.ContributorOf},
		{model.Repo, model.Repo, model.ParentOf},
		{model.User, model.User, model.Unknown},
		{model.Org, "", model.Unknown},
	}
	for _, tt := range tests {
		if got := InferKind(tt.parent, tt.child); got != tt.want {
			t.Errorf("InferKind(%q, %q) = %s, want %s", tt.parent, tt.child, got, tt.want)
		}
	}
}
