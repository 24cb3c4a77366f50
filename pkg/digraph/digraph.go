package digraph

import (
	"cmp"
	"errors"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/ghgraph/pkg/model"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// State describes how a node entered the graph.
type State int

const (
	// StateVisited is an entity whose relationships were fully loaded.
	StateVisited State = iota
	// StateSeed is a visited entity the exploration started from.
	StateSeed
	// StateUnvisited is an entity present in the graph but outside the
	// visited set of an exploration.
	StateUnvisited
	// StateDiscovered is a name reached from a visited entity but never
	// loaded itself.
	StateDiscovered
)

func (s State) String() string {
	switch s {
	case StateSeed:
		return "seed"
	case StateUnvisited:
		return "unvisited"
	case StateDiscovered:
		return "discovered"
	default:
		return "visited"
	}
}

// Node is a named entity. ID is unique within the graph; Name is the
// display name, which entities of different types may share. Type may be
// empty for discovered nodes whose kind is unknown.
type Node struct {
	ID    string
	Name  string
	Type  model.EntityType
	State State
}

// Label returns the display name, falling back to the ID.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Key returns the node ID of the entity of type t called name, e.g.
// "repo:renku". An empty type yields the bare name.
func Key(t model.EntityType, name string) string {
	if t == "" {
		return name
	}
	return string(t) + ":" + name
}

// Edge is a directed, kind-tagged connection.
type Edge struct {
	From string
	To   string
	Kind model.RelKind
}

// Graph is a directed graph with typed nodes and kind-tagged edges. Nodes
// and edges keep insertion order; at most one edge exists per ordered pair.
//
// The zero value is not usable; call New.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	pairs    map[[2]string]int
	outgoing map[string][]string
	incoming map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		pairs:    make(map[[2]string]int),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds n. It returns ErrInvalidNodeID for an empty ID and
// ErrDuplicateNodeID when the ID is taken.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge adds e between two existing nodes. When an edge already connects
// From to To the call is a no-op and reports false.
func (g *Graph) AddEdge(e Edge) (bool, error) {
	if _, ok := g.nodes[e.From]; !ok {
		return false, ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return false, ErrUnknownTargetNode
	}
	key := [2]string{e.From, e.To}
	if _, exists := g.pairs[key]; exists {
		return false, nil
	}
	g.pairs[key] = len(g.edges)
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return true, nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge from→to.
func (g *Graph) Edge(from, to string) (Edge, bool) {
	i, ok := g.pairs[[2]string{from, to}]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Degree returns the number of edges touching id in either direction.
func (g *Graph) Degree(id string) int { return len(g.outgoing[id]) + len(g.incoming[id]) }

// CountByType returns the number of nodes per entity type. Discovered nodes
// without a type are counted under the empty type.
func (g *Graph) CountByType() map[model.EntityType]int {
	out := make(map[model.EntityType]int)
	for _, n := range g.nodes {
		out[n.Type]++
	}
	return out
}

// CountByKind returns the number of edges per relationship kind.
func (g *Graph) CountByKind() map[model.RelKind]int {
	out := make(map[model.RelKind]int)
	for _, e := range g.edges {
		out[e.Kind]++
	}
	return out
}

// Index returns the insertion position of every node, the numbering used by
// [Graph.Undirected] and the layout package.
func (g *Graph) Index() map[string]int {
	idx := make(map[string]int, len(g.order))
	for i, id := range g.order {
		idx[id] = i
	}
	return idx
}

// Undirected returns a gonum view of the graph with edge direction dropped.
// Node i is the i-th node in insertion order. Self-loops are omitted.
func (g *Graph) Undirected() *simple.UndirectedGraph {
	u := simple.NewUndirectedGraph()
	for i := range g.order {
		u.AddNode(simple.Node(int64(i)))
	}
	idx := g.Index()
	for _, e := range g.edges {
		from, to := idx[e.From], idx[e.To]
		if from == to {
			continue
		}
		u.SetEdge(simple.Edge{F: simple.Node(int64(from)), T: simple.Node(int64(to))})
	}
	return u
}

// WeakComponents returns the node IDs of every weakly connected component,
// largest first. Ties are broken by the earliest inserted member; IDs within
// a component keep insertion order.
func (g *Graph) WeakComponents() [][]string {
	if len(g.order) == 0 {
		return nil
	}
	raw := topo.ConnectedComponents(g.Undirected())

	comps := make([][]int, 0, len(raw))
	for _, c := range raw {
		ids := make([]int, len(c))
		for i, n := range c {
			ids[i] = int(n.ID())
		}
		slices.Sort(ids)
		comps = append(comps, ids)
	}
	slices.SortFunc(comps, func(a, b []int) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return cmp.Compare(a[0], b[0])
	})

	out := make([][]string, len(comps))
	for i, c := range comps {
		out[i] = make([]string, len(c))
		for j, idx := range c {
			out[i][j] = g.order[idx]
		}
	}
	return out
}

// Subgraph returns the nodes in ids and every edge between two of them.
// Unknown IDs are ignored.
func (g *Graph) Subgraph(ids []string) *Graph {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	sub := New()
	for _, id := range g.order {
		if keep[id] {
			_ = sub.AddNode(*g.nodes[id])
		}
	}
	for _, e := range g.edges {
		if keep[e.From] && keep[e.To] {
			_, _ = sub.AddEdge(e)
		}
	}
	return sub
}
