// Package digraph provides the directed graph drawn by the renderer.
//
// Nodes carry an entity type and an exploration [State]; edges carry the
// relationship kind they were derived from. The graph keeps insertion order
// for both, so layouts seeded from it are reproducible.
//
//	g := digraph.New()
//	alice, epfl := digraph.Key(model.User, "alice"), digraph.Key(model.Org, "epfl")
//	_ = g.AddNode(digraph.Node{ID: alice, Name: "alice", Type: model.User})
//	_ = g.AddNode(digraph.Node{ID: epfl, Name: "epfl", Type: model.Org})
//	_, _ = g.AddEdge(digraph.Edge{From: alice, To: epfl, Kind: model.MemberOf})
//
// IDs are unique per graph; [Key] qualifies a name with its entity type so
// a user and a repository of the same name remain two nodes.
//
// [Graph.WeakComponents] splits the graph into weakly connected components
// using gonum's topo package on an undirected view, and [Graph.Subgraph]
// extracts one of them for per-cluster rendering.
//
// A Graph is not safe for concurrent mutation.
package digraph
