// Package nodelink draws the entity graph as a node-link diagram.
//
// # Pipeline
//
//	model.Graph ─ToDigraph→ digraph.Graph ─layout.Pack→ positions ─buildScene→ Scene ─encode→ png|svg|dot|pdf
//
// [ToDigraph] re-derives directed, kind-tagged edges from the denormalized
// relationship lists: ownership and contribution point from the entity to
// the repository, membership from the user to the organization, and forks
// from the parent repository to the child. An optional [Exploration] adds
// nodes that were discovered but never loaded, connected to the node that
// discovered them.
//
// # Output
//
// [Render] draws the whole graph into one image. [RenderClusters] draws one
// image per weakly connected component, largest first, each titled with its
// node and edge counts and carrying a legend of per-type counts.
//
// PNG is rasterized in-process with fogleman/gg. SVG is produced by Graphviz
// (neato with pinned positions, so it matches the PNG) and PDF converts that
// SVG with rsvg-convert. DOT writes the Graphviz source itself.
//
// Each image is encoded in memory and written atomically; a failure leaves
// no partial file behind. An empty graph logs a warning and writes nothing.
//
// # Capabilities
//
// Optional features are switched by an explicit [Capabilities] value rather
// than probed at import time. [DetectCapabilities] fills it from the host.
package nodelink
