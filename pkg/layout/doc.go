// Package layout computes 2-D node positions for node-link drawings.
//
// [Compute] positions a single connected component: a spectral embedding
// (the second and third Laplacian eigenvectors, via gonum's mat.EigenSym)
// refined by a short Fruchterman-Reingold pass. When the embedding cannot be
// computed or collapses onto a line, it starts from random positions and
// runs a longer force-directed pass instead.
//
// [Pack] lays out every weakly connected component of a graph on its own and
// arranges the results on a golden-angle spiral, largest component at the
// centre, without overlap. A seeded jitter separates coincident nodes.
//
// All coordinates returned by Compute lie in [-1, 1].
package layout
