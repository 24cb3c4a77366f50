package layout

import (
	"math"

	"github.com/matzehuels/ghgraph/pkg/digraph"
)

// Component is the layout of one weakly connected component.
type Component struct {
	IDs    []string
	Method Method
	Center Point
	Radius float64
}

// Result holds packed positions keyed by node ID.
type Result struct {
	Positions  map[string]Point
	Components []Component
}

// Bounds returns the bounding box of all positions.
func (r Result) Bounds() (lo, hi Point) {
	first := true
	for _, p := range r.Positions {
		if first {
			lo, hi = p, p
			first = false
			continue
		}
		lo = Point{X: min(lo.X, p.X), Y: min(lo.Y, p.Y)}
		hi = Point{X: max(hi.X, p.X), Y: max(hi.Y, p.Y)}
	}
	return lo, hi
}

// Pack lays out each weakly connected component of g with [Compute] and
// places the components on a golden-angle spiral, largest first, at the
// first spiral position where they overlap nothing already placed. A
// component of n nodes occupies a disc of radius √n.
func Pack(g *digraph.Graph, opts Options) Result {
	opts.setDefaults()
	res := Result{Positions: make(map[string]Point, g.NodeCount())}

	for ci, ids := range g.WeakComponents() {
		sub := g.Subgraph(ids)
		local, method := Compute(FromDigraph(sub), Options{
			Seed:               opts.Seed + uint64(ci),
			Iterations:         opts.Iterations,
			FallbackIterations: opts.FallbackIterations,
		})

		radius := math.Sqrt(float64(len(ids)))
		center := place(res.Components, radius)
		for i, id := range sub.NodeIDs() {
			res.Positions[id] = Point{
				X: center.X + local[i].X*radius,
				Y: center.Y + local[i].Y*radius,
			}
		}
		res.Components = append(res.Components, Component{IDs: ids, Method: method, Center: center, Radius: radius})
	}

	if opts.Jitter > 0 && len(res.Positions) > 0 {
		jitter(g, res.Positions, opts)
	}
	return res
}

func place(placed []Component, radius float64) Point {
	if len(placed) == 0 {
		return Point{}
	}
	for step := 1; ; step++ {
		angle := float64(step) * goldenAngle
		dist := spiralStride * math.Sqrt(float64(step))
		c := Point{X: dist * math.Cos(angle), Y: dist * math.Sin(angle)}
		if fits(placed, c, radius) {
			return c
		}
	}
}

func fits(placed []Component, c Point, radius float64) bool {
	for _, p := range placed {
		if math.Hypot(c.X-p.Center.X, c.Y-p.Center.Y) < p.Radius+radius+packMargin {
			return false
		}
	}
	return true
}

// jitter displaces every node by a seeded offset proportional to the packed
// extent, visiting nodes in insertion order so the result is reproducible.
func jitter(g *digraph.Graph, pos map[string]Point, opts Options) {
	lo, hi := Result{Positions: pos}.Bounds()
	amp := opts.Jitter * max(hi.X-lo.X, hi.Y-lo.Y, 1)
	rng := newRand(opts.Seed)
	for _, id := range g.NodeIDs() {
		p := pos[id]
		p.X += (rng.Float64() - 0.5) * amp
		p.Y += (rng.Float64() - 0.5) * amp
		pos[id] = p
	}
}
