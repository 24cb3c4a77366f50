package layout

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/ghgraph/pkg/digraph"
)

// ErrDegenerate is returned by [Spectral] when no usable embedding exists.
var ErrDegenerate = errors.New("degenerate spectral embedding")

const (
	// DefaultIterations refines a spectral start.
	DefaultIterations = 50
	// DefaultFallbackIterations refines a random start.
	DefaultFallbackIterations = 100
	// DefaultJitter is the jitter amplitude relative to the packed extent.
	DefaultJitter = 0.01

	minDistance  = 0.01
	convergence  = 1e-4
	goldenAngle  = math.Pi * (3 - 2.23606797749979) // π(3-√5)
	packMargin   = 0.25
	spiralStride = 0.5
)

// Point is a position in layout space.
type Point struct {
	X, Y float64
}

// Graph is an undirected graph over nodes 0..N-1.
type Graph struct {
	N     int
	Edges [][2]int
}

// FromDigraph numbers the nodes of g in insertion order and drops edge
// direction and self-loops.
func FromDigraph(g *digraph.Graph) Graph {
	idx := g.Index()
	out := Graph{N: g.NodeCount()}
	for _, e := range g.Edges() {
		a, b := idx[e.From], idx[e.To]
		if a != b {
			out.Edges = append(out.Edges, [2]int{a, b})
		}
	}
	return out
}

func (g Graph) adjacency() [][]float64 {
	a := make([][]float64, g.N)
	for i := range a {
		a[i] = make([]float64, g.N)
	}
	for _, e := range g.Edges {
		a[e[0]][e[1]] = 1
		a[e[1]][e[0]] = 1
	}
	return a
}

// Method names the strategy Compute ended up using.
type Method string

const (
	MethodSpectral Method = "spectral"
	MethodRandom   Method = "random"
	MethodTrivial  Method = "trivial"
)

// Options tunes Compute and Pack. Zero fields take the package defaults.
type Options struct {
	Seed               uint64
	Iterations         int
	FallbackIterations int
	Jitter             float64
}

func (o *Options) setDefaults() {
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.FallbackIterations <= 0 {
		o.FallbackIterations = DefaultFallbackIterations
	}
	if o.Jitter < 0 {
		o.Jitter = 0
	}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Compute positions the nodes of g.
func Compute(g Graph, opts Options) ([]Point, Method) {
	opts.setDefaults()
	switch g.N {
	case 0:
		return nil, MethodTrivial
	case 1:
		return []Point{{}}, MethodTrivial
	}

	if pos, err := Spectral(g); err == nil {
		return ForceDirected(g, pos, opts.Iterations), MethodSpectral
	}
	pos := Random(g.N, newRand(opts.Seed))
	return ForceDirected(g, pos, opts.FallbackIterations), MethodRandom
}

// Spectral embeds g using the eigenvectors of its Laplacian belonging to the
// second and third smallest eigenvalues. Graphs with fewer than three nodes
// and embeddings without spread on both axes return ErrDegenerate.
func Spectral(g Graph) ([]Point, error) {
	if g.N < 3 {
		return nil, ErrDegenerate
	}
	a := g.adjacency()
	lap := mat.NewSymDense(g.N, nil)
	for i := range g.N {
		deg := 0.0
		for j := range g.N {
			deg += a[i][j]
			if i < j && a[i][j] != 0 {
				lap.SetSym(i, j, -a[i][j])
			}
		}
		lap.SetSym(i, i, deg)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(lap, true); !ok {
		return nil, ErrDegenerate
	}
	// A zero second eigenvalue means the graph is disconnected.
	if vals := eig.Values(nil); vals[1] < 1e-9 {
		return nil, ErrDegenerate
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	pos := make([]Point, g.N)
	for i := range g.N {
		pos[i] = Point{X: vecs.At(i, 1), Y: vecs.At(i, 2)}
	}
	for _, v := range []float64{spread(pos, func(p Point) float64 { return p.X }), spread(pos, func(p Point) float64 { return p.Y })} {
		if v < 1e-9 || math.IsNaN(v) {
			return nil, ErrDegenerate
		}
	}
	return Rescale(pos), nil
}

func spread(pos []Point, axis func(Point) float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range pos {
		v := axis(p)
		lo, hi = min(lo, v), max(hi, v)
	}
	return hi - lo
}

// Random returns n points drawn uniformly from the unit square.
func Random(n int, rng *rand.Rand) []Point {
	pos := make([]Point, n)
	for i := range pos {
		pos[i] = Point{X: rng.Float64(), Y: rng.Float64()}
	}
	return pos
}

// ForceDirected refines pos with Fruchterman-Reingold iterations. The
// optimal distance is 2/√n; the temperature starts at a tenth of the
// layout extent and cools linearly. The result is rescaled to [-1, 1].
func ForceDirected(g Graph, pos []Point, iterations int) []Point {
	n := g.N
	if n == 0 {
		return nil
	}
	pos = append([]Point(nil), pos...)
	if n == 1 {
		return []Point{{}}
	}

	a := g.adjacency()
	k := 2 / math.Sqrt(float64(n))
	t := 0.1 * max(
		spread(pos, func(p Point) float64 { return p.X }),
		spread(pos, func(p Point) float64 { return p.Y }),
	)
	dt := t / float64(iterations+1)
	disp := make([]Point, n)

	for range iterations {
		for i := range n {
			disp[i] = Point{}
			for j := range n {
				if i == j {
					continue
				}
				dx, dy := pos[i].X-pos[j].X, pos[i].Y-pos[j].Y
				d := max(math.Hypot(dx, dy), minDistance)
				f := k*k/(d*d) - a[i][j]*d/k
				disp[i].X += dx * f
				disp[i].Y += dy * f
			}
		}

		moved := 0.0
		for i := range n {
			l := math.Hypot(disp[i].X, disp[i].Y)
			if l < minDistance {
				l = 0.1
			}
			sx, sy := disp[i].X*t/l, disp[i].Y*t/l
			pos[i].X += sx
			pos[i].Y += sy
			moved += math.Hypot(sx, sy)
		}
		t -= dt
		if moved/float64(n) < convergence {
			break
		}
	}
	return Rescale(pos)
}

// Rescale centres pos on the origin and scales it so the largest absolute
// coordinate is 1. A single point, or coincident points, map to the origin.
func Rescale(pos []Point) []Point {
	if len(pos) == 0 {
		return pos
	}
	var cx, cy float64
	for _, p := range pos {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pos))
	cy /= float64(len(pos))

	lim := 0.0
	out := make([]Point, len(pos))
	for i, p := range pos {
		out[i] = Point{X: p.X - cx, Y: p.Y - cy}
		lim = max(lim, math.Abs(out[i].X), math.Abs(out[i].Y))
	}
	if lim == 0 {
		return out
	}
	for i := range out {
		out[i].X /= lim
		out[i].Y /= lim
	}
	return out
}
