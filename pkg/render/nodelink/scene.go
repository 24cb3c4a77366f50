package nodelink

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/image/font"

	"github.com/matzehuels/ghgraph/pkg/digraph"
	"github.com/matzehuels/ghgraph/pkg/fonts"
	"github.com/matzehuels/ghgraph/pkg/layout"
	"github.com/matzehuels/ghgraph/pkg/model"
)

// Scene is a fully resolved drawing in pixel coordinates, shared by the
// PNG and Graphviz encoders.
type Scene struct {
	Width, Height float64
	Title         string
	Subtitle      string
	Nodes         []SceneNode
	Edges         []SceneEdge
	Labels        []Label
	Legend        []LegendItem

	TitleSize, LabelSize, LegendSize float64
	// Boxed draws labels on panels with leader lines (decluttered output).
	Boxed bool
}

// SceneNode is a positioned node.
type SceneNode struct {
	ID     string
	X, Y   float64
	R      float64
	Fill   string
	Square bool
}

// SceneEdge is a directed segment between two node centres.
type SceneEdge struct {
	From, To       string
	X1, Y1, X2, Y2 float64
	Color          string
	Kind           model.RelKind
}

// Label is a text label centred at X, Y and attached to the node at
// AnchorX, AnchorY.
type Label struct {
	NodeID           string
	Text             string
	X, Y             float64
	W, H             float64
	AnchorX, AnchorY float64
}

// LegendItem is one legend row. Line rows show an edge color; an empty
// Text row is a spacer.
type LegendItem struct {
	Text  string
	Color string
	Line  bool
}

type sceneParams struct {
	width, height int
	title         string
	subtitle      string
	labels        map[string]string
	legend        []LegendItem
	declutter     bool
}

const (
	marginFrac = 0.03
	legendFrac = 0.17
	titleFrac  = 0.07
)

// buildScene fits pos into the drawing area of a width×height canvas,
// leaving room for the title above and the legend on the right.
func buildScene(d *digraph.Graph, pos map[string]layout.Point, params sceneParams) (*Scene, error) {
	w, h := float64(params.width), float64(params.height)
	s := &Scene{
		Width:      w,
		Height:     h,
		Title:      params.title,
		Subtitle:   params.subtitle,
		Legend:     params.legend,
		TitleSize:  math.Max(14, w/60),
		LabelSize:  math.Max(8, w/200),
		LegendSize: math.Max(10, w/150),
		Boxed:      params.declutter,
	}
	margin := w * marginFrac
	area := rect{
		x0: margin,
		y0: h*titleFrac + margin,
		x1: w*(1-legendFrac) - margin,
		y1: h - margin,
	}
	radius := math.Max(4, w/240)

	lo, hi := bounds(pos)
	spanX, spanY := math.Max(hi.X-lo.X, 1e-9), math.Max(hi.Y-lo.Y, 1e-9)
	inner := rect{area.x0 + radius*2, area.y0 + radius*2, area.x1 - radius*2, area.y1 - radius*2}
	scale := math.Min((inner.x1-inner.x0)/spanX, (inner.y1-inner.y0)/spanY)
	if len(pos) <= 1 {
		scale = 0
	}
	cx, cy := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2
	midX, midY := (inner.x0+inner.x1)/2, (inner.y0+inner.y1)/2
	place := func(p layout.Point) (float64, float64) {
		return midX + (p.X-cx)*scale, midY + (p.Y-cy)*scale
	}

	index := make(map[string]int, d.NodeCount())
	for _, n := range d.Nodes() {
		x, y := place(pos[n.ID])
		index[n.ID] = len(s.Nodes)
		s.Nodes = append(s.Nodes, SceneNode{
			ID:     n.ID,
			X:      x,
			Y:      y,
			R:      radius,
			Fill:   NodeColor(n),
			Square: n.State == digraph.StateSeed,
		})
	}
	for _, e := range d.Edges() {
		a, b := s.Nodes[index[e.From]], s.Nodes[index[e.To]]
		s.Edges = append(s.Edges, SceneEdge{
			From: e.From, To: e.To,
			X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y,
			Color: EdgeColor(e.Kind),
			Kind:  e.Kind,
		})
	}

	if len(params.labels) > 0 {
		face, err := fonts.Face(fonts.Regular, s.LabelSize)
		if err != nil {
			return nil, err
		}
		lh := float64(face.Metrics().Height.Ceil())
		for _, n := range s.Nodes {
			text, ok := params.labels[n.ID]
			if !ok {
				continue
			}
			lw := float64(font.MeasureString(face, text).Ceil()) + 6
			l := Label{NodeID: n.ID, Text: text, W: lw, H: lh + 4, AnchorX: n.X, AnchorY: n.Y, X: n.X}
			if params.declutter {
				l.Y = n.Y - n.R - l.H/2 - 2
			} else {
				l.Y = n.Y
			}
			s.Labels = append(s.Labels, l)
		}
		if params.declutter {
			declutter(s.Labels, s.Nodes, rect{0, area.y0, area.x1 + margin, h})
		}
	}
	return s, nil
}

func bounds(pos map[string]layout.Point) (lo, hi layout.Point) {
	return layout.Result{Positions: pos}.Bounds()
}

// graphTitle returns the title and subtitle of a whole-graph drawing.
func graphTitle(g *model.Graph) (string, string) {
	st := g.Stats()
	return "GitHub Network Graph",
		fmt.Sprintf("%d Users • %d Orgs • %d Repos", st[model.User], st[model.Org], st[model.Repo])
}

// clusterTitle returns the title and subtitle of cluster i (1-based) of n.
func clusterTitle(i, n int, d *digraph.Graph) (string, string) {
	return fmt.Sprintf("Cluster %d of %d", i, n),
		fmt.Sprintf("%d nodes • %d edges", d.NodeCount(), d.EdgeCount())
}

// legend lists node types, then the edge kinds present in d. With counts
// set each type row carries its node count.
func legend(d *digraph.Graph, counts bool) []LegendItem {
	types := d.CountByType()
	var items []LegendItem
	for _, t := range model.EntityTypes {
		text := t.Title()
		if counts {
			text = fmt.Sprintf("%s (%d)", text, types[t])
		}
		items = append(items, LegendItem{Text: text, Color: nodeColors[t]})
	}

	grey := 0
	for _, n := range d.Nodes() {
		if n.State == digraph.StateUnvisited || n.State == digraph.StateDiscovered {
			grey++
		}
	}
	if grey > 0 {
		text := "Unvisited"
		if counts {
			text = fmt.Sprintf("Unvisited (%d)", grey)
		}
		items = append(items, LegendItem{Text: text, Color: unvisitedColor})
	}

	items = append(items, LegendItem{})
	kinds := d.CountByKind()
	for _, k := range slices.Concat(model.RelKinds, []model.RelKind{model.Unknown}) {
		if kinds[k] > 0 {
			items = append(items, LegendItem{Text: k.Title(), Color: EdgeColor(k), Line: true})
		}
	}
	return items
}
