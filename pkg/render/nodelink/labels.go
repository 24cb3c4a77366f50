package nodelink

import (
	"math"

	"github.com/matzehuels/ghgraph/pkg/digraph"
	"github.com/matzehuels/ghgraph/pkg/model"
)

// selectLabels returns the label text of every node that gets one. Graphs
// with at most limit nodes label everything; larger graphs label only seeds
// and organizations. Text is cut to length runes.
func selectLabels(d *digraph.Graph, limit, length int) map[string]string {
	all := d.NodeCount() <= limit
	out := make(map[string]string)
	for _, n := range d.Nodes() {
		if all || n.State == digraph.StateSeed || n.Type == model.Org {
			out[n.ID] = truncate(n.Label(), length)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type rect struct {
	x0, y0, x1, y1 float64
}

func (l *Label) box(pad float64) rect {
	return rect{l.X - l.W/2 - pad, l.Y - l.H/2 - pad, l.X + l.W/2 + pad, l.Y + l.H/2 + pad}
}

// overlap returns the penetration depth of a and b along each axis, or
// zeros when they do not intersect.
func overlap(a, b rect) (dx, dy float64) {
	dx = math.Min(a.x1, b.x1) - math.Max(a.x0, b.x0)
	dy = math.Min(a.y1, b.y1) - math.Max(a.y0, b.y0)
	if dx <= 0 || dy <= 0 {
		return 0, 0
	}
	return dx, dy
}

const (
	declutterIterations = 200
	declutterPad        = 2.0
)

// declutter pushes overlapping labels apart, and off node discs other than
// their own, along the axis of least overlap. Labels stay inside area.
// It returns the number of label pairs still overlapping.
func declutter(labels []Label, nodes []SceneNode, area rect) int {
	for range declutterIterations {
		moved := false
		for i := range labels {
			for j := i + 1; j < len(labels); j++ {
				dx, dy := overlap(labels[i].box(declutterPad), labels[j].box(declutterPad))
				if dx == 0 {
					continue
				}
				moved = true
				if dx < dy {
					s := math.Copysign(dx/2, labels[i].X-labels[j].X+tiebreak(i, j))
					labels[i].X += s
					labels[j].X -= s
				} else {
					s := math.Copysign(dy/2, labels[i].Y-labels[j].Y+tiebreak(i, j))
					labels[i].Y += s
					labels[j].Y -= s
				}
			}
			for _, n := range nodes {
				if n.ID == labels[i].NodeID {
					continue
				}
				disc := rect{n.X - n.R, n.Y - n.R, n.X + n.R, n.Y + n.R}
				dx, dy := overlap(labels[i].box(declutterPad), disc)
				if dx == 0 {
					continue
				}
				moved = true
				if dx < dy {
					labels[i].X += math.Copysign(dx, labels[i].X-n.X+1e-9)
				} else {
					labels[i].Y += math.Copysign(dy, labels[i].Y-n.Y+1e-9)
				}
			}
			clamp(&labels[i], area)
		}
		if !moved {
			break
		}
	}

	remaining := 0
	for i := range labels {
		for j := i + 1; j < len(labels); j++ {
			if dx, _ := overlap(labels[i].box(0), labels[j].box(0)); dx > 0 {
				remaining++
			}
		}
	}
	return remaining
}

// tiebreak separates labels sitting at identical coordinates.
func tiebreak(i, j int) float64 {
	if i < j {
		return 1e-9
	}
	return -1e-9
}

func clamp(l *Label, area rect) {
	l.X = math.Max(area.x0+l.W/2, math.Min(area.x1-l.W/2, l.X))
	l.Y = math.Max(area.y0+l.H/2, math.Min(area.y1-l.H/2, l.Y))
}
