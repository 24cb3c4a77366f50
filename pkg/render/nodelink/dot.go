package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// pointsPerInch converts scene pixels (points at 72 dpi) to the inches
// neato expects for pinned positions.
const pointsPerInch = 72.0

// ToDOT converts s to Graphviz source for the neato engine. Every node is
// pinned to its scene position, so Graphviz output matches the raster.
func ToDOT(s *Scene) string {
	labels := make(map[string]string, len(s.Labels))
	for _, l := range s.Labels {
		labels[l.NodeID] = l.Text
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", backgroundColor)
	fmt.Fprintf(&buf, "  label=%q;\n", s.Title+"\n"+s.Subtitle)
	buf.WriteString("  labelloc=t;\n")
	fmt.Fprintf(&buf, "  fontcolor=%q;\n", textColor)
	fmt.Fprintf(&buf, "  fontsize=%.0f;\n", s.TitleSize)
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	fmt.Fprintf(&buf, "  node [style=filled, color=%q, fontcolor=%q, fontsize=%.0f, label=\"\", fixedsize=true];\n",
		outlineColor, textColor, s.LabelSize)
	fmt.Fprintf(&buf, "  edge [penwidth=2, arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		attrs := []string{
			fmt.Sprintf("pos=\"%.3f,%.3f!\"", n.X/pointsPerInch, (s.Height-n.Y)/pointsPerInch),
			fmt.Sprintf("width=%.3f", 2*n.R/pointsPerInch),
			fmt.Sprintf("fillcolor=%q", hexAlpha(n.Fill, nodeAlpha)),
		}
		if n.Square {
			attrs = append(attrs, "shape=square")
		} else {
			attrs = append(attrs, "shape=circle")
		}
		if text, ok := labels[n.ID]; ok {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", text))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", e.From, e.To, hexAlpha(e.Color, edgeAlpha))
	}
	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG lays out dot with neato, honouring pinned positions, and
// returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales to its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
