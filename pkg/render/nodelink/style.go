package nodelink

import (
	"fmt"
	"strings"

	"github.com/matzehuels/ghgraph/pkg/digraph"
	"github.com/matzehuels/ghgraph/pkg/model"
)

const (
	backgroundColor = "#2b2b2b"
	panelColor      = "#3a3a3a"
	textColor       = "#ffffff"
	outlineColor    = "#ffffff"
	unvisitedColor  = "#7f7f7f"
	unknownColor    = "#bbbbbb"

	nodeAlpha  = 0.9
	edgeAlpha  = 0.5
	labelAlpha = 0.8
)

var nodeColors = map[model.EntityType]string{
	model.User: "#00d9ff",
	model.Org:  "#ffcc00",
	model.Repo: "#00ff88",
}

var edgeColors = map[model.RelKind]string{
	model.OwnerOf:       "#ff6b6b",
	model.ContributorOf: "#4ecdc4",
	model.MemberOf:      "#95e1d3",
	model.ParentOf:      "#ffd93d",
	model.Unknown:       unknownColor,
}

// NodeColor returns the fill for n: grey for unvisited and discovered
// nodes, otherwise the color of its type.
func NodeColor(n *digraph.Node) string {
	if n.State == digraph.StateUnvisited || n.State == digraph.StateDiscovered {
		return unvisitedColor
	}
	if c, ok := nodeColors[n.Type]; ok {
		return c
	}
	return textColor
}

// EdgeColor returns the stroke color of kind.
func EdgeColor(kind model.RelKind) string {
	if c, ok := edgeColors[kind]; ok {
		return c
	}
	return unknownColor
}

// parseHex decodes #rrggbb into components in [0, 1].
func parseHex(s string) (r, g, b float64) {
	var ri, gi, bi uint8
	if _, err := fmt.Sscanf(strings.TrimPrefix(s, "#"), "%02x%02x%02x", &ri, &gi, &bi); err != nil {
		return 1, 1, 1
	}
	return float64(ri) / 255, float64(gi) / 255, float64(bi) / 255
}

// hexAlpha appends an alpha byte to #rrggbb for Graphviz colors.
func hexAlpha(s string, alpha float64) string {
	return fmt.Sprintf("%s%02x", s, uint8(alpha*255+0.5))
}
