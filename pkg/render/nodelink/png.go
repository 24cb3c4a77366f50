package nodelink

import (
	"bytes"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/ghgraph/pkg/fonts"
)

func setHex(dc *gg.Context, hex string, alpha float64) {
	r, g, b := parseHex(hex)
	dc.SetRGBA(r, g, b, alpha)
}

// EncodePNG rasterizes s.
func EncodePNG(s *Scene) ([]byte, error) {
	dc := gg.NewContext(int(s.Width), int(s.Height))
	setHex(dc, backgroundColor, 1)
	dc.Clear()

	drawEdges(dc, s)
	drawNodes(dc, s)
	if err := drawLabels(dc, s); err != nil {
		return nil, err
	}
	if err := drawTitle(dc, s); err != nil {
		return nil, err
	}
	if err := drawLegend(dc, s); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawEdges(dc *gg.Context, s *Scene) {
	width := math.Max(1, s.Width/1200)
	radius := 0.0
	if len(s.Nodes) > 0 {
		radius = s.Nodes[0].R
	}
	head := radius * 0.9

	for _, e := range s.Edges {
		dx, dy := e.X2-e.X1, e.Y2-e.Y1
		l := math.Hypot(dx, dy)
		if l <= 2*radius {
			continue
		}
		ux, uy := dx/l, dy/l
		tipX, tipY := e.X2-ux*radius, e.Y2-uy*radius

		setHex(dc, e.Color, edgeAlpha)
		dc.SetLineWidth(width)
		dc.DrawLine(e.X1+ux*radius, e.Y1+uy*radius, tipX-ux*head, tipY-uy*head)
		dc.Stroke()

		dc.MoveTo(tipX, tipY)
		dc.LineTo(tipX-ux*head-uy*head/2, tipY-uy*head+ux*head/2)
		dc.LineTo(tipX-ux*head+uy*head/2, tipY-uy*head-ux*head/2)
		dc.ClosePath()
		dc.Fill()
	}
}

func drawNodes(dc *gg.Context, s *Scene) {
	for _, n := range s.Nodes {
		if n.Square {
			dc.DrawRectangle(n.X-n.R, n.Y-n.R, 2*n.R, 2*n.R)
		} else {
			dc.DrawCircle(n.X, n.Y, n.R)
		}
		setHex(dc, n.Fill, nodeAlpha)
		dc.FillPreserve()
		setHex(dc, outlineColor, 1)
		dc.SetLineWidth(1)
		dc.Stroke()
	}
}

func drawLabels(dc *gg.Context, s *Scene) error {
	if len(s.Labels) == 0 {
		return nil
	}
	face, err := fonts.Face(fonts.Regular, s.LabelSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	for _, l := range s.Labels {
		if s.Boxed {
			if math.Hypot(l.X-l.AnchorX, l.Y-l.AnchorY) > l.H {
				setHex(dc, outlineColor, 0.6)
				dc.SetLineWidth(0.8)
				dc.DrawLine(l.AnchorX, l.AnchorY, l.X, l.Y)
				dc.Stroke()
			}
			dc.DrawRoundedRectangle(l.X-l.W/2, l.Y-l.H/2, l.W, l.H, l.H/4)
			setHex(dc, panelColor, labelAlpha)
			dc.FillPreserve()
			setHex(dc, outlineColor, labelAlpha)
			dc.SetLineWidth(0.5)
			dc.Stroke()
		}
		setHex(dc, textColor, 1)
		dc.DrawStringAnchored(l.Text, l.X, l.Y, 0.5, 0.35)
	}
	return nil
}

func drawTitle(dc *gg.Context, s *Scene) error {
	face, err := fonts.Face(fonts.Bold, s.TitleSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	setHex(dc, textColor, 1)
	y := s.Height * titleFrac * 0.45
	dc.DrawStringAnchored(s.Title, s.Width/2, y, 0.5, 0.5)
	if s.Subtitle != "" {
		dc.DrawStringAnchored(s.Subtitle, s.Width/2, y+s.TitleSize*1.3, 0.5, 0.5)
	}
	return nil
}

func drawLegend(dc *gg.Context, s *Scene) error {
	if len(s.Legend) == 0 {
		return nil
	}
	face, err := fonts.Face(fonts.Regular, s.LegendSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	row := s.LegendSize * 1.8
	swatch := s.LegendSize
	pad := s.LegendSize
	width := 0.0
	for _, it := range s.Legend {
		w, _ := dc.MeasureString(it.Text)
		width = math.Max(width, w)
	}
	boxW := pad*3 + swatch + width
	boxH := pad*2 + row*float64(len(s.Legend))
	x0 := s.Width*(1-legendFrac) + pad
	y0 := s.Height*titleFrac + s.Width*marginFrac

	dc.DrawRoundedRectangle(x0, y0, boxW, boxH, pad/2)
	setHex(dc, panelColor, 0.9)
	dc.FillPreserve()
	setHex(dc, outlineColor, 1)
	dc.SetLineWidth(1)
	dc.Stroke()

	for i, it := range s.Legend {
		if it.Text == "" {
			continue
		}
		cy := y0 + pad + row*float64(i) + row/2
		sx := x0 + pad
		if it.Line {
			setHex(dc, it.Color, 1)
			dc.SetLineWidth(3)
			dc.DrawLine(sx, cy, sx+swatch, cy)
			dc.Stroke()
		} else {
			dc.DrawRectangle(sx, cy-swatch/2, swatch, swatch)
			setHex(dc, it.Color, 1)
			dc.FillPreserve()
			setHex(dc, outlineColor, 1)
			dc.SetLineWidth(1)
			dc.Stroke()
		}
		setHex(dc, textColor, 1)
		dc.DrawStringAnchored(it.Text, sx+swatch+pad, cy, 0, 0.35)
	}
	return nil
}
