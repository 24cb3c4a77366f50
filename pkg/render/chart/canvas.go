package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fogleman/gg"

	"github.com/matzehuels/ghgraph/pkg/fonts"
)

// ErrEmpty is returned when a chart has nothing to draw.
var ErrEmpty = errors.New("chart has no data")

const (
	DefaultWidth  = 900
	DefaultHeight = 420

	backgroundColor = "#ffffff"
	axisColor       = "#444444"
	gridColor       = "#e5e5e5"
	textColor       = "#222222"
)

// Options holds the frame of a chart. Zero sizes take the defaults.
type Options struct {
	Width, Height int
	Title         string
	XLabel        string
	YLabel        string
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

type plotArea struct {
	x0, y0, x1, y1 float64
}

func (p plotArea) w() float64 { return p.x1 - p.x0 }
func (p plotArea) h() float64 { return p.y1 - p.y0 }

type canvas struct {
	dc   *gg.Context
	area plotArea
	opts Options
}

func newCanvas(opts Options, rightPad float64) (*canvas, error) {
	w, h := opts.size()
	dc := gg.NewContext(w, h)
	setHex(dc, backgroundColor, 1)
	dc.Clear()

	c := &canvas{
		dc:   dc,
		opts: opts,
		area: plotArea{x0: 70, y0: 50, x1: float64(w) - 20 - rightPad, y1: float64(h) - 60},
	}
	if err := c.text(opts.Title, fonts.Bold, 15, float64(w)/2, 24, 0.5, 0.5); err != nil {
		return nil, err
	}
	if err := c.text(opts.XLabel, fonts.Regular, 12, (c.area.x0+c.area.x1)/2, float64(h)-14, 0.5, 0.5); err != nil {
		return nil, err
	}
	if opts.YLabel != "" {
		face, err := fonts.Face(fonts.Regular, 12)
		if err != nil {
			return nil, err
		}
		dc.Push()
		dc.SetFontFace(face)
		setHex(dc, textColor, 1)
		dc.RotateAbout(-math.Pi/2, 16, (c.area.y0+c.area.y1)/2)
		dc.DrawStringAnchored(opts.YLabel, 16, (c.area.y0+c.area.y1)/2, 0.5, 0.5)
		dc.Pop()
	}
	return c, nil
}

func (c *canvas) text(s string, w fonts.Weight, size, x, y, ax, ay float64) error {
	if s == "" {
		return nil
	}
	face, err := fonts.Face(w, size)
	if err != nil {
		return err
	}
	c.dc.SetFontFace(face)
	setHex(c.dc, textColor, 1)
	c.dc.DrawStringAnchored(s, x, y, ax, ay)
	return nil
}

// yAxis draws horizontal grid lines and tick labels for [0, top] and
// returns the mapping from values to pixel rows.
func (c *canvas) yAxis(top float64) (func(float64) float64, error) {
	step := niceStep(top, 5)
	top = math.Max(step, math.Ceil(top/step)*step)
	ty := func(v float64) float64 { return c.area.y1 - v/top*c.area.h() }

	for v := 0.0; v <= top+step/2; v += step {
		y := ty(v)
		setHex(c.dc, gridColor, 1)
		c.dc.SetLineWidth(1)
		c.dc.DrawLine(c.area.x0, y, c.area.x1, y)
		c.dc.Stroke()
		if err := c.text(formatTick(v), fonts.Regular, 10, c.area.x0-6, y, 1, 0.5); err != nil {
			return nil, err
		}
	}
	c.frame()
	return ty, nil
}

// timeAxis labels [lo, hi] with at most six evenly spaced dates and returns
// the mapping from times to pixel columns.
func (c *canvas) timeAxis(lo, hi time.Time) (func(time.Time) float64, error) {
	span := hi.Sub(lo)
	if span <= 0 {
		span = 30 * 24 * time.Hour
		lo = lo.Add(-span / 2)
	}
	tx := func(t time.Time) float64 {
		return c.area.x0 + float64(t.Sub(lo))/float64(span)*c.area.w()
	}
	layout := "2006-01"
	if span > 3*365*24*time.Hour {
		layout = "2006"
	}
	const ticks = 6
	for i := range ticks {
		t := lo.Add(time.Duration(float64(span) * float64(i) / (ticks - 1)))
		if err := c.text(t.Format(layout), fonts.Regular, 10, tx(t), c.area.y1+14, 0.5, 0.5); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

func (c *canvas) frame() {
	setHex(c.dc, axisColor, 1)
	c.dc.SetLineWidth(1)
	c.dc.DrawLine(c.area.x0, c.area.y1, c.area.x1, c.area.y1)
	c.dc.DrawLine(c.area.x0, c.area.y0, c.area.x0, c.area.y1)
	c.dc.Stroke()
}

// legend draws one swatch per entry in the top-left corner of the plot.
func (c *canvas) legend(names, colors []string) error {
	x, y := c.area.x0+10, c.area.y0+10
	for i, name := range names {
		setHex(c.dc, colors[i%len(colors)], 1)
		c.dc.DrawRectangle(x, y+float64(i)*16, 10, 10)
		c.dc.Fill()
		if err := c.text(name, fonts.Regular, 11, x+16, y+float64(i)*16+5, 0, 0.5); err != nil {
			return err
		}
	}
	return nil
}

func (c *canvas) png() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// niceStep returns a 1, 2 or 5 times power-of-ten step dividing [0, top]
// into about n intervals.
func niceStep(top float64, n int) float64 {
	if top <= 0 || math.IsNaN(top) || math.IsInf(top, 0) {
		return 1
	}
	raw := top / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if raw <= m*mag {
			return m * mag
		}
	}
	return 10 * mag
}

func formatTick(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e4:
		return fmt.Sprintf("%.0fk", v/1e3)
	case v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

func setHex(dc *gg.Context, hex string, alpha float64) {
	c, err := parseHex(hex)
	if err != nil {
		c = [3]float64{0, 0, 0}
	}
	dc.SetRGBA(c[0], c[1], c[2], alpha)
}

func parseHex(s string) ([3]float64, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return [3]float64{}, fmt.Errorf("color %q: %w", s, err)
	}
	return [3]float64{float64(r) / 255, float64(g) / 255, float64(b) / 255}, nil
}
