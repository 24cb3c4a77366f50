package chart

import (
	"math"
	"slices"
	"time"

	"github.com/matzehuels/ghgraph/pkg/fonts"
)

// Point is one sample of a time series.
type Point struct {
	T time.Time
	V float64
}

// Series is a named, colored time series.
type Series struct {
	Name   string
	Color  string
	Points []Point
}

// Bar is one category of a bar chart.
type Bar struct {
	Label string
	Value float64
}

// Stack is one column of a stacked bar chart.
type Stack struct {
	T      time.Time
	Values []float64
}

// Line draws one or more time series with point markers. Series without
// points are ignored; if none is left Line returns ErrEmpty.
func Line(opts Options, series ...Series) ([]byte, error) {
	series = slices.DeleteFunc(slices.Clone(series), func(s Series) bool { return len(s.Points) == 0 })
	if len(series) == 0 {
		return nil, ErrEmpty
	}

	var lo, hi time.Time
	top := 0.0
	for i, s := range series {
		for j, p := range s.Points {
			if (i == 0 && j == 0) || p.T.Before(lo) {
				lo = p.T
			}
			if (i == 0 && j == 0) || p.T.After(hi) {
				hi = p.T
			}
			top = math.Max(top, p.V)
		}
	}

	c, err := newCanvas(opts, 0)
	if err != nil {
		return nil, err
	}
	ty, err := c.yAxis(top)
	if err != nil {
		return nil, err
	}
	tx, err := c.timeAxis(lo, hi)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(series))
	colors := make([]string, len(series))
	for i, s := range series {
		names[i], colors[i] = s.Name, s.Color
		pts := slices.Clone(s.Points)
		slices.SortFunc(pts, func(a, b Point) int { return a.T.Compare(b.T) })

		setHex(c.dc, s.Color, 1)
		c.dc.SetLineWidth(2)
		for j, p := range pts {
			if j == 0 {
				c.dc.MoveTo(tx(p.T), ty(p.V))
			} else {
				c.dc.LineTo(tx(p.T), ty(p.V))
			}
		}
		c.dc.Stroke()
		for _, p := range pts {
			c.dc.DrawCircle(tx(p.T), ty(p.V), 2.5)
			c.dc.Fill()
		}
	}
	if len(series) > 1 || series[0].Name != "" {
		if err := c.legend(names, colors); err != nil {
			return nil, err
		}
	}
	return c.png()
}

// Bars draws one vertical bar per category in the given order.
func Bars(opts Options, color string, bars []Bar) ([]byte, error) {
	if len(bars) == 0 {
		return nil, ErrEmpty
	}
	top := 0.0
	for _, b := range bars {
		top = math.Max(top, b.Value)
	}

	c, err := newCanvas(opts, 0)
	if err != nil {
		return nil, err
	}
	ty, err := c.yAxis(top)
	if err != nil {
		return nil, err
	}

	slot := c.area.w() / float64(len(bars))
	for i, b := range bars {
		x := c.area.x0 + slot*float64(i)
		setHex(c.dc, color, 1)
		c.dc.DrawRectangle(x+slot*0.2, ty(b.Value), slot*0.6, c.area.y1-ty(b.Value))
		c.dc.Fill()

		label := b.Label
		if r := []rune(label); len(r) > 14 {
			label = string(r[:13]) + "…"
		}
		face, err := fonts.Face(fonts.Regular, 10)
		if err != nil {
			return nil, err
		}
		c.dc.Push()
		c.dc.SetFontFace(face)
		setHex(c.dc, textColor, 1)
		cx := x + slot/2
		c.dc.RotateAbout(-math.Pi/4, cx, c.area.y1+8)
		c.dc.DrawStringAnchored(label, cx, c.area.y1+8, 1, 0.5)
		c.dc.Pop()
	}
	return c.png()
}

// StackedBars draws one column per stack with its values stacked bottom up
// in keys order. Colors cycle when shorter than keys.
func StackedBars(opts Options, keys, colors []string, stacks []Stack) ([]byte, error) {
	if len(stacks) == 0 || len(keys) == 0 || len(colors) == 0 {
		return nil, ErrEmpty
	}
	stacks = slices.Clone(stacks)
	slices.SortFunc(stacks, func(a, b Stack) int { return a.T.Compare(b.T) })

	top := 0.0
	for _, s := range stacks {
		sum := 0.0
		for _, v := range s.Values {
			sum += v
		}
		top = math.Max(top, sum)
	}

	c, err := newCanvas(opts, 0)
	if err != nil {
		return nil, err
	}
	ty, err := c.yAxis(top)
	if err != nil {
		return nil, err
	}
	lo, hi := stacks[0].T, stacks[len(stacks)-1].T
	tx, err := c.timeAxis(lo, hi)
	if err != nil {
		return nil, err
	}

	width := math.Max(2, c.area.w()/float64(len(stacks))*0.8)
	for _, s := range stacks {
		base := 0.0
		x := tx(s.T) - width/2
		for k := range keys {
			if k >= len(s.Values) || s.Values[k] <= 0 {
				continue
			}
			setHex(c.dc, colors[k%len(colors)], 1)
			c.dc.DrawRectangle(x, ty(base+s.Values[k]), width, ty(base)-ty(base+s.Values[k]))
			c.dc.Fill()
			base += s.Values[k]
		}
	}
	if err := c.legend(keys, colors); err != nil {
		return nil, err
	}
	return c.png()
}

// Heatmap draws values[row][col] as colored cells on the viridis scale.
// Rows are drawn top to bottom in the order given.
func Heatmap(opts Options, rows, cols []string, values [][]float64) ([]byte, error) {
	if len(rows) == 0 || len(cols) == 0 || len(values) == 0 {
		return nil, ErrEmpty
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range values {
		for _, v := range row {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) {
		return nil, ErrEmpty
	}

	c, err := newCanvas(opts, 70)
	if err != nil {
		return nil, err
	}
	cw, ch := c.area.w()/float64(len(cols)), c.area.h()/float64(len(rows))
	for r := range rows {
		for col := range cols {
			v := lo
			if r < len(values) && col < len(values[r]) {
				v = values[r][col]
			}
			setRGB(c, viridis(normalize(v, lo, hi)))
			c.dc.DrawRectangle(c.area.x0+float64(col)*cw, c.area.y0+float64(r)*ch, cw, ch)
			c.dc.Fill()
		}
	}
	for r, name := range rows {
		if err := c.text(name, fonts.Regular, 10, c.area.x0-6, c.area.y0+(float64(r)+0.5)*ch, 1, 0.5); err != nil {
			return nil, err
		}
	}
	for col, name := range cols {
		if err := c.text(name, fonts.Regular, 10, c.area.x0+(float64(col)+0.5)*cw, c.area.y1+12, 0.5, 0.5); err != nil {
			return nil, err
		}
	}
	if err := colorBar(c, lo, hi); err != nil {
		return nil, err
	}
	return c.png()
}

func colorBar(c *canvas, lo, hi float64) error {
	x := c.area.x1 + 20
	const steps = 64
	h := c.area.h() / steps
	for i := range steps {
		setRGB(c, viridis(1-float64(i)/(steps-1)))
		c.dc.DrawRectangle(x, c.area.y0+float64(i)*h, 14, h+0.5)
		c.dc.Fill()
	}
	if err := c.text(formatTick(hi), fonts.Regular, 10, x+18, c.area.y0, 0, 0.5); err != nil {
		return err
	}
	return c.text(formatTick(lo), fonts.Regular, 10, x+18, c.area.y1, 0, 0.5)
}

func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

func setRGB(c *canvas, rgb [3]float64) { c.dc.SetRGB(rgb[0], rgb[1], rgb[2]) }

var viridisStops = [][3]float64{
	{0.267, 0.005, 0.329},
	{0.283, 0.141, 0.458},
	{0.254, 0.265, 0.530},
	{0.207, 0.372, 0.553},
	{0.164, 0.471, 0.558},
	{0.128, 0.567, 0.551},
	{0.135, 0.659, 0.518},
	{0.267, 0.749, 0.441},
	{0.478, 0.821, 0.318},
	{0.741, 0.873, 0.150},
	{0.993, 0.906, 0.144},
}

// viridis maps t in [0, 1] onto the viridis palette.
func viridis(t float64) [3]float64 {
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(viridisStops)-1)
	i := int(pos)
	if i >= len(viridisStops)-1 {
		return viridisStops[len(viridisStops)-1]
	}
	f := pos - float64(i)
	a, b := viridisStops[i], viridisStops[i+1]
	return [3]float64{a[0] + (b[0]-a[0])*f, a[1] + (b[1]-a[1])*f, a[2] + (b[2]-a[2])*f}
}
