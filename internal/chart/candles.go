package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"MarketBrief/internal/model"
)

// minBody keeps doji candles visible.
const minBody = vg.Length(1)

// candles draws one direction of candles: a shadow from low to high and
// a body from open to close, centred on the bar's open time.
type candles struct {
	bars   []model.Bar
	body   float64 // seconds
	shadow float64 // seconds
	color  color.Color
}

func (c *candles) Plot(cv draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&cv)
	for _, b := range c.bars {
		x := unix(b.OpenTime)
		fillBox(&cv, c.color, trX(x-c.shadow/2), trX(x+c.shadow/2), trY(b.Low), trY(b.High), minBody)
		lo, hi := math.Min(b.Open, b.Close), math.Max(b.Open, b.Close)
		fillBox(&cv, c.color, trX(x-c.body/2), trX(x+c.body/2), trY(lo), trY(hi), minBody)
	}
}

func (c *candles) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, b := range c.bars {
		x := unix(b.OpenTime)
		xmin, xmax = math.Min(xmin, x-c.body/2), math.Max(xmax, x+c.body/2)
		ymin, ymax = math.Min(ymin, b.Low), math.Max(ymax, b.High)
	}
	return xmin, xmax, ymin, ymax
}

// volumeBars draws bar volume from zero in one direction's color.
type volumeBars struct {
	bars  []model.Bar
	width float64 // seconds
	color color.Color
}

func (v *volumeBars) Plot(cv draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&cv)
	for _, b := range v.bars {
		if b.Volume <= 0 {
			continue
		}
		x := unix(b.OpenTime)
		fillBox(&cv, v.color, trX(x-v.width/2), trX(x+v.width/2), trY(0), trY(b.Volume), 0)
	}
}

func (v *volumeBars) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = math.Inf(1), math.Inf(-1)
	for _, b := range v.bars {
		x := unix(b.OpenTime)
		xmin, xmax = math.Min(xmin, x-v.width/2), math.Max(xmax, x+v.width/2)
		ymax = math.Max(ymax, b.Volume)
	}
	return xmin, xmax, 0, ymax
}

func fillBox(c *draw.Canvas, clr color.Color, x0, x1, y0, y1, min vg.Length) {
	if y1-y0 < min {
		y1 = y0 + min
	}
	c.FillPolygon(clr, []vg.Point{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
	})
}
