package chart

import (
	"image/color"

	"gonum.org/v1/plot/vg"
)

// Options controls the candle chart layout. Jobs start from
// DefaultOptions and only override what differs for them.
type Options struct {
	Window      int     // trailing bars drawn
	BodyRatio   float64 // candle body width as a fraction of bar spacing
	ShadowRatio float64 // wick width as a fraction of bar spacing
	Padding     float64 // price axis headroom as a fraction of the high-low span

	Width  vg.Length
	Height vg.Length
	DPI    int

	UpColor    color.Color
	DownColor  color.Color
	PriceColor color.Color
	SMAColor   color.Color

	TimeFormat string
}

// DefaultOptions returns the shared chart shape: 50 bars, 30x15in at 100dpi.
func DefaultOptions() Options {
	return Options{
		Window:      50,
		BodyRatio:   0.6,
		ShadowRatio: 0.2,
		Padding:     0.05,
		Width:       30 * vg.Inch,
		Height:      15 * vg.Inch,
		DPI:         100,
		UpColor:     color.RGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}, // lime
		DownColor:   color.RGBA{R: 0xff, G: 0x63, B: 0x47, A: 0xff}, // tomato
		PriceColor:  color.RGBA{R: 0x94, G: 0x00, B: 0xd3, A: 0xff}, // darkviolet
		SMAColor:    color.RGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff},
		TimeFormat:  "2006-01-02\n15:04",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Window <= 0 {
		o.Window = d.Window
	}
	if o.BodyRatio <= 0 {
		o.BodyRatio = d.BodyRatio
	}
	if o.ShadowRatio <= 0 {
		o.ShadowRatio = d.ShadowRatio
	}
	if o.Padding <= 0 {
		o.Padding = d.Padding
	}
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = d.Width, d.Height
	}
	if o.DPI <= 0 {
		o.DPI = d.DPI
	}
	if o.UpColor == nil {
		o.UpColor = d.UpColor
	}
	if o.DownColor == nil {
		o.DownColor = d.DownColor
	}
	if o.PriceColor == nil {
		o.PriceColor = d.PriceColor
	}
	if o.SMAColor == nil {
		o.SMAColor = d.SMAColor
	}
	if o.TimeFormat == "" {
		o.TimeFormat = d.TimeFormat
	}
	return o
}
