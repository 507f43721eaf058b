package chart

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"MarketBrief/internal/calculator"
	"MarketBrief/internal/model"
)

// defaultSpacing is used when the window holds a single bar.
const defaultSpacing = 24 * time.Hour

// Renderer draws the two-panel candle and volume chart.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer; zero option fields fall back to defaults.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts.withDefaults()}
}

// frame is everything derived from the trailing window before drawing.
type frame struct {
	window     *model.Series
	spacing    float64 // seconds
	body       float64
	shadow     float64
	up         []model.Bar
	down       []model.Bar
	xMin, xMax float64
	yMin, yMax float64
	volMax     float64
	lastClose  float64
}

func (r *Renderer) layout(s *model.Series) (*frame, error) {
	if s == nil || s.Len() == 0 {
		return nil, fmt.Errorf("%w: empty series", model.ErrRender)
	}
	w := s.Tail(r.opts.Window)
	f := &frame{window: w, spacing: inferSpacing(w.Bars)}
	f.body = f.spacing * r.opts.BodyRatio
	f.shadow = f.spacing * r.opts.ShadowRatio
	f.up, f.down = partition(w.Bars)

	var err error
	f.yMin, f.yMax, err = calculator.PaddedRange(w.Bars, r.opts.Padding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrRender, err)
	}
	f.xMin = unix(w.Bars[0].OpenTime) - f.spacing
	f.xMax = unix(w.Last().OpenTime) + f.spacing
	f.lastClose = w.Last().Close

	for _, b := range w.Bars {
		f.volMax = math.Max(f.volMax, b.Volume)
	}
	for _, v := range w.VolumeSMA {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			f.volMax = math.Max(f.volMax, v)
		}
	}
	if f.volMax == 0 {
		f.volMax = 1
	}
	return f, nil
}

// Render draws the last Window bars of s and returns JPEG bytes.
func (r *Renderer) Render(s *model.Series) (out []byte, err error) {
	f, err := r.layout(s)
	if err != nil {
		return nil, err
	}

	// gonum/plot reports some drawing failures by panicking.
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("%w: %v", model.ErrRender, rec)
		}
	}()

	price, err := r.pricePanel(f)
	if err != nil {
		return nil, err
	}
	volume, err := r.volumePanel(f)
	if err != nil {
		return nil, err
	}

	img := vgimg.NewWith(vgimg.UseWH(r.opts.Width, r.opts.Height), vgimg.UseDPI(r.opts.DPI))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadTop:    vg.Points(20),
		PadBottom: vg.Points(20),
		PadLeft:   vg.Points(20),
		PadRight:  vg.Points(20),
		PadY:      vg.Points(10),
	}
	canvases := plot.Align([][]*plot.Plot{{price}, {volume}}, tiles, dc)
	price.Draw(canvases[0][0])
	volume.Draw(canvases[1][0])

	var buf bytes.Buffer
	jpg := vgimg.JpegCanvas{Canvas: img}
	if _, err := jpg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: encode jpeg: %v", model.ErrRender, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) pricePanel(f *frame) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = f.window.Symbol
	p.Title.TextStyle.Font.Size = vg.Points(20)
	p.Add(plotter.NewGrid())

	if len(f.up) > 0 {
		p.Add(&candles{bars: f.up, body: f.body, shadow: f.shadow, color: r.opts.UpColor})
	}
	if len(f.down) > 0 {
		p.Add(&candles{bars: f.down, body: f.body, shadow: f.shadow, color: r.opts.DownColor})
	}

	last, err := plotter.NewLine(plotter.XYs{{X: f.xMin, Y: f.lastClose}, {X: f.xMax, Y: f.lastClose}})
	if err != nil {
		return nil, fmt.Errorf("%w: price line: %v", model.ErrRender, err)
	}
	last.LineStyle.Color = r.opts.PriceColor
	last.LineStyle.Width = vg.Points(2)
	p.Add(last)

	p.X.Min, p.X.Max = f.xMin, f.xMax
	p.Y.Min, p.Y.Max = f.yMin, f.yMax
	p.X.Tick.Marker = unlabeled{plot.TimeTicks{Format: r.opts.TimeFormat}}
	p.Y.Tick.Label.Font.Size = vg.Points(15)
	return p, nil
}

func (r *Renderer) volumePanel(f *frame) (*plot.Plot, error) {
	p := plot.New()
	p.Add(plotter.NewGrid())

	if len(f.up) > 0 {
		p.Add(&volumeBars{bars: f.up, width: f.body, color: r.opts.UpColor})
	}
	if len(f.down) > 0 {
		p.Add(&volumeBars{bars: f.down, width: f.body, color: r.opts.DownColor})
	}
	for _, seg := range definedSegments(f.window.Bars, f.window.VolumeSMA) {
		line, err := plotter.NewLine(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: volume sma: %v", model.ErrRender, err)
		}
		line.LineStyle.Color = r.opts.SMAColor
		line.LineStyle.Width = vg.Points(2)
		p.Add(line)
	}

	p.X.Min, p.X.Max = f.xMin, f.xMax
	p.Y.Min, p.Y.Max = 0, f.volMax*1.05
	p.X.Tick.Marker = plot.TimeTicks{Format: r.opts.TimeFormat}
	p.X.Tick.Label.Font.Size = vg.Points(15)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Tick.Label.Font.Size = vg.Points(15)
	return p, nil
}

// unlabeled keeps tick positions but drops labels, for the upper panel of
// a shared x axis.
type unlabeled struct {
	plot.Ticker
}

func (u unlabeled) Ticks(min, max float64) []plot.Tick {
	ticks := u.Ticker.Ticks(min, max)
	for i := range ticks {
		ticks[i].Label = ""
	}
	return ticks
}

// inferSpacing returns the widest gap between consecutive bars, in seconds.
func inferSpacing(bars []model.Bar) float64 {
	var widest time.Duration
	for i := 1; i < len(bars); i++ {
		if d := bars[i].OpenTime.Sub(bars[i-1].OpenTime); d > widest {
			widest = d
		}
	}
	if widest <= 0 {
		widest = defaultSpacing
	}
	return widest.Seconds()
}

func partition(bars []model.Bar) (up, down []model.Bar) {
	for _, b := range bars {
		if b.Up() {
			up = append(up, b)
		} else {
			down = append(down, b)
		}
	}
	return up, down
}

// definedSegments splits values into runs of finite points so undefined
// stretches leave a gap instead of a line to zero.
func definedSegments(bars []model.Bar, values []float64) []plotter.XYs {
	var segs []plotter.XYs
	var cur plotter.XYs
	for i, v := range values {
		if i >= len(bars) {
			break
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(cur) > 0 {
				segs = append(segs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: unix(bars[i].OpenTime), Y: v})
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

func unix(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
