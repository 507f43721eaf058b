package chart

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	"math"
	"testing"
	"time"

	"gonum.org/v1/plot/vg"

	"MarketBrief/internal/calculator"
	"MarketBrief/internal/model"
)

func hourlySeries(n int) *model.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		p := 100 + 10*math.Sin(float64(i)/5)
		o := p - 1
		if i%2 == 0 {
			o = p + 1
		}
		bars[i] = model.Bar{
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Open:     o,
			High:     math.Max(o, p) + 2,
			Low:      math.Min(o, p) - 2,
			Close:    p,
			Volume:   1000 + float64(i),
		}
	}
	return model.NewSeries("TEST", "1h", bars)
}

func smallRenderer() *Renderer {
	return NewRenderer(Options{Width: 6 * vg.Inch, Height: 3 * vg.Inch, DPI: 50})
}

func TestLayout_TwoBarExample(t *testing.T) {
	s := model.NewSeries("X", "1d", []model.Bar{
		{OpenTime: time.Unix(1, 0), Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{OpenTime: time.Unix(2, 0), Open: 11, High: 13, Low: 10, Close: 9, Volume: 150},
	})
	f, err := NewRenderer(Options{}).layout(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.up) != 1 || f.up[0].Close != 11 {
		t.Errorf("expected the first bar as the only up bar, got %+v", f.up)
	}
	if len(f.down) != 1 || f.down[0].Close != 9 {
		t.Errorf("expected the second bar as the only down bar, got %+v", f.down)
	}
	if f.spacing != 1 {
		t.Errorf("expected spacing 1s, got %v", f.spacing)
	}
	if math.Abs(f.body-0.6) > 1e-12 || math.Abs(f.shadow-0.2) > 1e-12 {
		t.Errorf("expected body 0.6 and shadow 0.2, got %v and %v", f.body, f.shadow)
	}
	if math.Abs(f.yMin-8.8) > 1e-9 || math.Abs(f.yMax-13.2) > 1e-9 {
		t.Errorf("expected y range [8.8, 13.2], got [%v, %v]", f.yMin, f.yMax)
	}
	if f.lastClose != 9 {
		t.Errorf("expected reference line at 9, got %v", f.lastClose)
	}
}

func TestLayout_UsesTrailingWindowOnly(t *testing.T) {
	s := hourlySeries(200)
	// A daily gap and an extreme spike before the window must not leak in.
	s.Bars[10].OpenTime = s.Bars[9].OpenTime.Add(30 * time.Minute)
	for i := 11; i < 200; i++ {
		s.Bars[i].OpenTime = s.Bars[i].OpenTime.Add(24 * time.Hour)
	}
	s.Bars[20].High = 10000

	f, err := NewRenderer(Options{}).layout(s)
	if err != nil {
		t.Fatal(err)
	}
	if f.window.Len() != 50 {
		t.Fatalf("expected 50 bars, got %d", f.window.Len())
	}
	if f.window.Bars[0].OpenTime != s.Bars[150].OpenTime {
		t.Error("window should start at bar 150")
	}
	if f.spacing != time.Hour.Seconds() {
		t.Errorf("expected hourly spacing, got %vs", f.spacing)
	}
	if f.yMax > 1000 {
		t.Errorf("spike outside the window leaked into the axis: %v", f.yMax)
	}
	high, low, _ := calculator.PriceRange(s.Bars[150:])
	if want := high + 0.05*(high-low); math.Abs(f.yMax-want) > 1e-9 {
		t.Errorf("expected yMax %v, got %v", want, f.yMax)
	}
}

func TestLayout_EmptyPartitionAndSingleBar(t *testing.T) {
	s := model.NewSeries("X", "1d", []model.Bar{
		{OpenTime: time.Unix(0, 0), Open: 5, High: 6, Low: 4, Close: 5, Volume: 0},
	})
	f, err := NewRenderer(Options{}).layout(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.up) != 0 || len(f.down) != 1 {
		t.Errorf("flat bar belongs to the down set: up=%d down=%d", len(f.up), len(f.down))
	}
	if f.spacing != defaultSpacing.Seconds() {
		t.Errorf("expected default spacing, got %v", f.spacing)
	}
	if f.volMax != 1 {
		t.Errorf("all-zero volume should still give a usable axis, got %v", f.volMax)
	}
}

func TestRender_EmptySeries(t *testing.T) {
	_, err := smallRenderer().Render(model.NewSeries("X", "1d", nil))
	if !errors.Is(err, model.ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
}

func TestRender_StableDimensions(t *testing.T) {
	s := hourlySeries(80)
	if err := calculator.Apply(s, calculator.DefaultParams()); err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(DefaultOptions())

	first, err := r.Render(s)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Render(s)
	if err != nil {
		t.Fatal(err)
	}
	a, format, err := image.DecodeConfig(bytes.NewReader(first))
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg, got %s", format)
	}
	b, _, err := image.DecodeConfig(bytes.NewReader(second))
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if a.Width != b.Width || a.Height != b.Height {
		t.Errorf("dimensions differ: %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	if a.Width != 3000 || a.Height != 1500 {
		t.Errorf("expected 3000x1500, got %dx%d", a.Width, a.Height)
	}
}

func TestRender_FewBarsAndUndefinedAverage(t *testing.T) {
	s := hourlySeries(10)
	if err := calculator.Apply(s, calculator.Params{SMAWindow: 20}); err != nil {
		t.Fatal(err)
	}
	out, err := smallRenderer().Render(s)
	if err != nil {
		t.Fatalf("render 10 bars with an all-NaN average: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected image bytes")
	}
}

func TestRender_OnlyUpBars(t *testing.T) {
	s := hourlySeries(12)
	for i := range s.Bars {
		s.Bars[i].Open = s.Bars[i].Low
		s.Bars[i].Close = s.Bars[i].High
	}
	if _, err := smallRenderer().Render(s); err != nil {
		t.Fatalf("render without down bars: %v", err)
	}
}

func TestDefinedSegments(t *testing.T) {
	s := hourlySeries(6)
	nan := math.NaN()
	segs := definedSegments(s.Bars, []float64{nan, 1, 2, nan, 3, 4})
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if len(segs[0]) != 2 || len(segs[1]) != 2 {
		t.Errorf("unexpected segment sizes %d and %d", len(segs[0]), len(segs[1]))
	}
	if segs := definedSegments(s.Bars, nil); len(segs) != 0 {
		t.Errorf("expected no segments for a missing column, got %d", len(segs))
	}
}
