package notifier

import (
	"math"
	"strings"
	"testing"
	"time"
)

func newFormatter(t *testing.T) *Formatter {
	t.Helper()
	f, err := NewFormatter(time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestRender_Chart(t *testing.T) {
	f := newFormatter(t)
	out, err := f.Render("chart", map[string]any{
		"title":   "Gold",
		"date":    time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		"value":   2134.5,
		"delta":   -2.0,
		"percent": -0.09,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<b>Gold</b>", "05/03/2024", "<b>2,134.50</b>", "-2.00", "-0.09%"} {
		if !strings.Contains(out, want) {
			t.Errorf("caption %q missing %q", out, want)
		}
	}
}

func TestRender_PositiveChangeKeepsSign(t *testing.T) {
	f := newFormatter(t)
	out, err := f.Render("chart", map[string]any{
		"title": "Gold", "date": time.Unix(0, 0), "value": 11.0,
		"delta": 2.0, "percent": 22.2, "direction": "up",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "🟢 (+2.00 | +22.20%)") {
		t.Errorf("unexpected change line %q", out)
	}
	if strings.Contains(out, "&#43;") {
		t.Errorf("sign was escaped: %q", out)
	}
}

func TestRender_UndefinedPercentIsOmitted(t *testing.T) {
	f := newFormatter(t)
	out, err := f.Render("chart", map[string]any{
		"title": "X", "date": time.Unix(0, 0), "value": 1.0, "delta": 1.0, "percent": math.NaN(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "NaN") || strings.Contains(out, "%") {
		t.Errorf("undefined percent should be left out: %q", out)
	}
}

func TestRender_EscapesText(t *testing.T) {
	f := newFormatter(t)
	out, err := f.Render("top", map[string]any{
		"title": "Top <gainers>",
		"time":  time.Unix(0, 0),
		"rows":  []struct{ Symbol, Value string }{{"BTC", "+1.00%"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "<gainers>") {
		t.Errorf("title was not escaped: %q", out)
	}
	if !strings.Contains(out, "<pre>BTC") {
		t.Errorf("expected table rows in a pre block: %q", out)
	}
}

func TestRender_Unknown(t *testing.T) {
	f := newFormatter(t)
	if _, err := f.Render("nope", nil); err == nil {
		t.Fatal("expected an error for an unknown template")
	}
	if f.Has("nope") || !f.Has("fgi") {
		t.Error("Has does not match the embedded set")
	}
}

func TestCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{999, "999.00"},
		{1234, "1.23K"},
		{1234567, "1.23M"},
		{2.5e9, "2.50B"},
	}
	for _, tt := range tests {
		if got := Compact(tt.in); got != tt.want {
			t.Errorf("Compact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
