package notifier

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Formatter renders job messages from the embedded HTML templates.
// Output uses Telegram's HTML parse mode.
type Formatter struct {
	tmpl *template.Template
	loc  *time.Location
}

// NewFormatter parses the templates; times are shown in loc.
func NewFormatter(loc *time.Location) (*Formatter, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := &Formatter{loc: loc}
	tmpl, err := template.New("").Funcs(f.funcs()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	f.tmpl = tmpl
	return f, nil
}

// Render executes the named template ("chart", "fgi", ...) with data.
func (f *Formatter) Render(name string, data any) (string, error) {
	t := f.tmpl.Lookup(name + ".tmpl")
	if t == nil {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Has reports whether a template exists.
func (f *Formatter) Has(name string) bool {
	return f.tmpl.Lookup(name+".tmpl") != nil
}

func (f *Formatter) funcs() template.FuncMap {
	p := message.NewPrinter(language.English)
	return template.FuncMap{
		// Number output is digits, signs, separators and '%' only; it is
		// marked safe so '+' is not escaped to &#43;.
		"num":     func(v float64) template.HTML { return template.HTML(p.Sprintf("%.2f", v)) },
		"int":     func(v float64) template.HTML { return template.HTML(p.Sprintf("%.0f", v)) },
		"signed":  func(v float64) template.HTML { return template.HTML(p.Sprintf("%+.2f", v)) },
		"pct":     func(v float64) template.HTML { return template.HTML(fmt.Sprintf("%+.2f%%", v)) },
		"marker":  marker,
		"finite":  func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) },
		"compact": Compact,
		"join":    strings.Join,
		"date": func(t time.Time) string {
			return t.In(f.loc).Format("02/01/2006")
		},
		"datetime": func(t time.Time) string {
			return t.In(f.loc).Format("02/01/2006 15:04")
		},
	}
}

// marker is the up/down dot shown before a change.
func marker(direction any) string {
	switch direction {
	case "up":
		return "🟢 "
	case "down":
		return "🔴 "
	}
	return ""
}

var units = []string{"", "K", "M", "B", "T", "Q"}

// Compact shortens large amounts: 1234567 -> 1.23M.
func Compact(v float64) string {
	i := 0
	for math.Abs(v) >= 1000 && i < len(units)-1 {
		v /= 1000
		i++
	}
	return fmt.Sprintf("%.2f%s", v, units[i])
}
