// Package render draws a V-n diagram with gonum/plot.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/eytandecker/vn-diagram/internal/envelope"
)

// ErrUnsupportedFormat is returned for output formats other than png, svg and pdf.
var ErrUnsupportedFormat = errors.New("render: unsupported format")

// Format is an image encoding supported by the renderer.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// MIMEType returns the media type for the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/png"
	}
}

// ParseFormat accepts a format name such as "png" or ".svg".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Options controls the figure size in inches.
type Options struct {
	Width  float64
	Height float64
}

// DefaultOptions is a 10x6 inch figure.
func DefaultOptions() Options {
	return Options{Width: 10, Height: 6}
}

func (o Options) size() (w, h vg.Length) {
	def := DefaultOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	return vg.Length(o.Width) * vg.Inch, vg.Length(o.Height) * vg.Inch
}

// Encode renders d and returns the encoded image bytes.
func Encode(d *envelope.Diagram, f Format, opts Options) ([]byte, error) {
	if _, err := ParseFormat(string(f)); err != nil {
		return nil, err
	}
	p, err := Plot(d)
	if err != nil {
		return nil, err
	}
	w, h := opts.size()
	wt, err := p.WriterTo(w, h, string(f))
	if err != nil {
		return nil, fmt.Errorf("render: %s writer: %w", f, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render: encode %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// SaveFile renders d to path; the extension selects the format.
func SaveFile(d *envelope.Diagram, path string, opts Options) error {
	if _, err := FormatFromPath(path); err != nil {
		return err
	}
	p, err := Plot(d)
	if err != nil {
		return err
	}
	w, h := opts.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	return nil
}

var (
	blue   = color.RGBA{B: 255, A: 255}
	green  = color.RGBA{G: 128, A: 255}
	red    = color.RGBA{R: 255, A: 255}
	purple = color.RGBA{R: 128, B: 128, A: 255}
)

var (
	solid   []vg.Length
	dashed  = []vg.Length{vg.Points(6), vg.Points(3)}
	dotted  = []vg.Length{vg.Points(1), vg.Points(3)}
	dashDot = []vg.Length{vg.Points(6), vg.Points(3), vg.Points(1), vg.Points(3)}
)

type style struct {
	color  color.Color
	dashes []vg.Length
}

// layer is one legend-able line group of the figure.
type layer struct {
	xs, ys []float64
	style  style
	legend string
}

// annotation is a text label in data coordinates.
type annotation struct {
	x, y  float64
	text  string
	color color.Color
}

// Plot builds the V-n figure for d.
func Plot(d *envelope.Diagram) (*plot.Plot, error) {
	a := d.Aircraft
	p := plot.New()
	p.Title.Text = "V-n Diagram (Maneuver and Gust Envelope)"
	p.X.Label.Text = "True Airspeed (kts)"
	p.Y.Label.Text = "Load Factor (n)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for _, l := range layers(d) {
		if err := addSeries(p, l.xs, l.ys, l.style, l.legend); err != nil {
			return nil, err
		}
	}
	if err := addAnnotations(p, annotations(d)); err != nil {
		return nil, err
	}

	p.X.Min, p.X.Max = 0, a.DiveSpeed+10
	p.Y.Min, p.Y.Max = yLimits(d)
	return p, nil
}

func yLimits(d *envelope.Diagram) (lo, hi float64) {
	return d.NMin - 1, d.NMax + 1
}

// layers lists the figure's lines in drawing order.
func layers(d *envelope.Diagram) []layer {
	a := d.Aircraft
	yMin, yMax := yLimits(d)
	vline := func(x float64, s style, legend string) layer {
		return layer{[]float64{x, x}, []float64{yMin, yMax}, s, legend}
	}
	segment := func(seg envelope.Segment, s style, legend string) layer {
		return layer{[]float64{seg.From.V, seg.To.V}, []float64{seg.From.N, seg.To.N}, s, legend}
	}
	return []layer{
		{d.V, d.ManeuverPos, style{blue, solid}, "Maneuver Envelope"},
		{d.V, d.ManeuverNeg, style{blue, solid}, ""},
		vline(a.StallSpeed, style{green, dotted}, "Stall TAS at 1g"),
		vline(a.CruiseSpeed, style{green, dashDot}, "Cruise TAS"),
		vline(a.DiveSpeed, style{green, solid}, "Maximum TAS"),
		{d.V, d.GustCruisePos, style{red, dashed}, "Gust Envelope (Cruise)"},
		{d.V, d.GustCruiseNeg, style{red, dashed}, ""},
		{d.V, d.GustDivePos, style{purple, dashed}, "Gust Envelope (Dive)"},
		{d.V, d.GustDiveNeg, style{purple, dashed}, ""},
		segment(d.NegativeGustLine, style{red, dashed}, "Negative Gust Line"),
		segment(d.PositiveGustLine, style{red, dashed}, "Positive Gust Line"),
	}
}

// annotations places the speed and gust endpoint labels.
func annotations(d *envelope.Diagram) []annotation {
	a := d.Aircraft
	return []annotation{
		{a.CruiseSpeed + 1, d.NMax - 6.5, fmt.Sprintf("Cruise = %.2f kts", a.CruiseSpeed), green},
		{a.DiveSpeed - 33, d.NMax - 3, fmt.Sprintf("Max Dive = %g kts", a.DiveSpeed), green},
		{a.StallSpeed + 1, d.NMax - 6.5, fmt.Sprintf("Stall = %g knots", a.StallSpeed), green},
		{a.CruiseSpeed - 10, d.PositiveGustLine.From.N - 0.5, "+n1", red},
		{a.CruiseSpeed - 10, d.NegativeGustLine.From.N + 0.5, "-n1", red},
		{a.DiveSpeed - 15, d.PositiveGustLine.To.N - 0.5, "+n2", purple},
		{a.DiveSpeed - 15, d.NegativeGustLine.To.N + 0.5, "-n2", purple},
	}
}

// addSeries draws every finite run of ys as its own line.
// Only the first run gets a legend entry.
func addSeries(p *plot.Plot, xs, ys []float64, s style, legend string) error {
	for i, run := range finiteRuns(xs, ys) {
		l, err := plotter.NewLine(run)
		if err != nil {
			return fmt.Errorf("render: line %q: %w", legend, err)
		}
		l.LineStyle.Color = s.color
		l.LineStyle.Dashes = s.dashes
		p.Add(l)
		if i == 0 && legend != "" {
			p.Legend.Add(legend, l)
		}
	}
	return nil
}

func addAnnotations(p *plot.Plot, notes []annotation) error {
	xys := make(plotter.XYs, len(notes))
	texts := make([]string, len(notes))
	for i, n := range notes {
		xys[i] = plotter.XY{X: n.x, Y: n.y}
		texts[i] = n.text
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return fmt.Errorf("render: annotations: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = notes[i].color
	}
	p.Add(labels)
	return nil
}

// finiteRuns splits (xs, ys) into maximal runs of finite points.
// plotter rejects NaN, so gaps beyond cutoff speeds become breaks.
func finiteRuns(xs, ys []float64) []plotter.XYs {
	var (
		runs []plotter.XYs
		cur  plotter.XYs
	)
	for i := range xs {
		if i >= len(ys) || !finite(xs[i]) || !finite(ys[i]) {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
