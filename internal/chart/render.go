package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format selects the output encoding of Render.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

const (
	renderPadding = 20
	// Date labels sit below the X axis.
	renderFooter = 60
	fontSize     = 10.0
)

var (
	axisColor   = drawing.ColorBlack
	lineColor   = drawing.Color{R: 33, G: 150, B: 243, A: 255}
	markerColor = drawing.Color{R: 25, G: 118, B: 210, A: 255}
	labelColor  = drawing.Color{R: 66, G: 66, B: 66, A: 255}
)

// ErrCanvasTooLarge is returned by Render when a canvas side exceeds
// MaxCanvasSide.
var ErrCanvasTooLarge = fmt.Errorf("chart: canvas larger than %gx%g", MaxCanvasSide, MaxCanvasSide)

// Render draws g with the go-chart renderer for the given format.
func Render(w io.Writer, g *Geometry, format Format) error {
	if g == nil {
		return errors.New("chart: nothing to render")
	}
	if g.Canvas.Width > MaxCanvasSide || g.Canvas.Height > MaxCanvasSide {
		return ErrCanvasTooLarge
	}
	var newRenderer gochart.RendererProvider
	switch format {
	case FormatSVG:
		newRenderer = gochart.SVG
	case FormatPNG:
		newRenderer = gochart.PNG
	default:
		return fmt.Errorf("chart: unsupported format %q", format)
	}

	width := int(math.Ceil(g.Canvas.Width)) + 2*renderPadding
	height := int(math.Ceil(g.Canvas.Height)) + renderPadding + renderFooter
	r, err := newRenderer(width, height)
	if err != nil {
		return fmt.Errorf("chart: new renderer: %w", err)
	}

	at := func(p Point) (int, int) {
		return int(math.Round(p.X)) + renderPadding, int(math.Round(p.Y)) + renderPadding
	}
	line := func(pts ...Point) {
		for i, p := range pts {
			x, y := at(p)
			if i == 0 {
				r.MoveTo(x, y)
				continue
			}
			r.LineTo(x, y)
		}
		r.Stroke()
	}

	r.SetStrokeColor(axisColor)
	r.SetStrokeWidth(AxisStrokeWidth)
	line(g.YAxis.From, g.YAxis.To)
	line(g.XAxis.From, g.XAxis.To)

	if len(g.Polyline) > 1 {
		r.SetStrokeColor(lineColor)
		r.SetStrokeWidth(LineStrokeWidth)
		line(g.Polyline...)
	}

	r.SetStrokeColor(markerColor)
	r.SetFillColor(markerColor)
	r.SetStrokeWidth(1)
	for _, m := range g.Markers {
		x, y := at(m.Center)
		r.Circle(m.Radius, x, y)
		if format == FormatPNG {
			// The raster renderer only builds the path.
			r.FillStroke()
		}
	}

	font, err := gochart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("chart: load font: %w", err)
	}
	r.SetFont(font)
	r.SetFontColor(labelColor)
	r.SetFontSize(fontSize)
	for _, l := range append(append([]Label{}, g.WeightLabels...), g.DateLabels...) {
		x, y := at(l.Anchor)
		r.Text(l.Text, x, y)
	}

	return r.Save(w)
}
