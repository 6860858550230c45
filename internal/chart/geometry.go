// Package chart projects a weight time series onto a fixed drawing surface
// and renders the result.
package chart

import (
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"
)

const (
	// MinDomainSpan is the shortest X domain; shorter series are padded on
	// the right so a handful of points does not fill the whole width.
	MinDomainSpan = 7 * 24 * time.Hour

	// EmptyRangeMax is the Y upper bound when no sample exceeds zero.
	EmptyRangeMax = 100.0

	// MarkerRadius is the radius of the circle drawn at each sample.
	MarkerRadius = 6.0

	// MidLabelMinWidth is the canvas width above which a middle date label
	// is placed.
	MidLabelMinWidth = 600.0

	// MaxCanvasSide bounds either canvas dimension accepted by Render.
	MaxCanvasSide = 4096.0

	// Stroke widths used by Render.
	AxisStrokeWidth = 2.0
	LineStrokeWidth = 4.0

	dateLabelLayout = "1/2"
	dateLabelInset  = 30.0
	dateLabelDrop   = 40.0
	weightLabelX    = 10.0
	topLabelY       = 40.0
	bottomLabelLift = 10.0
)

// Sample is one measurement to plot.
type Sample struct {
	Timestamp int64   // epoch milliseconds
	Weight    float64
}

// Canvas is the drawing surface in pixels.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp limits both dimensions to MaxCanvasSide.
func (c Canvas) Clamp() Canvas {
	return Canvas{Width: min(c.Width, MaxCanvasSide), Height: min(c.Height, MaxCanvasSide)}
}

// Options tune a projection.
type Options struct {
	// MinimumWeight is the Y baseline.
	MinimumWeight float64
	// Location formats date labels; time.Local when nil.
	Location *time.Location
}

// Point is a screen-space coordinate with the origin at the top left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a straight line between two points.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Label is text anchored at a point.
type Label struct {
	Anchor Point  `json:"anchor"`
	Text   string `json:"text"`
}

// Marker is a filled circle.
type Marker struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Geometry is everything needed to draw the chart.
type Geometry struct {
	Canvas       Canvas   `json:"canvas"`
	DomainStart  int64    `json:"domainStart"`
	DomainEnd    int64    `json:"domainEnd"`
	MinWeight    float64  `json:"minWeight"`
	MaxWeight    float64  `json:"maxWeight"`
	YAxis        Segment  `json:"yAxis"`
	XAxis        Segment  `json:"xAxis"`
	DateLabels   []Label  `json:"dateLabels"`
	WeightLabels []Label  `json:"weightLabels"`
	Polyline     []Point  `json:"polyline"`
	Markers      []Marker `json:"markers"`
}

// Project maps samples onto canvas. It returns false when there is nothing
// to draw. Samples may be in any order.
func Project(samples []Sample, canvas Canvas, opts Options) (*Geometry, bool) {
	if len(samples) == 0 {
		return nil, false
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, func(a, b Sample) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})

	minWeight := opts.MinimumWeight
	maxWeight := EmptyRangeMax
	if observed := lo.Max(lo.Map(sorted, func(s Sample, _ int) float64 { return s.Weight })); observed > 0 {
		maxWeight = observed + 1
	}
	yRange := maxWeight - minWeight
	if yRange <= 0 {
		yRange = 1
	}

	start := sorted[0].Timestamp
	end := sorted[len(sorted)-1].Timestamp
	if span := MinDomainSpan.Milliseconds(); end-start < span {
		end = start + span
	}
	xRange := float64(end - start)
	if xRange < 1 {
		xRange = 1
	}

	w, h := canvas.Width, canvas.Height
	project := func(s Sample) Point {
		return Point{
			X: float64(s.Timestamp-start) / xRange * w,
			Y: h - (s.Weight-minWeight)/yRange*h,
		}
	}

	g := &Geometry{
		Canvas:      canvas,
		DomainStart: start,
		DomainEnd:   end,
		MinWeight:   minWeight,
		MaxWeight:   maxWeight,
		YAxis:       Segment{From: Point{0, 0}, To: Point{0, h}},
		XAxis:       Segment{From: Point{0, h}, To: Point{w, h}},
	}

	dateLabel := func(ms int64, x float64) Label {
		return Label{
			Anchor: Point{X: x, Y: h + dateLabelDrop},
			Text:   time.UnixMilli(ms).In(loc).Format(dateLabelLayout),
		}
	}
	g.DateLabels = append(g.DateLabels, dateLabel(start, dateLabelInset))
	if w > MidLabelMinWidth {
		g.DateLabels = append(g.DateLabels, dateLabel(start+(end-start)/2, w/2))
	}
	g.DateLabels = append(g.DateLabels, dateLabel(end, w-dateLabelInset))

	g.WeightLabels = []Label{
		{Anchor: Point{X: weightLabelX, Y: h - bottomLabelLift}, Text: fmt.Sprintf("%d", int64(minWeight))},
		{Anchor: Point{X: weightLabelX, Y: topLabelY}, Text: fmt.Sprintf("%d", int64(maxWeight))},
	}

	g.Polyline = lo.Map(sorted, func(s Sample, _ int) Point { return project(s) })
	g.Markers = lo.Map(g.Polyline, func(p Point, _ int) Marker {
		return Marker{Center: p, Radius: MarkerRadius}
	})
	return g, true
}
