// Package snapshot renders the bitmaps behind gauge, bar and sparkline items.
//
// Each item kind is drawn with go-chart into a PNG sized to the item box and
// decoded back into an image the canvas can blit.
package snapshot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"netcanvas/internal/domain"
)

const (
	// padding is the blank border inside every snapshot
	padding = 2
	// MinSize is the smallest width or height drawn. go-chart does not
	// terminate on a pie with no room left inside the padding.
	MinSize = 2*padding + 8
)

// Renderer draws snapshot bitmaps
type Renderer struct {
	track drawing.Color
	text  drawing.Color
}

// New creates a Renderer with a light gray track and dark labels
func New() *Renderer {
	return &Renderer{
		track: drawing.Color{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff},
		text:  drawing.Color{R: 0x21, G: 0x21, B: 0x21, A: 0xff},
	}
}

// Render draws the requested snapshot filled with fill
func (r *Renderer) Render(req domain.SnapshotRequest, fill color.RGBA) (image.Image, error) {
	if req.Width < MinSize || req.Height < MinSize {
		return nil, fmt.Errorf("snapshot size %dx%d is below the %dpx minimum", req.Width, req.Height, MinSize)
	}

	var buf bytes.Buffer
	var err error
	switch req.Type {
	case domain.ItemTypeGauge:
		err = r.gauge(req, toDrawing(fill)).Render(chart.PNG, &buf)
	case domain.ItemTypeBar:
		err = r.bar(req, toDrawing(fill)).Render(chart.PNG, &buf)
	case domain.ItemTypeSparkline:
		err = r.sparkline(req, toDrawing(fill)).Render(chart.PNG, &buf)
	default:
		return nil, fmt.Errorf("no snapshot for item type %q", req.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", req.Type, err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", req.Type, err)
	}
	return img, nil
}

func (r *Renderer) background() chart.Style {
	return chart.Style{
		Padding:   chart.Box{Top: padding, Left: padding, Right: padding, Bottom: padding},
		FillColor: drawing.ColorTransparent,
	}
}

// gauge is a two-slice pie: the value in the fill color, the rest as track
func (r *Renderer) gauge(req domain.SnapshotRequest, fill drawing.Color) chart.PieChart {
	v := percent(req.Value)
	values := []chart.Value{}
	if v > 0 {
		values = append(values, chart.Value{Value: v, Style: chart.Style{FillColor: fill, StrokeColor: fill}})
	}
	if v < 100 {
		values = append(values, chart.Value{Value: 100 - v, Style: chart.Style{FillColor: r.track, StrokeColor: r.track}})
	}

	return chart.PieChart{
		Title:      req.Title,
		TitleStyle: chart.Style{FontColor: r.text, FontSize: titleSize(req.Height)},
		Width:      req.Width,
		Height:     req.Height,
		Background: r.background(),
		Canvas:     chart.Style{FillColor: drawing.ColorTransparent},
		Values:     values,
	}
}

// bar is a single bar on a fixed 0-100 scale
func (r *Renderer) bar(req domain.SnapshotRequest, fill drawing.Color) chart.BarChart {
	return chart.BarChart{
		Title:      req.Title,
		TitleStyle: chart.Style{FontColor: r.text, FontSize: titleSize(req.Height)},
		Width:      req.Width,
		Height:     req.Height,
		Background: r.background(),
		Canvas:     chart.Style{FillColor: r.track},
		BarWidth:   max(req.Width-8, 1),
		XAxis:      chart.Hidden(),
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: []chart.Value{
			{Value: percent(req.Value), Style: chart.Style{FillColor: fill, StrokeColor: fill}},
		},
	}
}

// sparkline is a filled line through the values with hidden axes
func (r *Renderer) sparkline(req domain.SnapshotRequest, fill drawing.Color) chart.Chart {
	ys := sparkValues(req.Values)
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}

	lo, hi := valueRange(ys)
	return chart.Chart{
		Title:      req.Title,
		TitleStyle: chart.Style{FontColor: r.text, FontSize: titleSize(req.Height)},
		Width:      req.Width,
		Height:     req.Height,
		Background: r.background(),
		Canvas:     chart.Style{FillColor: drawing.ColorTransparent},
		XAxis:      chart.XAxis{Style: chart.Hidden()},
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: fill,
					StrokeWidth: 1.5,
					FillColor:   fill.WithAlpha(0x50),
				},
			},
		},
	}
}

// sparkValues pads short series so the chart always has an x extent
func sparkValues(values []float64) []float64 {
	switch len(values) {
	case 0:
		return []float64{0, 0}
	case 1:
		return []float64{values[0], values[0]}
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out
}

// valueRange is the min and max of ys, widened when flat
func valueRange(ys []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	if hi-lo < 1e-9 {
		return lo - 1, hi + 1
	}
	return lo, hi
}

func percent(v float64) float64 {
	return domain.Clamp(v, 0, 100)
}

func titleSize(h int) float64 {
	return math.Max(6, math.Min(10, float64(h)/8))
}

func toDrawing(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
