package canvas

import (
	"image"
	"image/color"
)

// Align is the horizontal anchor of a text run
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Surface is the drawing target of a repaint. Coordinates are in scene
// units after SetScale has been applied.
type Surface interface {
	// Clear fills the whole surface, ignoring the scale
	Clear(c color.Color)
	SetScale(z float64)
	DrawImage(img image.Image, x, y, w, h float64)
	DrawLine(x1, y1, x2, y2, width float64, c color.Color)
	FillRect(x, y, w, h float64, c color.Color)
	StrokeRect(x, y, w, h, width float64, c color.Color)
	FillEllipse(cx, cy, rx, ry float64, c color.Color)
	// DrawText draws s with its top edge at y, anchored at x by align
	DrawText(s string, x, y, size float64, c color.Color, align Align)
	// DrawGlyph draws a single icon glyph centered on (x, y)
	DrawGlyph(r rune, x, y, size float64, c color.Color)
}
