// Package raster implements the canvas drawing surface on top of gg.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"netcanvas/internal/canvas"
)

var textFont *truetype.Font

func init() {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("raster: parse built-in font: %v", err))
	}
	textFont = f
}

// Option configures a Surface
type Option func(*Surface)

// WithIconFont sets the font used for node glyphs
func WithIconFont(f *truetype.Font) Option {
	return func(s *Surface) {
		s.icons = f
	}
}

// LoadFont reads and parses a TrueType font file
func LoadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return f, nil
}

type faceKey struct {
	font *truetype.Font
	size float64
}

// Surface is an in-memory RGBA drawing surface
type Surface struct {
	dc    *gg.Context
	icons *truetype.Font
	faces map[faceKey]font.Face
}

var _ canvas.Surface = (*Surface)(nil)

// New creates a surface of width x height pixels
func New(width, height int, opts ...Option) *Surface {
	s := &Surface{
		dc:    gg.NewContext(width, height),
		faces: make(map[faceKey]font.Face),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Image returns the backing image
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// EncodePNG writes the current frame as PNG
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// Clear fills the whole frame with c
func (s *Surface) Clear(c color.Color) {
	s.dc.SetColor(c)
	s.dc.Clear()
}

// SetScale resets the transform to a uniform zoom of z
func (s *Surface) SetScale(z float64) {
	s.dc.Identity()
	s.dc.Scale(z, z)
}

// DrawImage draws img stretched to the w x h box at (x, y)
func (s *Surface) DrawImage(img image.Image, x, y, w, h float64) {
	iw, ih := int(w+0.5), int(h+0.5)
	if iw < 1 || ih < 1 {
		return
	}

	b := img.Bounds()
	if b.Dx() != iw || b.Dy() != ih {
		dst := image.NewRGBA(image.Rect(0, 0, iw, ih))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}
	s.dc.DrawImage(img, int(x), int(y))
}

// DrawLine strokes a straight line of the given width
func (s *Surface) DrawLine(x1, y1, x2, y2, width float64, c color.Color) {
	s.dc.SetColor(c)
	s.dc.SetLineWidth(width)
	s.dc.DrawLine(x1, y1, x2, y2)
	s.dc.Stroke()
}

// FillRect fills an axis-aligned rectangle
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	s.dc.SetColor(c)
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.Fill()
}

// StrokeRect outlines an axis-aligned rectangle
func (s *Surface) StrokeRect(x, y, w, h, width float64, c color.Color) {
	s.dc.SetColor(c)
	s.dc.SetLineWidth(width)
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.Stroke()
}

// FillEllipse fills the ellipse centered on (cx, cy)
func (s *Surface) FillEllipse(cx, cy, rx, ry float64, c color.Color) {
	s.dc.SetColor(c)
	s.dc.DrawEllipse(cx, cy, rx, ry)
	s.dc.Fill()
}

// DrawText draws text with its top edge at y
func (s *Surface) DrawText(text string, x, y, size float64, c color.Color, align canvas.Align) {
	if text == "" {
		return
	}
	s.dc.SetFontFace(s.face(textFont, size))
	s.dc.SetColor(c)
	s.dc.DrawStringAnchored(text, x, y, anchor(align), 1)
}

// DrawGlyph draws r from the icon font centered on (x, y). Without an icon
// font, or when the font has no such glyph, a dot is drawn instead.
func (s *Surface) DrawGlyph(r rune, x, y, size float64, c color.Color) {
	s.dc.SetColor(c)
	if s.icons == nil || s.icons.Index(r) == 0 {
		s.dc.DrawCircle(x, y, size*0.3)
		s.dc.Fill()
		return
	}
	s.dc.SetFontFace(s.face(s.icons, size))
	s.dc.DrawStringAnchored(string(r), x, y, 0.5, 0.5)
}

func (s *Surface) face(f *truetype.Font, size float64) font.Face {
	key := faceKey{font: f, size: size}
	if face, ok := s.faces[key]; ok {
		return face
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	s.faces[key] = face
	return face
}

func anchor(a canvas.Align) float64 {
	switch a {
	case canvas.AlignCenter:
		return 0.5
	case canvas.AlignRight:
		return 1
	}
	return 0
}
