// Package palette resolves logical icon names to glyph codepoints and
// logical status keys to display colors.
//
// Tables are supplied as configuration. Any name missing from a table
// resolves to FallbackGlyph or Gray, so a map with unknown icons or states
// still renders.
package palette

import (
	"fmt"
	"image/color"
	"log"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// FallbackGlyph is the reserved codepoint drawn for unknown icon names
// (Material Design Icons "help-circle-outline").
const FallbackGlyph rune = 0xF0625

// Gray is the color used for unknown status keys
var Gray = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

// GlyphEntry maps an icon name to a codepoint
type GlyphEntry struct {
	Name      string `json:"name" yaml:"name"`
	Codepoint rune   `json:"codepoint" yaml:"codepoint"`
}

// ColorEntry maps a status key to a color in #rrggbb form
type ColorEntry struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// Resolver holds the glyph and color tables
type Resolver struct {
	glyphs map[string]rune
	colors map[string]color.RGBA
}

// New creates a resolver with empty tables
func New() *Resolver {
	return &Resolver{
		glyphs: make(map[string]rune),
		colors: make(map[string]color.RGBA),
	}
}

// NewDefault creates a resolver loaded with DefaultGlyphs and DefaultColors
func NewDefault() *Resolver {
	r := New()
	r.SetGlyphs(DefaultGlyphs())
	r.SetColors(DefaultColors())
	return r
}

// SetGlyphs replaces the glyph table
func (r *Resolver) SetGlyphs(entries []GlyphEntry) {
	glyphs := make(map[string]rune, len(entries))
	for _, e := range entries {
		if e.Name == "" || e.Codepoint <= 0 {
			continue
		}
		glyphs[e.Name] = e.Codepoint
	}
	r.glyphs = glyphs
}

// SetColors replaces the color table. Entries that do not parse are skipped.
func (r *Resolver) SetColors(entries []ColorEntry) {
	colors := make(map[string]color.RGBA, len(entries))
	for _, e := range entries {
		c, err := ParseColor(e.Color)
		if err != nil {
			log.Printf("palette: skipping color %q: %v", e.Name, err)
			continue
		}
		colors[e.Name] = c
	}
	r.colors = colors
}

// Glyph returns the codepoint for an icon name, or FallbackGlyph
func (r *Resolver) Glyph(name string) rune {
	if g, ok := r.glyphs[name]; ok {
		return g
	}
	return FallbackGlyph
}

// Color returns the color for a status key, or Gray
func (r *Resolver) Color(key string) color.RGBA {
	if c, ok := r.colors[key]; ok {
		return c
	}
	return Gray
}

// ItemColor resolves an item color: a table key first, then a literal hex color, then Gray
func (r *Resolver) ItemColor(value string) color.RGBA {
	if c, ok := r.colors[value]; ok {
		return c
	}
	if c, err := ParseColor(value); err == nil {
		return c
	}
	return Gray
}

// ParseColor parses a #rrggbb color
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s != "" && !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	red, green, blue := c.RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: 0xff}, nil
}

// ParseCodepoint parses a codepoint written as hex ("f0493", "U+F0493", "0xf0493")
func ParseCodepoint(s string) (rune, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimPrefix(s, "u+")
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("parse codepoint %q: %w", s, err)
	}
	return rune(v), nil
}
