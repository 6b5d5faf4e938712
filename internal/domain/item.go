package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ItemType is the wire tag of an item variant
type ItemType string

const (
	ItemTypeRect        ItemType = "rectangle"
	ItemTypeEllipse     ItemType = "ellipse"
	ItemTypeText        ItemType = "text"
	ItemTypeBoundText   ItemType = "bound_text"
	ItemTypeImage       ItemType = "image"
	ItemTypeLegacyGauge ItemType = "gauge"
	ItemTypeGauge       ItemType = "bitmap_gauge"
	ItemTypeBar         ItemType = "bitmap_bar"
	ItemTypeSparkline   ItemType = "bitmap_sparkline"
)

const (
	// DefaultItemSize is used for any unset width or height
	DefaultItemSize = 100
	// DefaultFontSize is used for text items without a font size
	DefaultFontSize = 12
	// glyphAdvance approximates the advance of one glyph as a fraction of the font size
	glyphAdvance = 0.6
)

// Width-to-height ratios of the bitmap-backed variants
const (
	GaugeAspect     = 1.0
	BarAspect       = 2.0
	SparklineAspect = 3.0
)

// ItemKind is the visual carried by an Item. The set of implementations is closed.
type ItemKind interface {
	Type() ItemType
	// Size returns the width and height derived from the variant's own fields
	Size() (w, h float64)
	isItemKind()
}

// BitmapKind is implemented by variants whose visual is a pre-rendered snapshot
type BitmapKind interface {
	ItemKind
	Snapshot() SnapshotRequest
}

// SnapshotRequest describes a bitmap to be rendered by a chart renderer
type SnapshotRequest struct {
	Type   ItemType
	Title  string
	Value  float64
	Values []float64
	Color  string
	Width  int
	Height int
}

// Item is a decoration placed on the map
type Item struct {
	ID   string
	X    float64
	Y    float64
	Kind ItemKind
}

// Position returns the item's top-left corner
func (it *Item) Position() Point {
	return Point{X: it.X, Y: it.Y}
}

// Size returns the item's derived dimensions
func (it *Item) Size() (float64, float64) {
	if it.Kind == nil {
		return DefaultItemSize, DefaultItemSize
	}
	return it.Kind.Size()
}

// Bounds returns the item's box in scene units
func (it *Item) Bounds() Rect {
	w, h := it.Size()
	return RectXYWH(it.X, it.Y, w, h)
}

// Type returns the variant tag, or "" for an item without a kind
func (it *Item) Type() ItemType {
	if it.Kind == nil {
		return ""
	}
	return it.Kind.Type()
}

// MarshalJSON encodes the item in its flat record form. An item without a
// kind has no type tag to decode back into and is refused.
func (it Item) MarshalJSON() ([]byte, error) {
	if it.Kind == nil {
		return nil, fmt.Errorf("item %q has no kind", it.ID)
	}
	return json.Marshal(RecordOf(it))
}

// UnmarshalJSON decodes the flat record form
func (it *Item) UnmarshalJSON(data []byte) error {
	var rec ItemRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	item, err := rec.ToItem()
	if err != nil {
		return err
	}
	*it = item
	return nil
}

// Rectangle is a filled rectangle
type Rectangle struct {
	W, H  float64
	Color string
}

// Ellipse is a filled ellipse inscribed in its box
type Ellipse struct {
	W, H  float64
	Color string
}

// Text is a static label
type Text struct {
	Text     string
	FontSize float64
	Color    string
}

// BoundText is a label bound to a live value. A "{value}" placeholder in
// Text is replaced by the value; without one the value is appended.
type BoundText struct {
	Text     string
	Value    float64
	FontSize float64
	Color    string
}

// Image is a static bitmap loaded from Path
type Image struct {
	W, H float64
	Path string
}

// LegacyGauge is a horizontal fill bar drawn from primitives
type LegacyGauge struct {
	W, H  float64
	Title string
	Value float64
	Color string
}

// Gauge is a pie-style gauge snapshot
type Gauge struct {
	H     float64
	Title string
	Value float64
	Color string
}

// Bar is a single-bar chart snapshot
type Bar struct {
	H     float64
	Title string
	Value float64
	Color string
}

// Sparkline is a line chart snapshot of a value series
type Sparkline struct {
	H      float64
	Title  string
	Values []float64
	Color  string
}

func (Rectangle) Type() ItemType { return ItemTypeRect }
func (Ellipse) Type() ItemType { return ItemTypeEllipse }
func (Text) Type() ItemType { return ItemTypeText }
func (BoundText) Type() ItemType { return ItemTypeBoundText }
func (Image) Type() ItemType { return ItemTypeImage }
func (LegacyGauge) Type() ItemType { return ItemTypeLegacyGauge }
func (Gauge) Type() ItemType { return ItemTypeGauge }
func (Bar) Type() ItemType { return ItemTypeBar }
func (Sparkline) Type() ItemType { return ItemTypeSparkline }

func (Rectangle) isItemKind() {}
func (Ellipse) isItemKind() {}
func (Text) isItemKind() {}
func (BoundText) isItemKind() {}
func (Image) isItemKind() {}
func (LegacyGauge) isItemKind() {}
func (Gauge) isItemKind() {}
func (Bar) isItemKind() {}
func (Sparkline) isItemKind() {}

func (k Rectangle) Size() (float64, float64) { return orDefault(k.W), orDefault(k.H) }
func (k Ellipse) Size() (float64, float64) { return orDefault(k.W), orDefault(k.H) }
func (k Image) Size() (float64, float64) { return orDefault(k.W), orDefault(k.H) }
func (k LegacyGauge) Size() (float64, float64) { return orDefault(k.W), orDefault(k.H) }

func (k Text) Size() (float64, float64) {
	return textSize(k.Text, k.FontSize)
}

func (k BoundText) Size() (float64, float64) {
	return textSize(k.Display(), k.FontSize)
}

func (k Gauge) Size() (float64, float64) { return aspectSize(k.H, GaugeAspect) }
func (k Bar) Size() (float64, float64) { return aspectSize(k.H, BarAspect) }
func (k Sparkline) Size() (float64, float64) { return aspectSize(k.H, SparklineAspect) }

// Display returns the text with the bound value substituted
func (k BoundText) Display() string {
	value := strconv.FormatFloat(k.Value, 'f', -1, 64)
	if strings.Contains(k.Text, "{value}") {
		return strings.ReplaceAll(k.Text, "{value}", value)
	}
	if k.Text == "" {
		return value
	}
	return k.Text + " " + value
}

func (k Gauge) Snapshot() SnapshotRequest {
	w, h := k.Size()
	return SnapshotRequest{Type: ItemTypeGauge, Title: k.Title, Value: k.Value, Color: k.Color, Width: int(w), Height: int(h)}
}

func (k Bar) Snapshot() SnapshotRequest {
	w, h := k.Size()
	return SnapshotRequest{Type: ItemTypeBar, Title: k.Title, Value: k.Value, Color: k.Color, Width: int(w), Height: int(h)}
}

func (k Sparkline) Snapshot() SnapshotRequest {
	w, h := k.Size()
	values := make([]float64, len(k.Values))
	copy(values, k.Values)
	return SnapshotRequest{Type: ItemTypeSparkline, Title: k.Title, Values: values, Color: k.Color, Width: int(w), Height: int(h)}
}

// FontSizeOr returns size, or DefaultFontSize when unset
func FontSizeOr(size float64) float64 {
	if size <= 0 {
		return DefaultFontSize
	}
	return size
}

// TextWidth estimates the rendered width of s at the given font size
func TextWidth(s string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(s)) * FontSizeOr(fontSize) * glyphAdvance
}

func textSize(s string, fontSize float64) (float64, float64) {
	return TextWidth(s, fontSize), FontSizeOr(fontSize)
}

func aspectSize(h, aspect float64) (float64, float64) {
	h = orDefault(h)
	return h * aspect, h
}

func orDefault(v float64) float64 {
	if v <= 0 {
		return DefaultItemSize
	}
	return v
}

// ItemRecord is the flat wire and storage form of an Item
type ItemRecord struct {
	ID       string    `json:"id" yaml:"id"`
	Type     ItemType  `json:"type" yaml:"type"`
	X        float64   `json:"x" yaml:"x"`
	Y        float64   `json:"y" yaml:"y"`
	Width    float64   `json:"width,omitempty" yaml:"width,omitempty"`
	Height   float64   `json:"height,omitempty" yaml:"height,omitempty"`
	Color    string    `json:"color,omitempty" yaml:"color,omitempty"`
	Text     string    `json:"text,omitempty" yaml:"text,omitempty"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Value    float64   `json:"value,omitempty" yaml:"value,omitempty"`
	Values   []float64 `json:"values,omitempty" yaml:"values,omitempty"`
	Path     string    `json:"path,omitempty" yaml:"path,omitempty"`
	FontSize float64   `json:"font_size,omitempty" yaml:"font_size,omitempty"`
}

// ToItem converts the record into an Item, keeping only the fields its variant uses
func (r ItemRecord) ToItem() (Item, error) {
	item := Item{ID: r.ID, X: r.X, Y: r.Y}

	switch r.Type {
	case ItemTypeRect:
		item.Kind = Rectangle{W: r.Width, H: r.Height, Color: r.Color}
	case ItemTypeEllipse:
		item.Kind = Ellipse{W: r.Width, H: r.Height, Color: r.Color}
	case ItemTypeText:
		item.Kind = Text{Text: r.Text, FontSize: r.FontSize, Color: r.Color}
	case ItemTypeBoundText:
		item.Kind = BoundText{Text: r.Text, Value: r.Value, FontSize: r.FontSize, Color: r.Color}
	case ItemTypeImage:
		item.Kind = Image{W: r.Width, H: r.Height, Path: r.Path}
	case ItemTypeLegacyGauge:
		item.Kind = LegacyGauge{W: r.Width, H: r.Height, Title: r.Title, Value: r.Value, Color: r.Color}
	case ItemTypeGauge:
		item.Kind = Gauge{H: r.Height, Title: r.Title, Value: r.Value, Color: r.Color}
	case ItemTypeBar:
		item.Kind = Bar{H: r.Height, Title: r.Title, Value: r.Value, Color: r.Color}
	case ItemTypeSparkline:
		values := make([]float64, len(r.Values))
		copy(values, r.Values)
		item.Kind = Sparkline{H: r.Height, Title: r.Title, Values: values, Color: r.Color}
	default:
		return Item{}, fmt.Errorf("unknown item type %q", r.Type)
	}

	return item, nil
}

// RecordOf flattens an Item into its record form
func RecordOf(it Item) ItemRecord {
	rec := ItemRecord{ID: it.ID, X: it.X, Y: it.Y}

	switch k := it.Kind.(type) {
	case Rectangle:
		rec.Type, rec.Width, rec.Height, rec.Color = ItemTypeRect, k.W, k.H, k.Color
	case Ellipse:
		rec.Type, rec.Width, rec.Height, rec.Color = ItemTypeEllipse, k.W, k.H, k.Color
	case Text:
		rec.Type, rec.Text, rec.FontSize, rec.Color = ItemTypeText, k.Text, k.FontSize, k.Color
	case BoundText:
		rec.Type, rec.Text, rec.Value, rec.FontSize, rec.Color = ItemTypeBoundText, k.Text, k.Value, k.FontSize, k.Color
	case Image:
		rec.Type, rec.Width, rec.Height, rec.Path = ItemTypeImage, k.W, k.H, k.Path
	case LegacyGauge:
		rec.Type, rec.Width, rec.Height = ItemTypeLegacyGauge, k.W, k.H
		rec.Title, rec.Value, rec.Color = k.Title, k.Value, k.Color
	case Gauge:
		rec.Type, rec.Height, rec.Title, rec.Value, rec.Color = ItemTypeGauge, k.H, k.Title, k.Value, k.Color
	case Bar:
		rec.Type, rec.Height, rec.Title, rec.Value, rec.Color = ItemTypeBar, k.H, k.Title, k.Value, k.Color
	case Sparkline:
		rec.Type, rec.Height, rec.Title, rec.Color = ItemTypeSparkline, k.H, k.Title, k.Color
		rec.Values = make([]float64, len(k.Values))
		copy(rec.Values, k.Values)
	}

	return rec
}
