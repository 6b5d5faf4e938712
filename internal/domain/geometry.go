package domain

import "math"

// Point is a position in scene units
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns p - q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale returns p multiplied by f
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Midpoint returns the point halfway between p and q
func (p Point) Midpoint(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Rect is an axis-aligned rectangle. Min is not guaranteed to be the
// top-left corner until Normalize has been called.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// RectFromPoints builds a normalized rectangle spanning two corners given in any order
func RectFromPoints(a, b Point) Rect {
	return Rect{Min: a, Max: b}.Normalize()
}

// RectXYWH builds a rectangle from its top-left corner and size
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Min: Point{X: x, Y: y}, Max: Point{X: x + w, Y: y + h}}.Normalize()
}

// Normalize orders the corners so that Min is top-left and Max is bottom-right
func (r Rect) Normalize() Rect {
	return Rect{
		Min: Point{X: math.Min(r.Min.X, r.Max.X), Y: math.Min(r.Min.Y, r.Max.Y)},
		Max: Point{X: math.Max(r.Min.X, r.Max.X), Y: math.Max(r.Min.Y, r.Max.Y)},
	}
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return math.Abs(r.Max.X - r.Min.X)
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return math.Abs(r.Max.Y - r.Min.Y)
}

// Inset grows (positive d) or shrinks (negative d) the rectangle on every side
func (r Rect) Inset(d float64) Rect {
	n := r.Normalize()
	return Rect{
		Min: Point{X: n.Min.X - d, Y: n.Min.Y - d},
		Max: Point{X: n.Max.X + d, Y: n.Max.Y + d},
	}
}

// Contains reports whether p lies inside the rectangle, edges included
func (r Rect) Contains(p Point) bool {
	n := r.Normalize()
	return p.X >= n.Min.X && p.X <= n.Max.X && p.Y >= n.Min.Y && p.Y <= n.Max.Y
}

// ContainsStrict reports whether p lies inside the rectangle, edges excluded
func (r Rect) ContainsStrict(p Point) bool {
	n := r.Normalize()
	return p.X > n.Min.X && p.X < n.Max.X && p.Y > n.Min.Y && p.Y < n.Max.Y
}

// Clamp limits v to [lo, hi]. When the range is empty lo wins.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
