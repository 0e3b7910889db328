package geom

import "math"

// Rect is an axis-aligned box.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Left+r.Width && p.Y >= r.Top && p.Y <= r.Top+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return MakeBoundingBoxFromPoints([]Point{
		Pt(r.Left, r.Top), Pt(r.Left+r.Width, r.Top+r.Height),
		Pt(other.Left, other.Top), Pt(other.Left+other.Width, other.Top+other.Height),
	})
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Pt(r.Left+r.Width/2, r.Top+r.Height/2)
}

func (r Rect) TopLeft() Point     { return Pt(r.Left, r.Top) }
func (r Rect) BottomRight() Point { return Pt(r.Left+r.Width, r.Top+r.Height) }

// MakeBoundingBoxFromPoints returns the axis-aligned box around points.
func MakeBoundingBoxFromPoints(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

// SizeAfterTransform returns the bounding size of a width x height box centred
// on the origin after applying m.
func SizeAfterTransform(width, height float64, m Matrix2D) Point {
	dimX, dimY := width/2, height/2
	bbox := MakeBoundingBoxFromPoints([]Point{
		Pt(-dimX, -dimY).Transform(m, false),
		Pt(dimX, -dimY).Transform(m, false),
		Pt(-dimX, dimY).Transform(m, false),
		Pt(dimX, dimY).Transform(m, false),
	})
	return Pt(bbox.Width, bbox.Height)
}
