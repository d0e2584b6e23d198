package types

import (
	"image"
	"math"
)

// Region is an axis-aligned rectangle in pixel coordinates of the current frame.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// NormalizedRegion is a Region expressed as fractions of the frame dimensions.
type NormalizedRegion struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RegionFromRect converts an image.Rectangle into a Region
func RegionFromRect(rect image.Rectangle) Region {
	rect = rect.Canon()
	return Region{X: rect.Min.X, Y: rect.Min.Y, Width: rect.Dx(), Height: rect.Dy()}
}

// Rect returns the region as an image.Rectangle
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether the region has no area
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the center point of the region
func (r Region) Center() image.Point {
	return image.Pt(r.X+r.Width/2, r.Y+r.Height/2)
}

// Normalize divides the region by the frame width and height.
// A zero-sized frame yields the zero NormalizedRegion.
func (r Region) Normalize(frameWidth, frameHeight int) NormalizedRegion {
	if frameWidth <= 0 || frameHeight <= 0 {
		return NormalizedRegion{}
	}
	w := float64(frameWidth)
	h := float64(frameHeight)
	return NormalizedRegion{
		X:      float64(r.X) / w,
		Y:      float64(r.Y) / h,
		Width:  float64(r.Width) / w,
		Height: float64(r.Height) / h,
	}
}

// Denormalize scales the region back to pixels of a frameWidth x frameHeight frame.
func (n NormalizedRegion) Denormalize(frameWidth, frameHeight int) Region {
	w := float64(frameWidth)
	h := float64(frameHeight)
	return Region{
		X:      int(math.Round(n.X * w)),
		Y:      int(math.Round(n.Y * h)),
		Width:  int(math.Round(n.Width * w)),
		Height: int(math.Round(n.Height * h)),
	}
}
