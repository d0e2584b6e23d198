package utils

import (
	"image"

	"roitracker/types"
)

// ClampRegion moves the region inside a frameWidth x frameHeight frame.
// The box is shifted rather than cut so that regions near the border keep
// their size; a dimension is only reduced when it exceeds the frame itself.
func ClampRegion(r types.Region, frameWidth, frameHeight int) types.Region {
	if frameWidth <= 0 || frameHeight <= 0 {
		return types.Region{}
	}

	width := clampInt(r.Width, 0, frameWidth)
	height := clampInt(r.Height, 0, frameHeight)

	x := clampInt(r.X, 0, frameWidth-width)
	y := clampInt(r.Y, 0, frameHeight-height)

	return types.Region{X: x, Y: y, Width: width, Height: height}
}

// RegionAroundPoint builds a region centred on p whose size is percent of the
// frame dimensions, clamped to the frame.
func RegionAroundPoint(p image.Point, percent float64, frameWidth, frameHeight int) types.Region {
	width := int(float64(frameWidth) * percent / 100)
	height := int(float64(frameHeight) * percent / 100)

	r := types.Region{
		X:      p.X - width/2,
		Y:      p.Y - height/2,
		Width:  width,
		Height: height,
	}
	return ClampRegion(r, frameWidth, frameHeight)
}

// RegionFromSelection converts an operator-drawn rectangle to a clamped region
func RegionFromSelection(rect image.Rectangle, frameWidth, frameHeight int) types.Region {
	return ClampRegion(types.RegionFromRect(rect), frameWidth, frameHeight)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
