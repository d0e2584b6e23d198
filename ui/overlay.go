package ui

import (
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"roitracker/cvmat"
	"roitracker/types"
)

// RegionRenderer draws the tracked region outline with gocv
type RegionRenderer struct {
	color     color.RGBA
	thickness int
}

// NewRegionRenderer returns a renderer drawing outlines of the given color and width
func NewRegionRenderer(c color.RGBA, thickness int) *RegionRenderer {
	if thickness <= 0 {
		thickness = types.DefaultUIConfig().RegionThickness
	}
	return &RegionRenderer{color: c, thickness: thickness}
}

// Render implements session.Renderer. The outline is drawn on a copy of frame.
func (r *RegionRenderer) Render(frame types.Frame, region types.Region) (types.Frame, error) {
	mat, err := cvmat.ToMat(frame)
	if err != nil {
		return types.Frame{}, err
	}
	defer mat.Close()

	if !region.Empty() {
		if err := gocv.Rectangle(&mat, region.Rect(), r.color, r.thickness); err != nil {
			return types.Frame{}, errors.Wrap(err, "draw region")
		}
	}
	return cvmat.FromMat(mat)
}
