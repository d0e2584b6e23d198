// Package cvmat converts between types.Frame and gocv.Mat.
package cvmat

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"roitracker/types"
)

// ToMat copies the frame into a new Mat. The caller owns the Mat and must close it.
func ToMat(frame types.Frame) (gocv.Mat, error) {
	if !frame.Valid() {
		return gocv.NewMat(), errors.Wrapf(types.ErrInvalidInput,
			"frame %dx%dx%d", frame.Width, frame.Height, frame.Channels)
	}
	var mt gocv.MatType
	switch frame.Channels {
	case 1:
		mt = gocv.MatTypeCV8UC1
	case 4:
		mt = gocv.MatTypeCV8UC4
	default:
		mt = gocv.MatTypeCV8UC3
	}
	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, mt, frame.Pix)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "create mat from frame")
	}
	// NewMatFromBytes shares the Go slice; clone so the frame stays immutable.
	clone := mat.Clone()
	_ = mat.Close()
	return clone, nil
}

// FromMat copies an 8-bit Mat into a new frame
func FromMat(mat gocv.Mat) (types.Frame, error) {
	if mat.Empty() {
		return types.Frame{}, errors.Wrap(types.ErrInvalidInput, "empty mat")
	}
	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return types.Frame{}, errors.Wrapf(types.ErrInvalidInput, "unsupported mat type %v", mat.Type())
	}
	src := mat
	if !mat.IsContinuous() {
		src = mat.Clone()
		defer src.Close()
	}
	pix := src.ToBytes()
	return types.Frame{
		Width:    src.Cols(),
		Height:   src.Rows(),
		Channels: src.Channels(),
		Pix:      pix,
	}, nil
}
