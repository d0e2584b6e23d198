package types

import (
	"bytes"
	"image"
)

// Frame is an interleaved 8-bit pixel buffer in BGR(A) channel order.
// Frames are treated as immutable; renderers draw on a copy.
type Frame struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// NewFrame allocates a zeroed frame
func NewFrame(width, height, channels int) Frame {
	if width < 0 || height < 0 || channels < 0 {
		return Frame{}
	}
	return Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]byte, width*height*channels),
	}
}

// Empty reports whether the frame has zero size
func (f Frame) Empty() bool {
	return f.Width <= 0 || f.Height <= 0 || len(f.Pix) == 0
}

// Valid reports whether the frame is a non-empty pixel buffer whose length
// matches its declared geometry.
func (f Frame) Valid() bool {
	if f.Empty() {
		return false
	}
	switch f.Channels {
	case 1, 3, 4:
	default:
		return false
	}
	return len(f.Pix) == f.Width*f.Height*f.Channels
}

// Bounds returns the frame rectangle anchored at the origin
func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Clone returns a deep copy of the frame
func (f Frame) Clone() Frame {
	c := f
	if f.Pix != nil {
		c.Pix = make([]byte, len(f.Pix))
		copy(c.Pix, f.Pix)
	}
	return c
}

// Equal reports whether both frames have the same geometry and bytes
func (f Frame) Equal(o Frame) bool {
	return f.Width == o.Width && f.Height == o.Height && f.Channels == o.Channels && bytes.Equal(f.Pix, o.Pix)
}
