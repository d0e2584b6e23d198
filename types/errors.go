package types

import "github.com/pkg/errors"

var (
	// ErrInvalidInput is returned when a frame is not a usable pixel buffer.
	ErrInvalidInput = errors.New("invalid input frame")
	// ErrResourceUnavailable is returned when a frame source or sink cannot be opened.
	ErrResourceUnavailable = errors.New("resource unavailable")
)
