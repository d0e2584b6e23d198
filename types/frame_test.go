package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameValid(t *testing.T) {
	cases := []struct {
		name  string
		frame Frame
		want  bool
	}{
		{"zero value", Frame{}, false},
		{"zero width", NewFrame(0, 10, 3), false},
		{"zero height", NewFrame(10, 0, 3), false},
		{"bgr", NewFrame(4, 3, 3), true},
		{"gray", NewFrame(4, 3, 1), true},
		{"bgra", NewFrame(4, 3, 4), true},
		{"two channels", NewFrame(4, 3, 2), false},
		{"short buffer", Frame{Width: 4, Height: 3, Channels: 3, Pix: make([]byte, 10)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.frame.Valid())
		})
	}
}

func TestFrameCloneIsDeep(t *testing.T) {
	src := NewFrame(4, 4, 3)
	c := src.Clone()
	c.Pix[0] = 9

	assert.Zero(t, src.Pix[0])
	assert.False(t, src.Equal(c))
	assert.True(t, Frame{}.Equal(Frame{}.Clone()))
}
