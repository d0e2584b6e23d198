package input

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roitracker/types"
)

func TestScriptReplaysThenQuits(t *testing.T) {
	src := NewScript(ClickAt(10, 20), Event{Kind: Confirm})
	ctx := context.Background()

	e, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, Click, e.Kind)
	assert.Equal(t, image.Pt(10, 20), e.Point)

	e, ok := src.Poll()
	require.True(t, ok)
	assert.Equal(t, Confirm, e.Kind)

	e, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, Quit, e.Kind)

	e, ok = src.Poll()
	assert.True(t, ok)
	assert.Equal(t, Quit, e.Kind)
}

func TestChannelPollEmpty(t *testing.T) {
	c := NewChannel(1)
	_, ok := c.Poll()
	assert.False(t, ok)

	c.Send(SelectRect(image.Rect(1, 2, 3, 4)))
	e, ok := c.Poll()
	require.True(t, ok)
	assert.Equal(t, Select, e.Kind)
	assert.Equal(t, image.Rect(1, 2, 3, 4), e.Rect)
}

func TestChannelNextHonoursContext(t *testing.T) {
	c := NewChannel(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChannelDeliversAcrossGoroutines(t *testing.T) {
	c := NewChannel(0)
	go func() {
		c.Send(ClickAt(1, 1))
		c.Close()
	}()

	e, err := c.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Click, e.Kind)
	e, err = c.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Quit, e.Kind)
}

func TestKeyToEvent(t *testing.T) {
	cases := []struct {
		key   int
		state types.SessionState
		want  Kind
		ok    bool
	}{
		{KeyNone, types.StateIdle, 0, false},
		{'x', types.StateIdle, 0, false},
		{'q', types.StateTracking, Quit, true},
		{KeyEscape, types.StateIdle, Quit, true},
		{KeyEscape, types.StateTracking, Quit, true},
		{KeyEscape, types.StateAwaitingConfirmation, Reject, true},
		{'y', types.StateAwaitingConfirmation, Confirm, true},
		{KeyEnter, types.StateAwaitingConfirmation, Confirm, true},
		{'N', types.StateAwaitingConfirmation, Reject, true},
		{'d', types.StateTracking, ToggleDebug, true},
		// some backends report modifier bits above the low byte
		{0x100000 | 'q', types.StateIdle, Quit, true},
	}
	for _, tc := range cases {
		e, ok := KeyToEvent(tc.key, tc.state)
		assert.Equal(t, tc.ok, ok, "key %d", tc.key)
		if ok {
			assert.Equal(t, tc.want, e.Kind, "key %d", tc.key)
		}
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "confirm", Confirm.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
