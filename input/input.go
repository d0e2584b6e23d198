// Package input defines the operator input events that drive a session.
package input

import (
	"context"
	"fmt"
	"image"

	"roitracker/types"
)

// Kind identifies an operator action
type Kind int

const (
	// Click is a pointer-down at Point
	Click Kind = iota
	// Select is an operator-drawn rectangle in Rect
	Select
	Confirm
	Reject
	Quit
	// ToggleDebug switches the on-screen debug log; it is handled by the display
	ToggleDebug
)

func (k Kind) String() string {
	switch k {
	case Click:
		return "click"
	case Select:
		return "select"
	case Confirm:
		return "confirm"
	case Reject:
		return "reject"
	case Quit:
		return "quit"
	case ToggleDebug:
		return "toggle-debug"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is one operator action
type Event struct {
	Kind  Kind
	Point image.Point
	Rect  image.Rectangle
}

// ClickAt returns a Click event at (x, y)
func ClickAt(x, y int) Event {
	return Event{Kind: Click, Point: image.Pt(x, y)}
}

// SelectRect returns a Select event for an operator-drawn rectangle
func SelectRect(rect image.Rectangle) Event {
	return Event{Kind: Select, Rect: rect}
}

// Source delivers operator events to the session.
//
// Next blocks until an event arrives or ctx is done. Poll returns immediately
// and reports whether an event was pending.
type Source interface {
	Next(ctx context.Context) (Event, error)
	Poll() (Event, bool)
}

// Channel is a Source fed by message passing
type Channel struct {
	ch chan Event
}

// NewChannel creates a Channel with the given buffer size
func NewChannel(buffer int) *Channel {
	return &Channel{ch: make(chan Event, buffer)}
}

// NewScript returns a Source that replays events and then reports Quit
func NewScript(events ...Event) *Channel {
	c := NewChannel(len(events))
	for _, e := range events {
		c.ch <- e
	}
	close(c.ch)
	return c
}

// Send queues an event, blocking while the buffer is full
func (c *Channel) Send(e Event) {
	c.ch <- e
}

// Close ends the stream; once drained the source reports Quit
func (c *Channel) Close() {
	close(c.ch)
}

// Next implements Source. A closed channel yields Quit.
func (c *Channel) Next(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case e, ok := <-c.ch:
		if !ok {
			return Event{Kind: Quit}, nil
		}
		return e, nil
	}
}

// Poll implements Source
func (c *Channel) Poll() (Event, bool) {
	select {
	case e, ok := <-c.ch:
		if !ok {
			return Event{Kind: Quit}, true
		}
		return e, true
	default:
		return Event{}, false
	}
}

// Key codes reported by HighGUI's WaitKey
const (
	KeyNone   = -1
	KeyEnter  = 13
	KeyReturn = 10
	KeyEscape = 27
)

// KeyToEvent maps a key press to an operator event for the given session
// state. ESC cancels a proposed region and quits otherwise.
func KeyToEvent(key int, state types.SessionState) (Event, bool) {
	if key == KeyNone {
		return Event{}, false
	}
	switch key & 0xff {
	case KeyEscape:
		if state == types.StateAwaitingConfirmation {
			return Event{Kind: Reject}, true
		}
		return Event{Kind: Quit}, true
	case 'q', 'Q':
		return Event{Kind: Quit}, true
	case 'y', 'Y', KeyEnter, KeyReturn:
		return Event{Kind: Confirm}, true
	case 'n', 'N':
		return Event{Kind: Reject}, true
	case 'd', 'D':
		return Event{Kind: ToggleDebug}, true
	}
	return Event{}, false
}
