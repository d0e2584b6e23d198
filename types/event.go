package types

import (
	"fmt"
	"strings"
)

// EventKind identifies what produced an event record
type EventKind int

const (
	EventClick EventKind = iota
	EventTrack
)

func (k EventKind) String() string {
	switch k {
	case EventClick:
		return "Click"
	case EventTrack:
		return "Track"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ParseEventKind is the inverse of EventKind.String
func ParseEventKind(s string) (EventKind, error) {
	switch strings.TrimSpace(s) {
	case "Click":
		return EventClick, nil
	case "Track":
		return EventTrack, nil
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// Event is one logged region-affecting action.
// Frame is 0 for the anchor frame and counts tracked frames from 1.
type Event struct {
	Frame  int
	Kind   EventKind
	Region NormalizedRegion
}
