package eventlog

import (
	"fmt"

	"roitracker/types"
)

// Summary aggregates an event log
type Summary struct {
	Clicks int
	Tracks int
	// FirstTrack and LastTrack are the frame span of track events, -1 when none
	FirstTrack int
	LastTrack  int
	// Gaps counts frames inside the track span that have no track event,
	// i.e. frames on which the tracker lost the object.
	Gaps int
}

// Summarize counts the events per kind and the tracked frame span
func Summarize(events []types.Event) Summary {
	s := Summary{FirstTrack: -1, LastTrack: -1}
	for _, e := range events {
		switch e.Kind {
		case types.EventClick:
			s.Clicks++
		case types.EventTrack:
			if s.Tracks == 0 || e.Frame < s.FirstTrack {
				s.FirstTrack = e.Frame
			}
			if e.Frame > s.LastTrack {
				s.LastTrack = e.Frame
			}
			s.Tracks++
		}
	}
	if s.Tracks > 0 {
		s.Gaps = s.LastTrack - s.FirstTrack + 1 - s.Tracks
	}
	return s
}

func (s Summary) String() string {
	if s.Tracks == 0 {
		return fmt.Sprintf("clicks=%d tracks=0", s.Clicks)
	}
	return fmt.Sprintf("clicks=%d tracks=%d frames=%d-%d lost=%d", s.Clicks, s.Tracks, s.FirstTrack, s.LastTrack, s.Gaps)
}
