// Package trackingtest provides scripted trackers for tests.
package trackingtest

import (
	"roitracker/types"
)

// Step is one scripted Update outcome
type Step struct {
	Region types.Region
	Lost   bool
	Err    error
}

// Found scripts a successful update
func Found(x, y, w, h int) Step {
	return Step{Region: types.Region{X: x, Y: y, Width: w, Height: h}}
}

// Lost scripts a loss
func Lost() Step {
	return Step{Lost: true}
}

// Tracker replays scripted update results and records every call.
// Once the script is exhausted it keeps returning the last found region.
type Tracker struct {
	Name  string
	Steps []Step

	InitErr     error
	InitFrames  []types.Frame
	InitRegions []types.Region
	Updates     int
	Closed      int

	last types.Region
}

// New returns a tracker that replays steps
func New(steps ...Step) *Tracker {
	return &Tracker{Name: "fake", Steps: steps}
}

// Init implements tracking.Tracker
func (t *Tracker) Init(frame types.Frame, region types.Region) error {
	t.InitFrames = append(t.InitFrames, frame)
	t.InitRegions = append(t.InitRegions, region)
	if t.InitErr != nil {
		return t.InitErr
	}
	t.last = region
	return nil
}

// Update implements tracking.Tracker
func (t *Tracker) Update(frame types.Frame) (types.Region, bool, error) {
	i := t.Updates
	t.Updates++
	if i >= len(t.Steps) {
		return t.last, true, nil
	}
	step := t.Steps[i]
	if step.Err != nil {
		return types.Region{}, false, step.Err
	}
	if step.Lost {
		return types.Region{}, false, nil
	}
	t.last = step.Region
	return step.Region, true, nil
}

// Close implements tracking.Tracker
func (t *Tracker) Close() error {
	t.Closed++
	return nil
}
