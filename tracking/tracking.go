package tracking

import (
	"github.com/pkg/errors"

	"roitracker/types"
)

// Delegate wraps the active Tracker. It validates frames and owns the
// init-once lifecycle so that tracker variants only implement the algorithm.
type Delegate struct {
	tracker     Tracker
	region      types.Region
	hasRegion   bool
	initialized bool
	lost        bool
}

// NewDelegate creates a delegate around tracker, which may be nil
func NewDelegate(tracker Tracker) *Delegate {
	return &Delegate{tracker: tracker}
}

// SetTracker replaces the active tracker. The current region is kept but the
// new tracker starts uninitialized.
func (d *Delegate) SetTracker(tracker Tracker) error {
	var err error
	if d.tracker != nil && d.tracker != tracker {
		err = d.tracker.Close()
	}
	d.tracker = tracker
	d.initialized = false
	d.lost = false
	return errors.Wrap(err, "close previous tracker")
}

// SetRegion sets the region to track. Any previous tracking state is
// discarded; the next Track call anchors the tracker on the given frame.
func (d *Delegate) SetRegion(region types.Region) error {
	if d.tracker == nil {
		return ErrNoTracker
	}
	d.region = region
	d.hasRegion = true
	d.initialized = false
	d.lost = false
	return nil
}

// Region returns the region last set or tracked
func (d *Delegate) Region() types.Region {
	return d.region
}

// Initialized reports whether the tracker has been anchored on a frame
func (d *Delegate) Initialized() bool {
	return d.initialized
}

// Lost reports whether the tracker lost the object since the last SetRegion
func (d *Delegate) Lost() bool {
	return d.lost
}

// Track locates the region in frame.
//
// The first call after SetRegion initializes the tracker on frame and returns
// the region unchanged. Later calls run an update. When the tracker loses the
// object Track returns ok == false and a nil error. Loss is sticky: later
// calls return ok == false without calling the tracker, and only SetRegion
// leaves the lost state.
func (d *Delegate) Track(frame types.Frame) (types.Region, bool, error) {
	if d.tracker == nil {
		return types.Region{}, false, ErrNoTracker
	}
	if !frame.Valid() {
		return types.Region{}, false, errors.Wrapf(types.ErrInvalidInput,
			"frame %dx%dx%d with %d bytes", frame.Width, frame.Height, frame.Channels, len(frame.Pix))
	}
	if !d.hasRegion {
		return types.Region{}, false, ErrNoRegion
	}
	if d.lost {
		return types.Region{}, false, nil
	}

	if !d.initialized {
		if err := d.tracker.Init(frame, d.region); err != nil {
			return types.Region{}, false, errors.Wrap(err, "initialize tracker")
		}
		d.initialized = true
		return d.region, true, nil
	}

	region, ok, err := d.tracker.Update(frame)
	if err != nil {
		return types.Region{}, false, errors.Wrap(err, "update tracker")
	}
	if !ok {
		d.initialized = false
		d.lost = true
		return types.Region{}, false, nil
	}
	d.region = region
	return region, true, nil
}

// Close releases the active tracker
func (d *Delegate) Close() error {
	if d.tracker == nil {
		return nil
	}
	err := d.tracker.Close()
	d.tracker = nil
	d.initialized = false
	return err
}
