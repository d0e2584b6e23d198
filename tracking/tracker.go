package tracking

import (
	"github.com/pkg/errors"

	"roitracker/types"
)

var (
	// ErrNoTracker is returned when the delegate has no tracker to forward to
	ErrNoTracker = errors.New("no tracker selected")
	// ErrNoRegion is returned when tracking is requested before a region was set
	ErrNoRegion = errors.New("no region set")
)

// Tracker is a single-object tracking algorithm.
//
// Init must be called exactly once before any Update, with the frame the
// region was selected on. Update reports ok == false when the object is lost;
// the tracker then stays invalid until it is initialized again. A non-nil
// error from either method is an unexpected failure, not a loss.
type Tracker interface {
	Init(frame types.Frame, region types.Region) error
	Update(frame types.Frame) (region types.Region, ok bool, err error)
	Close() error
}
