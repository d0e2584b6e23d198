// Package cvtracker provides the OpenCV tracker variants.
package cvtracker

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"

	"roitracker/cvmat"
	"roitracker/tracking"
	"roitracker/types"
)

// ErrUnsupportedVariant is returned for tracker names this build cannot create
var ErrUnsupportedVariant = errors.New("unsupported tracker variant")

// OpenCV loads the GOTURN network from these files in the working directory.
var goturnModelFiles = []string{"goturn.prototxt", "goturn.caffemodel"}

var constructors = map[string]func() gocv.Tracker{
	"MIL":    func() gocv.Tracker { return gocv.NewTrackerMIL() },
	"GOTURN": func() gocv.Tracker { return gocv.NewTrackerGOTURN() },
	"KCF":    func() gocv.Tracker { return contrib.NewTrackerKCF() },
	"CSRT":   func() gocv.Tracker { return contrib.NewTrackerCSRT() },
}

// OpenCV 4 only ships these in the legacy module, which gocv does not bind.
var legacy = map[string]bool{
	"BOOSTING":   true,
	"TLD":        true,
	"MEDIANFLOW": true,
	"MOSSE":      true,
}

// Variants returns the names accepted by New, sorted
func Variants() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the tracker variant with the given name (case-insensitive)
func New(name string) (tracking.Tracker, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	ctor, ok := constructors[key]
	if !ok {
		if legacy[key] {
			return nil, errors.Wrapf(ErrUnsupportedVariant, "%s requires the OpenCV legacy tracking module", key)
		}
		return nil, errors.Wrapf(ErrUnsupportedVariant, "%q (available: %s)", name, strings.Join(Variants(), ", "))
	}
	if key == "GOTURN" {
		for _, f := range goturnModelFiles {
			if _, err := os.Stat(f); err != nil {
				return nil, errors.Wrapf(types.ErrResourceUnavailable, "GOTURN model file %s", f)
			}
		}
	}
	return &cvTracker{name: key, tracker: ctor()}, nil
}

type cvTracker struct {
	name    string
	tracker gocv.Tracker
}

func (t *cvTracker) Init(frame types.Frame, region types.Region) error {
	mat, err := cvmat.ToMat(frame)
	if err != nil {
		return err
	}
	defer mat.Close()

	if !t.tracker.Init(mat, region.Rect()) {
		return errors.Errorf("%s tracker rejected initial region %+v", t.name, region)
	}
	return nil
}

func (t *cvTracker) Update(frame types.Frame) (types.Region, bool, error) {
	mat, err := cvmat.ToMat(frame)
	if err != nil {
		return types.Region{}, false, err
	}
	defer mat.Close()

	rect, ok := t.tracker.Update(mat)
	if !ok {
		return types.Region{}, false, nil
	}
	return types.RegionFromRect(rect), true, nil
}

func (t *cvTracker) Close() error {
	if t.tracker == nil {
		return nil
	}
	err := t.tracker.Close()
	t.tracker = nil
	return err
}
