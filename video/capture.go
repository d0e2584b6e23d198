// Package video reads frames from a file or camera with OpenCV.
package video

import (
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"roitracker/cvmat"
	"roitracker/types"
)

// Capture is a pull-based frame source backed by gocv.VideoCapture
type Capture struct {
	device     string
	defaultFPS float64
	logger     *slog.Logger

	capture *gocv.VideoCapture
	mat     gocv.Mat
}

// NewCapture creates a source for device, which is either a video file path
// or a numeric camera id. defaultFPS is reported when the device has no rate.
func NewCapture(device string, defaultFPS float64, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capture{device: device, defaultFPS: defaultFPS, logger: logger}
}

// Open opens the underlying device
func (c *Capture) Open() error {
	if c.capture != nil {
		return nil
	}

	var capture *gocv.VideoCapture
	var err error
	if _, statErr := os.Stat(c.device); statErr == nil {
		capture, err = gocv.VideoCaptureFile(c.device)
	} else if id, convErr := strconv.Atoi(c.device); convErr == nil {
		capture, err = gocv.VideoCaptureDevice(id)
	} else {
		return errors.Wrapf(types.ErrResourceUnavailable, "video %s: %v", c.device, statErr)
	}
	if err != nil {
		return errors.Wrapf(types.ErrResourceUnavailable, "open video %s: %v", c.device, err)
	}
	if !capture.IsOpened() {
		_ = capture.Close()
		return errors.Wrapf(types.ErrResourceUnavailable, "video %s is not readable", c.device)
	}

	c.capture = capture
	c.mat = gocv.NewMat()
	c.logger.Info("video opened", "device", c.device, "fps", c.FPS())
	return nil
}

// Frame returns the next frame, or io.EOF when the stream is exhausted
func (c *Capture) Frame() (types.Frame, error) {
	if c.capture == nil {
		return types.Frame{}, errors.New("no video is currently open")
	}
	if ok := c.capture.Read(&c.mat); !ok || c.mat.Empty() {
		return types.Frame{}, io.EOF
	}
	return cvmat.FromMat(c.mat)
}

// FPS returns the stream frame rate
func (c *Capture) FPS() float64 {
	if c.capture != nil {
		if fps := c.capture.Get(gocv.VideoCaptureFPS); fps > 0 {
			return fps
		}
	}
	if c.defaultFPS > 0 {
		return c.defaultFPS
	}
	return types.DefaultVideoConfig().FPS
}

// Close releases the device. It is safe to call more than once.
func (c *Capture) Close() error {
	if c.capture == nil {
		return nil
	}
	_ = c.mat.Close()
	err := c.capture.Close()
	c.capture = nil
	c.logger.Info("video closed", "device", c.device)
	return err
}
