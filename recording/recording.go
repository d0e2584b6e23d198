// Package recording writes annotated frames to a video file.
package recording

import (
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"roitracker/cvmat"
	"roitracker/types"
)

// Recorder is a lazily opened video writer. The output size is fixed by the
// first Open call; frames of another size are resized to it.
type Recorder struct {
	path   string
	config types.VideoConfig
	logger *slog.Logger

	mu        sync.Mutex
	writer    *gocv.VideoWriter
	size      image.Point
	codec     string
	startTime time.Time
	frames    int
	closed    bool
}

// NewRecorder creates a recorder that will write to path
func NewRecorder(path string, config types.VideoConfig, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{path: path, config: config, logger: logger}
}

// Open creates the video file. Calls after the first successful one are no-ops.
func (r *Recorder) Open(width, height int, fps float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writer != nil {
		return nil
	}
	if r.closed {
		return errors.New("recorder already closed")
	}
	if width <= 0 || height <= 0 {
		return errors.Wrapf(types.ErrInvalidInput, "output size %dx%d", width, height)
	}
	if fps <= 0 {
		fps = r.config.FPS
	}

	// Try different codecs for better compatibility
	var lastErr error
	for _, fourcc := range r.config.Codecs {
		vw, err := gocv.VideoWriterFile(r.path, fourcc, fps, width, height, true)
		if err != nil {
			lastErr = err
			continue
		}
		if !vw.IsOpened() {
			_ = vw.Close()
			lastErr = errors.Errorf("codec %s not available", fourcc)
			continue
		}
		r.writer = vw
		r.codec = fourcc
		break
	}
	if r.writer == nil {
		return errors.Wrapf(types.ErrResourceUnavailable, "could not create video writer %s with any codec: %v", r.path, lastErr)
	}

	r.size = image.Pt(width, height)
	r.startTime = time.Now()
	r.logger.Info("recording started", "path", r.path, "codec", r.codec, "width", width, "height", height, "fps", fps)
	return nil
}

// IsOpen reports whether the writer has been opened and not yet closed
func (r *Recorder) IsOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writer != nil
}

// Write appends a frame to the video
func (r *Recorder) Write(frame types.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writer == nil {
		return errors.New("recorder is not open")
	}

	mat, err := cvmat.ToMat(frame)
	if err != nil {
		return err
	}
	defer mat.Close()

	if mat.Channels() != 3 {
		code := gocv.ColorGrayToBGR
		if mat.Channels() == 4 {
			code = gocv.ColorBGRAToBGR
		}
		if err := gocv.CvtColor(mat, &mat, code); err != nil {
			return errors.Wrap(err, "convert frame to BGR")
		}
	}

	if mat.Cols() != r.size.X || mat.Rows() != r.size.Y {
		if err := gocv.Resize(mat, &mat, r.size, 0, 0, gocv.InterpolationLinear); err != nil {
			return errors.Wrapf(err, "resize frame to %dx%d", r.size.X, r.size.Y)
		}
	}

	if err := r.writer.Write(mat); err != nil {
		return errors.Wrap(err, "write frame")
	}
	r.frames++
	return nil
}

// Duration returns how long the recording has been running
func (r *Recorder) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writer == nil {
		return 0
	}
	return time.Since(r.startTime)
}

// Close finalizes the video file. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.writer == nil {
		return nil
	}
	err := r.writer.Close()
	r.writer = nil
	r.logger.Info("recording stopped", "path", r.path, "frames", r.frames)
	if err != nil {
		return errors.Wrap(err, "error closing video writer")
	}
	return nil
}
