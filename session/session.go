// Package session runs the interactive region selection and tracking loop.
package session

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"roitracker/input"
	"roitracker/metrics"
	"roitracker/tracking"
	"roitracker/types"
	"roitracker/utils"
)

// FrameSource is a pull-based stream of frames. Frame returns io.EOF once the
// stream is exhausted. Close must be idempotent.
type FrameSource interface {
	Open() error
	Frame() (types.Frame, error)
	FPS() float64
	Close() error
}

// FrameSink writes rendered frames. Open fixes the output size and is called
// at most once per session.
type FrameSink interface {
	Open(width, height int, fps float64) error
	Write(frame types.Frame) error
	Close() error
}

// EventLog is an append-only record of click and track events
type EventLog interface {
	Append(e types.Event) error
	Close() error
}

// Display shows the rendered frame to the operator
type Display interface {
	Show(frame types.Frame, state types.SessionState)
}

// Renderer draws the region outline on a copy of frame. The input frame must
// not be modified.
type Renderer interface {
	Render(frame types.Frame, region types.Region) (types.Frame, error)
}

// Deps are the collaborators owned by a session. Display, Logger and Metrics
// are optional.
type Deps struct {
	Source   FrameSource
	Delegate *tracking.Delegate
	Sink     FrameSink
	Log      EventLog
	Input    input.Source
	Renderer Renderer
	Display  Display
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// TransitionListener is called after every state change
type TransitionListener func(prev, next types.SessionState)

// Controller drives one tracking session from the first frame to termination.
// It is not safe for concurrent use; Run owns it for its whole lifetime.
type Controller struct {
	id       string
	cfg      types.SessionConfig
	source   FrameSource
	tracker  *tracking.Delegate
	sink     FrameSink
	events   EventLog
	input    input.Source
	renderer Renderer
	display  Display
	logger   *slog.Logger
	metrics  *metrics.Metrics

	listeners []TransitionListener

	state   types.SessionState
	started bool

	// anchor is the frame regions are selected on. It is never drawn on.
	anchor        types.Frame
	anchorIndex   int
	anchorWritten bool

	region    types.Region
	hasRegion bool
	// pending is the click event of the proposed region. It is written when
	// tracking starts rather than on the click itself, so rejected proposals
	// leave no row and click frames stay strictly increasing.
	pending *types.Event

	frameIndex int
	lostStreak int

	sinkOpen     bool
	sinkClosed   bool
	logClosed    bool
	sourceClosed bool
}

// New validates the configuration and collaborators and returns a controller
// in the idle state.
func New(cfg types.SessionConfig, deps Deps) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid session config")
	}
	switch {
	case deps.Source == nil:
		return nil, errors.New("session requires a frame source")
	case deps.Delegate == nil:
		return nil, errors.New("session requires a tracker delegate")
	case deps.Sink == nil:
		return nil, errors.New("session requires a frame sink")
	case deps.Log == nil:
		return nil, errors.New("session requires an event log")
	case deps.Input == nil:
		return nil, errors.New("session requires an operator input source")
	case deps.Renderer == nil:
		return nil, errors.New("session requires a region renderer")
	}

	id := uuid.NewString()
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		id:       id,
		cfg:      cfg,
		source:   deps.Source,
		tracker:  deps.Delegate,
		sink:     deps.Sink,
		events:   deps.Log,
		input:    deps.Input,
		renderer: deps.Renderer,
		display:  deps.Display,
		logger:   logger.With("session", id),
		metrics:  deps.Metrics,
		state:    types.StateIdle,
	}, nil
}

// ID returns the unique session id used in log records
func (c *Controller) ID() string {
	return c.id
}

// State returns the current session state
func (c *Controller) State() types.SessionState {
	return c.state
}

// FrameIndex returns the number of frames pulled since tracking began
func (c *Controller) FrameIndex() int {
	return c.frameIndex
}

// OnTransition registers a listener for state changes. It must be called before Run.
func (c *Controller) OnTransition(l TransitionListener) {
	c.listeners = append(c.listeners, l)
}

// Run opens the frame source, shows the first frame and processes operator
// input and frames until the operator quits, the source is exhausted or an
// unrecoverable error occurs. Cancelling ctx is treated as a quit. Every
// resource owned by the session is released before Run returns.
func (c *Controller) Run(ctx context.Context) (err error) {
	if c.started {
		return errors.New("session already ran")
	}
	c.started = true

	defer func() {
		if cerr := c.shutdown(); err == nil {
			err = cerr
		}
	}()

	if err := c.source.Open(); err != nil {
		return errors.Wrap(err, "open frame source")
	}
	first, err := c.source.Frame()
	if errors.Is(err, io.EOF) {
		return errors.Wrap(types.ErrResourceUnavailable, "video has no frames")
	}
	if err != nil {
		return errors.Wrap(err, "read first frame")
	}

	c.anchor = first
	c.logger.Info("session started",
		"tracker", c.cfg.Tracker, "width", first.Width, "height", first.Height,
		"roi_percent", c.cfg.ROIPercent, "custom_roi", c.cfg.CustomROI)
	c.metrics.SetState(c.state)
	c.show(c.anchor)

	for c.state != types.StateTerminated {
		var stepErr error
		switch c.state {
		case types.StateIdle:
			stepErr = c.stepIdle(ctx)
		case types.StateAwaitingConfirmation:
			stepErr = c.stepAwaiting(ctx)
		case types.StateTracking:
			stepErr = c.stepTracking(ctx)
		}
		if stepErr != nil {
			return stepErr
		}
	}
	return nil
}

func (c *Controller) stepIdle(ctx context.Context) error {
	ev := c.next(ctx)
	switch ev.Kind {
	case input.Quit:
		c.transition(types.StateTerminated)
		return nil
	case input.Click, input.Select:
		return c.propose(ev)
	default:
		c.logger.Debug("ignoring input without a region", "input", ev.Kind.String())
		return nil
	}
}

func (c *Controller) stepAwaiting(ctx context.Context) error {
	ev := c.next(ctx)
	switch ev.Kind {
	case input.Quit:
		c.transition(types.StateTerminated)
		return nil
	case input.Confirm:
		return c.startTracking()
	case input.Reject:
		c.hasRegion = false
		c.pending = nil
		c.logger.Info("region rejected")
		c.transition(types.StateIdle)
		c.show(c.anchor)
		return nil
	case input.Click, input.Select:
		return c.propose(ev)
	default:
		return nil
	}
}

// propose turns a click or drawn rectangle into a region on the anchor frame
func (c *Controller) propose(ev input.Event) error {
	w, h := c.anchor.Width, c.anchor.Height

	var region types.Region
	switch {
	case ev.Kind == input.Select:
		region = utils.RegionFromSelection(ev.Rect, w, h)
	case c.cfg.CustomROI:
		c.logger.Debug("ignoring click, draw a region instead")
		return nil
	default:
		region = utils.RegionAroundPoint(ev.Point, c.cfg.ROIPercent, w, h)
	}
	if region.Empty() {
		c.logger.Warn("ignoring empty region", "input", ev.Kind.String())
		return nil
	}

	if err := c.tracker.SetRegion(region); err != nil {
		return errors.Wrap(err, "set region")
	}
	c.region = region
	c.hasRegion = true
	c.pending = &types.Event{
		Frame:  c.anchorIndex,
		Kind:   types.EventClick,
		Region: region.Normalize(w, h),
	}
	c.logger.Info("region proposed", "x", region.X, "y", region.Y, "width", region.Width, "height", region.Height)

	if ev.Kind == input.Select && c.cfg.CustomROI && !c.cfg.ConfirmCustomROI {
		return c.startTracking()
	}
	// the display reads the state to decide how keys map to events
	c.transition(types.StateAwaitingConfirmation)
	c.show(c.render(c.anchor, region))
	return nil
}

// startTracking opens the sink, anchors the tracker on the anchor frame and
// commits the pending click event.
func (c *Controller) startTracking() error {
	if !c.hasRegion {
		return nil
	}
	if err := c.openSink(); err != nil {
		return err
	}

	region, _, err := c.tracker.Track(c.anchor)
	if err != nil {
		return errors.Wrap(err, "anchor tracker")
	}
	if c.pending != nil {
		if err := c.emit(*c.pending); err != nil {
			return err
		}
		c.pending = nil
	}

	rendered := c.render(c.anchor, utils.ClampRegion(region, c.anchor.Width, c.anchor.Height))
	if !c.anchorWritten {
		if err := c.write(rendered); err != nil {
			return err
		}
		c.anchorWritten = true
	}
	c.lostStreak = 0
	c.transition(types.StateTracking)
	c.show(rendered)
	return nil
}

func (c *Controller) openSink() error {
	if c.sinkOpen {
		return nil
	}
	if err := c.sink.Open(c.anchor.Width, c.anchor.Height, c.source.FPS()); err != nil {
		return errors.Wrap(err, "open frame sink")
	}
	c.sinkOpen = true
	return nil
}

func (c *Controller) stepTracking(ctx context.Context) error {
	if c.quitRequested(ctx) {
		c.logger.Info("tracking stopped by operator", "frame", c.frameIndex)
		c.transition(types.StateTerminated)
		return nil
	}

	frame, err := c.source.Frame()
	if errors.Is(err, io.EOF) {
		c.logger.Info("video finished", "frames", c.frameIndex)
		c.transition(types.StateTerminated)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read frame")
	}
	c.frameIndex++
	c.metrics.FrameRead()

	region, ok, err := c.tracker.Track(frame)
	if errors.Is(err, types.ErrInvalidInput) {
		c.metrics.InvalidFrame()
		c.logger.Warn("skipping invalid frame", "frame", c.frameIndex, "error", err)
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "track frame %d", c.frameIndex)
	}
	c.metrics.TrackResult(ok)

	rendered := frame
	if ok {
		region = utils.ClampRegion(region, frame.Width, frame.Height)
		c.region = region
		c.lostStreak = 0
		rendered = c.render(frame, region)
		if err := c.emit(types.Event{
			Frame:  c.frameIndex,
			Kind:   types.EventTrack,
			Region: region.Normalize(frame.Width, frame.Height),
		}); err != nil {
			return err
		}
	} else {
		c.lostStreak++
		c.logger.Debug("tracker lost the region", "frame", c.frameIndex, "consecutive", c.lostStreak)
	}

	if err := c.write(rendered); err != nil {
		return err
	}
	c.show(rendered)

	if !ok && c.cfg.MaxLostFrames > 0 && c.lostStreak >= c.cfg.MaxLostFrames {
		c.reselect(frame)
	}
	return nil
}

// reselect returns to idle with frame as the new anchor
func (c *Controller) reselect(frame types.Frame) {
	c.logger.Info("region lost, select a new one", "frame", c.frameIndex, "consecutive", c.lostStreak)
	c.metrics.Reselection()
	c.anchor = frame
	c.anchorIndex = c.frameIndex
	c.anchorWritten = true
	c.hasRegion = false
	c.lostStreak = 0
	c.transition(types.StateIdle)
	c.show(c.anchor)
}

// next blocks for the next operator event. Cancellation reads as Quit.
func (c *Controller) next(ctx context.Context) input.Event {
	ev, err := c.input.Next(ctx)
	if err != nil {
		c.logger.Info("input closed", "error", err)
		return input.Event{Kind: input.Quit}
	}
	return ev
}

// quitRequested drains pending operator input once per tracking iteration
func (c *Controller) quitRequested(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	for {
		ev, ok := c.input.Poll()
		if !ok {
			return false
		}
		if ev.Kind == input.Quit {
			return true
		}
		c.logger.Debug("ignoring input while tracking", "input", ev.Kind.String())
	}
}

func (c *Controller) emit(e types.Event) error {
	if err := c.events.Append(e); err != nil {
		return errors.Wrap(err, "append event")
	}
	c.metrics.Event(e.Kind)
	return nil
}

func (c *Controller) write(frame types.Frame) error {
	if !c.sinkOpen {
		return nil
	}
	if err := c.sink.Write(frame); err != nil {
		return errors.Wrapf(err, "write frame %d", c.frameIndex)
	}
	c.metrics.FrameWritten()
	return nil
}

// render falls back to the plain frame when drawing fails
func (c *Controller) render(frame types.Frame, region types.Region) types.Frame {
	out, err := c.renderer.Render(frame, region)
	if err != nil {
		c.logger.Warn("error drawing region", "frame", c.frameIndex, "error", err)
		return frame
	}
	return out
}

func (c *Controller) show(frame types.Frame) {
	if c.display != nil {
		c.display.Show(frame, c.state)
	}
}

func (c *Controller) transition(next types.SessionState) {
	prev := c.state
	if prev == next {
		return
	}
	c.state = next
	c.metrics.SetState(next)
	c.logger.Debug("session state transition", "from", prev.String(), "to", next.String())
	for _, l := range c.listeners {
		l(prev, next)
	}
}

// shutdown releases every resource exactly once and reports the first error
func (c *Controller) shutdown() error {
	var first error
	keep := func(err error, what string) {
		if err == nil {
			return
		}
		if first == nil {
			first = errors.Wrap(err, what)
			return
		}
		c.logger.Error("cleanup failed", "resource", what, "error", err)
	}

	if c.sinkOpen && !c.sinkClosed {
		c.sinkClosed = true
		keep(c.sink.Close(), "close frame sink")
	}
	if !c.logClosed {
		c.logClosed = true
		keep(c.events.Close(), "close event log")
	}
	if !c.sourceClosed {
		c.sourceClosed = true
		keep(c.source.Close(), "close frame source")
	}
	keep(c.tracker.Close(), "close tracker")

	c.transition(types.StateTerminated)
	c.logger.Info("session finished", "frames", c.frameIndex)
	return first
}
