// Package ui shows session frames in a HighGUI window and turns mouse and
// keyboard activity into operator input.
package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"roitracker/cvmat"
	"roitracker/input"
	"roitracker/types"
)

// HighGUI mouse event for a left button press
const eventLeftButtonDown = 1

// RecordingClock reports whether output is being recorded and for how long
type RecordingClock interface {
	IsOpen() bool
	Duration() time.Duration
}

// Options configure a Window. Debug and Recording are optional.
type Options struct {
	Config    types.UIConfig
	CustomROI bool
	Debug     *types.DebugLog
	Recording RecordingClock
	Logger    *slog.Logger
}

// Window is a session display and operator input source backed by one
// HighGUI window. All methods must be called from the goroutine that runs the
// session.
type Window struct {
	window    *gocv.Window
	config    types.UIConfig
	customROI bool
	debug     *types.DebugLog
	recording RecordingClock
	logger    *slog.Logger

	state types.SessionState
	last  types.Frame

	// mouse callbacks fire from inside WaitKey
	mu     sync.Mutex
	clicks []image.Point
}

// NewWindow opens the window and installs the mouse handler
func NewWindow(opts Options) *Window {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := &Window{
		window:    gocv.NewWindow(opts.Config.WindowName),
		config:    opts.Config,
		customROI: opts.CustomROI,
		debug:     opts.Debug,
		recording: opts.Recording,
		logger:    logger,
	}
	if !w.customROI {
		w.window.SetMouseHandler(w.onMouse, nil)
	}
	return w
}

func (w *Window) onMouse(event, x, y, _ int, _ interface{}) {
	if event != eventLeftButtonDown {
		return
	}
	w.mu.Lock()
	w.clicks = append(w.clicks, image.Pt(x, y))
	w.mu.Unlock()
}

func (w *Window) popClick() (image.Point, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.clicks) == 0 {
		return image.Point{}, false
	}
	p := w.clicks[0]
	w.clicks = w.clicks[1:]
	return p, true
}

// Show implements session.Display
func (w *Window) Show(frame types.Frame, state types.SessionState) {
	w.state = state
	w.last = frame
	w.redraw()
}

func (w *Window) redraw() {
	if !w.last.Valid() {
		return
	}
	mat, err := cvmat.ToMat(w.last)
	if err != nil {
		w.logger.Warn("cannot display frame", "error", err)
		return
	}
	defer mat.Close()

	w.drawStatusMessage(&mat)
	w.drawRecordingStatus(&mat)
	w.drawHelpText(&mat)
	w.drawDebugLogs(&mat)

	w.window.IMShow(mat)
}

// Next implements input.Source. In custom region mode an idle session asks
// the operator to draw a rectangle; cancelling the selection quits.
func (w *Window) Next(ctx context.Context) (input.Event, error) {
	if w.customROI && w.state == types.StateIdle && w.last.Valid() {
		return w.selectRegion()
	}
	for {
		if err := ctx.Err(); err != nil {
			return input.Event{}, err
		}
		if ev, ok := w.Poll(); ok {
			return ev, nil
		}
	}
}

// Poll implements input.Source. It pumps the HighGUI event loop once.
func (w *Window) Poll() (input.Event, bool) {
	if p, ok := w.popClick(); ok {
		return input.ClickAt(p.X, p.Y), true
	}
	key := w.window.WaitKey(w.config.KeyDelayMs)
	if p, ok := w.popClick(); ok {
		return input.ClickAt(p.X, p.Y), true
	}
	ev, ok := input.KeyToEvent(key, w.state)
	if !ok {
		return input.Event{}, false
	}
	if ev.Kind == input.ToggleDebug {
		w.toggleDebug()
		return input.Event{}, false
	}
	return ev, true
}

func (w *Window) selectRegion() (input.Event, error) {
	mat, err := cvmat.ToMat(w.last)
	if err != nil {
		return input.Event{}, err
	}
	defer mat.Close()

	rect := w.window.SelectROI(mat)
	if rect.Empty() {
		w.logger.Info("region selection cancelled")
		return input.Event{Kind: input.Quit}, nil
	}
	return input.SelectRect(rect), nil
}

func (w *Window) toggleDebug() {
	if w.debug == nil {
		return
	}
	enabled := !w.debug.IsEnabled()
	w.debug.SetEnabled(enabled)
	if enabled {
		w.logger.Info("debug mode enabled")
	}
	w.redraw()
}

// Close destroys the window
func (w *Window) Close() error {
	return w.window.Close()
}

func (w *Window) putText(mat *gocv.Mat, text string, at image.Point, scale float64, c color.RGBA, thickness int) {
	if err := gocv.PutText(mat, text, at, gocv.FontHersheyPlain, scale, c, thickness); err != nil {
		w.logger.Warn("error adding text", "error", err)
	}
}

func (w *Window) drawStatusMessage(mat *gocv.Mat) {
	var text string
	var c color.RGBA

	switch w.state {
	case types.StateIdle:
		if w.customROI {
			text = "Draw a box around the object, then press ENTER or SPACE"
		} else {
			text = "Click on the object to track"
		}
		c = types.Yellow
	case types.StateAwaitingConfirmation:
		text = "Track this region? y/ENTER: confirm, n/ESC: cancel"
		c = types.Yellow
	case types.StateTracking:
		text = "Tracking active"
		c = types.Green
	default:
		text = "Finished"
		c = types.Red
	}
	w.putText(mat, text, image.Pt(10, 30), w.config.StatusFontSize, c, 2)
}

func (w *Window) drawRecordingStatus(mat *gocv.Mat) {
	if w.recording == nil || !w.recording.IsOpen() {
		return
	}
	d := w.recording.Duration()
	text := fmt.Sprintf("REC %02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
	w.putText(mat, text, image.Pt(10, 60), w.config.StatusFontSize, types.Red, 2)
}

func (w *Window) drawHelpText(mat *gocv.Mat) {
	helpY := mat.Rows() - w.config.HelpOffsetY

	var text string
	switch w.state {
	case types.StateAwaitingConfirmation:
		text = "y/Enter=track  n/Esc=cancel  click=reselect  q=quit"
	case types.StateTracking:
		text = "d=debug  q/Esc=quit"
	default:
		text = "click=select  d=debug  q/Esc=quit"
	}

	size := gocv.GetTextSize(text, gocv.FontHersheyPlain, w.config.HelpFontSize, 1)
	bg := image.Rect(5, helpY-5, size.X+15, helpY+size.Y+5)
	if err := gocv.Rectangle(mat, bg, types.Black, -1); err != nil {
		w.logger.Warn("error drawing help background", "error", err)
	}
	w.putText(mat, text, image.Pt(10, helpY+10), w.config.HelpFontSize, types.White, 1)
}

func (w *Window) drawDebugLogs(mat *gocv.Mat) {
	if w.debug == nil || !w.debug.IsEnabled() {
		return
	}
	logs := w.debug.Logs()
	if len(logs) == 0 {
		return
	}

	// right side of the frame
	frameWidth := mat.Cols()
	startY := 100
	lineHeight := 20
	maxWidth := 400
	padding := 10

	height := len(logs)*lineHeight + padding*2
	bg := image.Rect(frameWidth-maxWidth-padding, startY-padding, frameWidth-padding, startY+height-padding)
	if err := gocv.Rectangle(mat, bg, types.Black, -1); err != nil {
		w.logger.Warn("error drawing debug background", "error", err)
	}

	header := fmt.Sprintf("Debug Logs (%d):", len(logs))
	w.putText(mat, header, image.Pt(frameWidth-maxWidth, startY), w.config.DebugFontSize, types.Yellow, 1)

	for i, msg := range logs {
		if len(msg) > 50 {
			msg = msg[:47] + "..."
		}
		y := startY + (i+1)*lineHeight
		w.putText(mat, msg, image.Pt(frameWidth-maxWidth, y), w.config.DebugFontSize, types.White, 1)
	}
}

// PrintInstructions writes the control summary shown at startup
func PrintInstructions(out io.Writer, customROI bool) {
	fmt.Fprintln(out, "Controls:")
	if customROI {
		fmt.Fprintln(out, "- Draw a box around the object, then press ENTER or SPACE (c cancels and quits)")
	} else {
		fmt.Fprintln(out, "- Click on the object to propose a region")
	}
	fmt.Fprintln(out, "- Press 'y' or ENTER to start tracking the proposed region, 'n' or ESC to pick again")
	fmt.Fprintln(out, "- Press 'd' to toggle debug mode (shows the last log messages on screen)")
	fmt.Fprintln(out, "- Press 'q' or ESC to quit")
}
