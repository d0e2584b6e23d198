package types

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/pkg/errors"
)

// SessionState is the state of the interactive tracking session
type SessionState int

const (
	StateIdle SessionState = iota
	StateAwaitingConfirmation
	StateTracking
	StateTerminated
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingConfirmation:
		return "awaiting-confirmation"
	case StateTracking:
		return "tracking"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// SessionConfig holds the options recognized by a tracking session
type SessionConfig struct {
	// Tracker selects the tracker variant by name (MIL, KCF, CSRT, GOTURN)
	Tracker string `yaml:"tracker"`
	// ROIPercent is the click-centred region size as a percentage of the frame dimensions
	ROIPercent float64 `yaml:"roi_percent"`
	// CustomROI switches from click-centred regions to operator-drawn rectangles
	CustomROI bool `yaml:"custom_roi"`
	// ConfirmCustomROI keeps the confirm/reject step for operator-drawn rectangles
	ConfirmCustomROI bool `yaml:"confirm_custom_roi"`
	OutputPath       string `yaml:"output"`
	LogPath          string `yaml:"log"`
	// MaxLostFrames returns the session to region selection after this many
	// consecutive losses. Zero keeps tracking regardless of loss.
	MaxLostFrames int    `yaml:"max_lost_frames"`
	Debug         bool   `yaml:"debug"`
	MetricsAddr   string `yaml:"metrics_addr"`
}

// DefaultSessionConfig returns the default session configuration
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Tracker:    "MIL",
		ROIPercent: 50,
		OutputPath: "output.mp4",
		LogPath:    "log.csv",
	}
}

// Validate fills in empty paths and rejects out-of-range values
func (c *SessionConfig) Validate() error {
	def := DefaultSessionConfig()
	c.Tracker = strings.ToUpper(strings.TrimSpace(c.Tracker))
	if c.Tracker == "" {
		c.Tracker = def.Tracker
	}
	if c.OutputPath == "" {
		c.OutputPath = def.OutputPath
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	}
	if c.ROIPercent <= 0 || c.ROIPercent > 100 {
		return errors.Errorf("roi_percent must be in (0,100], got %v", c.ROIPercent)
	}
	if c.MaxLostFrames < 0 {
		return errors.Errorf("max_lost_frames must not be negative, got %d", c.MaxLostFrames)
	}
	return nil
}

// VideoConfig holds video recording configuration
type VideoConfig struct {
	// FPS is used when the source does not report a frame rate
	FPS    float64  `yaml:"fps"`
	Codecs []string `yaml:"codecs"`
}

// DefaultVideoConfig returns the default video configuration
func DefaultVideoConfig() VideoConfig {
	return VideoConfig{
		FPS:    30.0,
		Codecs: []string{"mp4v", "avc1", "H264", "MJPG"},
	}
}

// Validate restores defaults for unusable values
func (c *VideoConfig) Validate() error {
	def := DefaultVideoConfig()
	if c.FPS <= 0 {
		c.FPS = def.FPS
	}
	if len(c.Codecs) == 0 {
		c.Codecs = def.Codecs
	}
	for _, codec := range c.Codecs {
		if len(codec) != 4 {
			return errors.Errorf("codec %q is not a fourcc", codec)
		}
	}
	return nil
}

// UIConfig holds display configuration constants
type UIConfig struct {
	WindowName     string  `yaml:"window_name"`
	KeyDelayMs     int     `yaml:"key_delay_ms"`
	HelpFontSize   float64 `yaml:"help_font_size"`
	StatusFontSize float64 `yaml:"status_font_size"`
	HelpOffsetY    int     `yaml:"help_offset_y"`
	MaxDebugLogs   int     `yaml:"max_debug_logs"`
	DebugFontSize  float64 `yaml:"debug_font_size"`
	// RegionThickness is the outline width of the rendered region in pixels
	RegionThickness int `yaml:"region_thickness"`
}

// DefaultUIConfig returns the default UI configuration
func DefaultUIConfig() UIConfig {
	return UIConfig{
		WindowName:      "Tracking window",
		KeyDelayMs:      1,
		HelpFontSize:    0.9,
		StatusFontSize:  1.5,
		HelpOffsetY:     60,
		MaxDebugLogs:    10,
		DebugFontSize:   0.8,
		RegionThickness: 2,
	}
}

// Validate restores defaults for unusable values
func (c *UIConfig) Validate() error {
	def := DefaultUIConfig()
	if c.WindowName == "" {
		c.WindowName = def.WindowName
	}
	if c.KeyDelayMs <= 0 {
		c.KeyDelayMs = def.KeyDelayMs
	}
	if c.HelpFontSize <= 0 {
		c.HelpFontSize = def.HelpFontSize
	}
	if c.StatusFontSize <= 0 {
		c.StatusFontSize = def.StatusFontSize
	}
	if c.MaxDebugLogs <= 0 {
		c.MaxDebugLogs = def.MaxDebugLogs
	}
	if c.DebugFontSize <= 0 {
		c.DebugFontSize = def.DebugFontSize
	}
	if c.RegionThickness <= 0 {
		c.RegionThickness = def.RegionThickness
	}
	return nil
}

// Overlay colors
var (
	RegionColor = color.RGBA{G: 255, A: 255}
	Blue        = color.RGBA{B: 255, A: 255}
	Red         = color.RGBA{R: 255, A: 255}
	Green       = color.RGBA{G: 255, A: 255}
	Yellow      = color.RGBA{R: 255, G: 255, A: 255}
	White       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black       = color.RGBA{A: 120}
)
