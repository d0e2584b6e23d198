// Package metrics exposes tracking session counters to Prometheus.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roitracker/types"
)

// Metrics holds the session counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	FramesRead    atomic.Uint64
	FramesTracked atomic.Uint64
	FramesLost    atomic.Uint64
	InvalidFrames atomic.Uint64
	FramesWritten atomic.Uint64
	ClickEvents   atomic.Uint64
	TrackEvents   atomic.Uint64
	Reselections  atomic.Uint64
	State         atomic.Int64

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	counters := []struct {
		name string
		help string
		v    *atomic.Uint64
	}{
		{"roitracker_frames_read_total", "Frames pulled from the video source while tracking", &m.FramesRead},
		{"roitracker_frames_tracked_total", "Frames on which the tracker located the region", &m.FramesTracked},
		{"roitracker_frames_lost_total", "Frames on which the tracker reported loss", &m.FramesLost},
		{"roitracker_invalid_frames_total", "Frames rejected as invalid input", &m.InvalidFrames},
		{"roitracker_frames_written_total", "Frames written to the output video", &m.FramesWritten},
		{"roitracker_click_events_total", "Click events written to the event log", &m.ClickEvents},
		{"roitracker_track_events_total", "Track events written to the event log", &m.TrackEvents},
		{"roitracker_reselections_total", "Returns to region selection after repeated loss", &m.Reselections},
	}
	for _, c := range counters {
		v := c.v
		m.registry.MustRegister(prometheus.NewCounterFunc(
			prometheus.CounterOpts{Name: c.name, Help: c.help},
			func() float64 { return float64(v.Load()) },
		))
	}

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "roitracker_session_state",
			Help: "Session state (0=idle, 1=awaiting-confirmation, 2=tracking, 3=terminated)",
		},
		func() float64 { return float64(m.State.Load()) },
	))
}

// Registry returns the Prometheus registry holding the session collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// FrameRead counts a frame pulled while tracking
func (m *Metrics) FrameRead() {
	if m == nil {
		return
	}
	m.FramesRead.Add(1)
}

// TrackResult counts a tracked or lost frame
func (m *Metrics) TrackResult(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.FramesTracked.Add(1)
	} else {
		m.FramesLost.Add(1)
	}
}

// InvalidFrame counts a frame rejected by the tracker delegate
func (m *Metrics) InvalidFrame() {
	if m == nil {
		return
	}
	m.InvalidFrames.Add(1)
}

// FrameWritten counts a frame written to the output video
func (m *Metrics) FrameWritten() {
	if m == nil {
		return
	}
	m.FramesWritten.Add(1)
}

// Event counts an event written to the event log
func (m *Metrics) Event(kind types.EventKind) {
	if m == nil {
		return
	}
	switch kind {
	case types.EventClick:
		m.ClickEvents.Add(1)
	case types.EventTrack:
		m.TrackEvents.Add(1)
	}
}

// Reselection counts a return to region selection
func (m *Metrics) Reselection() {
	if m == nil {
		return
	}
	m.Reselections.Add(1)
}

// SetState records the current session state
func (m *Metrics) SetState(s types.SessionState) {
	if m == nil {
		return
	}
	m.State.Store(int64(s))
}
