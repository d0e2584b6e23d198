package types

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// DebugLog is an slog.Handler that forwards records to another handler and,
// while enabled, keeps the most recent messages for the on-screen debug panel.
type DebugLog struct {
	next slog.Handler
	buf  *debugBuffer
}

type debugBuffer struct {
	mu      sync.Mutex
	enabled bool
	maxLogs int
	logs    []string
}

// NewDebugLog wraps next, keeping up to maxLogs messages
func NewDebugLog(next slog.Handler, maxLogs int) *DebugLog {
	if maxLogs <= 0 {
		maxLogs = DefaultUIConfig().MaxDebugLogs
	}
	return &DebugLog{next: next, buf: &debugBuffer{maxLogs: maxLogs}}
}

// SetEnabled turns capturing on or off. Turning it off clears the buffer.
func (d *DebugLog) SetEnabled(enabled bool) {
	d.buf.mu.Lock()
	defer d.buf.mu.Unlock()
	d.buf.enabled = enabled
	if !enabled {
		d.buf.logs = nil
	}
}

// IsEnabled reports whether messages are being captured
func (d *DebugLog) IsEnabled() bool {
	d.buf.mu.Lock()
	defer d.buf.mu.Unlock()
	return d.buf.enabled
}

// Logs returns a copy of the captured messages, oldest first
func (d *DebugLog) Logs() []string {
	d.buf.mu.Lock()
	defer d.buf.mu.Unlock()
	logs := make([]string, len(d.buf.logs))
	copy(logs, d.buf.logs)
	return logs
}

// Enabled implements slog.Handler
func (d *DebugLog) Enabled(ctx context.Context, level slog.Level) bool {
	return d.next.Enabled(ctx, level) || d.IsEnabled()
}

// Handle implements slog.Handler
func (d *DebugLog) Handle(ctx context.Context, r slog.Record) error {
	d.capture(r)
	if !d.next.Enabled(ctx, r.Level) {
		return nil
	}
	return d.next.Handle(ctx, r)
}

// WithAttrs implements slog.Handler
func (d *DebugLog) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &DebugLog{next: d.next.WithAttrs(attrs), buf: d.buf}
}

// WithGroup implements slog.Handler
func (d *DebugLog) WithGroup(name string) slog.Handler {
	return &DebugLog{next: d.next.WithGroup(name), buf: d.buf}
}

func (d *DebugLog) capture(r slog.Record) {
	d.buf.mu.Lock()
	defer d.buf.mu.Unlock()
	if !d.buf.enabled {
		return
	}
	var sb strings.Builder
	sb.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	})
	message := strings.TrimSpace(sb.String())
	if message == "" {
		return
	}
	d.buf.logs = append(d.buf.logs, message)
	if len(d.buf.logs) > d.buf.maxLogs {
		d.buf.logs = d.buf.logs[len(d.buf.logs)-d.buf.maxLogs:]
	}
}
