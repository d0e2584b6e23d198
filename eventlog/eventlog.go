// Package eventlog persists click and track events as comma separated rows.
package eventlog

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"roitracker/types"
)

// Header is the first row of every event log
const Header = "Frame, Event, X, Y, Width, Height"

const separator = ", "

// ErrOutOfOrder is returned when an event does not advance the frame counter
// of its kind.
var ErrOutOfOrder = errors.New("event frame out of order")

// Log is an append-only event log
type Log struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	last   map[types.EventKind]int
	rows   int
	closed bool
}

// Create truncates path and writes the header
func Create(path string) (*Log, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(types.ErrResourceUnavailable, "create event log %s: %v", path, err)
	}
	l, err := New(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return l, nil
}

// New writes the header to w and returns a log appending to it. If w is an
// io.Closer it is closed by Close.
func New(w io.Writer) (*Log, error) {
	l := &Log{
		w:    bufio.NewWriter(w),
		last: make(map[types.EventKind]int),
	}
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	if _, err := l.w.WriteString(Header + "\n"); err != nil {
		return nil, errors.Wrap(err, "write event log header")
	}
	return l, nil
}

// Append writes one event row
func (l *Log) Append(e types.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return errors.New("event log is closed")
	}
	if e.Frame < 0 {
		return errors.Errorf("negative frame index %d", e.Frame)
	}
	if last, ok := l.last[e.Kind]; ok && e.Frame <= last {
		return errors.Wrapf(ErrOutOfOrder, "%s at frame %d after frame %d", e.Kind, e.Frame, last)
	}
	if _, err := l.w.WriteString(FormatRow(e) + "\n"); err != nil {
		return errors.Wrap(err, "write event")
	}
	l.last[e.Kind] = e.Frame
	l.rows++
	return nil
}

// Rows returns the number of events written
func (l *Log) Rows() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows
}

// Flush writes buffered rows to the underlying writer
func (l *Log) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return errors.Wrap(l.w.Flush(), "flush event log")
}

// Close flushes and closes the log. It is safe to call more than once.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	err := l.w.Flush()
	if l.closer != nil {
		if cerr := l.closer.Close(); err == nil {
			err = cerr
		}
	}
	return errors.Wrap(err, "close event log")
}

// FormatRow renders an event as a log row without the trailing newline
func FormatRow(e types.Event) string {
	fields := []string{
		strconv.Itoa(e.Frame),
		e.Kind.String(),
		formatFloat(e.Region.X),
		formatFloat(e.Region.Y),
		formatFloat(e.Region.Width),
		formatFloat(e.Region.Height),
	}
	return strings.Join(fields, separator)
}

// ParseRow is the inverse of FormatRow
func ParseRow(row string) (types.Event, error) {
	fields := strings.Split(row, ",")
	if len(fields) != 6 {
		return types.Event{}, errors.Errorf("expected 6 fields, got %d in %q", len(fields), row)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	frame, err := strconv.Atoi(fields[0])
	if err != nil {
		return types.Event{}, errors.Wrap(err, "parse frame")
	}
	kind, err := types.ParseEventKind(fields[1])
	if err != nil {
		return types.Event{}, err
	}
	var vals [4]float64
	for i := range vals {
		if vals[i], err = strconv.ParseFloat(fields[i+2], 64); err != nil {
			return types.Event{}, errors.Wrapf(err, "parse column %d", i+3)
		}
	}
	return types.Event{
		Frame:  frame,
		Kind:   kind,
		Region: types.NormalizedRegion{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]},
	}, nil
}

// Read parses a complete event log
func Read(r io.Reader) ([]types.Event, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "read header")
		}
		return nil, errors.New("empty event log")
	}
	if strings.TrimSpace(sc.Text()) != Header {
		return nil, errors.Errorf("unexpected header %q", sc.Text())
	}

	var events []types.Event
	line := 1
	for sc.Scan() {
		line++
		row := strings.TrimSpace(sc.Text())
		if row == "" {
			continue
		}
		e, err := ParseRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		events = append(events, e)
	}
	return events, errors.Wrap(sc.Err(), "read event log")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
