package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Window is a half-open UTC time-of-day interval [Start, End). A window whose
// End is before its Start wraps past midnight. Start == End is empty.
type Window struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

func NewWindow(startHour, startMin, endHour, endMin int) Window {
	return Window{
		Start: time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute,
		End:   time.Duration(endHour)*time.Hour + time.Duration(endMin)*time.Minute,
	}
}

// ParseWindow reads "HH:MM" bounds. "24:00" is accepted as an end of day.
func ParseWindow(start, end string) (Window, error) {
	s, err := parseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("start: %w", err)
	}
	e, err := parseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("end: %w", err)
	}
	return Window{Start: s, End: e}, nil
}

func parseClock(s string) (time.Duration, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%q is not HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, err)
	}
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	if h < 0 || m < 0 || m > 59 || d > day {
		return 0, fmt.Errorf("%q out of range", s)
	}
	return d, nil
}

// Contains reports whether the time of day of t (in UTC) falls inside w.
func (w Window) Contains(t time.Time) bool {
	return w.containsOffset(timeOfDay(t))
}

func (w Window) containsOffset(tod time.Duration) bool {
	switch {
	case w.Start == w.End:
		return false
	case w.Start < w.End:
		return tod >= w.Start && tod < w.End
	default:
		return tod >= w.Start || tod < w.End
	}
}

// segments splits a wrapping window into non-wrapping pieces.
func (w Window) segments() []Window {
	switch {
	case w.Start == w.End:
		return nil
	case w.Start < w.End:
		return []Window{w}
	}
	var out []Window
	if w.Start < day {
		out = append(out, Window{Start: w.Start, End: day})
	}
	if w.End > 0 {
		out = append(out, Window{Start: 0, End: w.End})
	}
	return out
}

// Intersect returns the pieces of the day covered by both windows.
func Intersect(a, b Window) []Window {
	var out []Window
	for _, sa := range a.segments() {
		for _, sb := range b.segments() {
			lo := max(sa.Start, sb.Start)
			hi := min(sa.End, sb.End)
			if lo < hi {
				out = append(out, Window{Start: lo, End: hi})
			}
		}
	}
	return out
}

func (w Window) String() string {
	return fmt.Sprintf("%s-%s", clock(w.Start), clock(w.End))
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

func timeOfDay(t time.Time) time.Duration {
	t = t.UTC()
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// Session is a named UTC window. Periods use the same shape.
type Session struct {
	Name string `json:"name"`
	Window
}

// OverlapPair names two sessions whose intersection is analyzed.
type OverlapPair struct {
	A string `json:"a"`
	B string `json:"b"`
}

func (p OverlapPair) Name() string {
	return fmt.Sprintf("%s/%s Overlap", p.A, p.B)
}

// DefaultSessions are the major FX sessions in UTC. A trade may close inside
// several of them.
func DefaultSessions() []Session {
	return []Session{
		{Name: "Asian", Window: NewWindow(0, 0, 8, 0)},
		{Name: "London", Window: NewWindow(8, 0, 16, 0)},
		{Name: "New_York", Window: NewWindow(13, 0, 21, 0)},
		{Name: "London_NY_Overlap", Window: NewWindow(13, 0, 16, 0)},
	}
}

// DefaultPeriods cover the whole day with contiguous, exclusive windows.
func DefaultPeriods() []Session {
	return []Session{
		{Name: "pre_market", Window: NewWindow(0, 0, 8, 0)},
		{Name: "market_open", Window: NewWindow(8, 0, 12, 0)},
		{Name: "midday", Window: NewWindow(12, 0, 16, 0)},
		{Name: "afternoon", Window: NewWindow(16, 0, 20, 0)},
		{Name: "evening", Window: NewWindow(20, 0, 24, 0)},
	}
}

func DefaultOverlaps() []OverlapPair {
	return []OverlapPair{
		{A: "Asian", B: "London"},
		{A: "London", B: "New_York"},
	}
}
