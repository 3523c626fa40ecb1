package scene

import "time"

// FrameClock coalesces per-layer redraw requests and next-frame callbacks.
// Everything runs single-threaded: Schedule/Defer are called from event
// handlers, Step from the host's animation-frame driver.
type FrameClock struct {
	pending   []*Layer
	scheduled map[*Layer]bool
	deferred  []func()
}

func NewFrameClock() *FrameClock {
	return &FrameClock{scheduled: make(map[*Layer]bool)}
}

// Schedule marks a layer for drawing on the next Step. Duplicate requests
// within one frame collapse into a single draw.
func (c *FrameClock) Schedule(l *Layer) {
	if c.scheduled[l] {
		return
	}
	c.scheduled[l] = true
	c.pending = append(c.pending, l)
}

// Defer runs fn at the end of the next Step, after all layer draws.
func (c *FrameClock) Defer(fn func()) {
	if fn != nil {
		c.deferred = append(c.deferred, fn)
	}
}

// HasPending reports whether the next Step has any work.
func (c *FrameClock) HasPending() bool {
	return len(c.pending) > 0 || len(c.deferred) > 0
}

// Step draws every scheduled layer once and runs deferred callbacks.
// Requests made during the step land in the following frame.
func (c *FrameClock) Step() {
	pending := c.pending
	deferred := c.deferred
	c.pending = nil
	c.deferred = nil
	c.scheduled = make(map[*Layer]bool)

	for _, l := range pending {
		l.Draw()
	}
	for _, fn := range deferred {
		fn()
	}
}

// Limiter is a minimum-interval rate gate for high-frequency updates
// (live resize, drag previews). Zero value allows everything.
type Limiter struct {
	Interval time.Duration

	last time.Time
}

// Allow reports whether an update arriving at now should fire, and if so
// consumes the interval.
func (l *Limiter) Allow(now time.Time) bool {
	if l.Interval <= 0 {
		return true
	}
	if !l.last.IsZero() && now.Sub(l.last) < l.Interval {
		return false
	}
	l.last = now
	return true
}
