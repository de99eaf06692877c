// Package carousel implements an autoplaying, filterable slideshow position.
//
// A Controller keeps a cyclic index over the items matching the active
// filter. While playing, a single pending timer advances the index every
// interval. Navigation on an empty list is a silent no-op.
package carousel

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the autoplay period.
const DefaultInterval = 4000 * time.Millisecond

// ErrIndexOutOfRange is returned when a requested index is not valid for the
// current filtered list. State is left unchanged.
var ErrIndexOutOfRange = errors.New("carousel: index out of range")

// State is the autoplay state.
type State int

const (
	Playing State = iota
	Paused
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "paused"
}

// NoMagnified is the Magnified value when no item is open in the lightbox.
const NoMagnified = -1

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	CurrentIndex int
	Playing      bool
	Filter       string
	Items        []Item
	Magnified    int
}

// State returns Playing or Paused.
func (s Snapshot) State() State {
	if s.Playing {
		return Playing
	}
	return Paused
}

// Current returns the item at CurrentIndex, if any.
func (s Snapshot) Current() (Item, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Items) {
		return Item{}, false
	}
	return s.Items[s.CurrentIndex], true
}

// Controller owns one carousel's state.
type Controller struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	interval  time.Duration
	all       []Item
	items     []Item
	filter    string
	index     int
	playing   bool
	magnified int

	timer  clockwork.Timer
	gen    uint64
	closed bool

	listeners map[int]func(Snapshot)
	nextID    int
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock driving autoplay (default: real time).
func WithClock(c clockwork.Clock) Option {
	return func(ctl *Controller) {
		ctl.clock = c
	}
}

// WithInterval sets the autoplay period (default DefaultInterval).
func WithInterval(d time.Duration) Option {
	return func(ctl *Controller) {
		if d > 0 {
			ctl.interval = d
		}
	}
}

// WithPaused starts the controller in the Paused state.
func WithPaused() Option {
	return func(ctl *Controller) {
		ctl.playing = false
	}
}

// New returns a playing controller over items with the FilterAll filter.
func New(items []Item, opts ...Option) *Controller {
	c := &Controller{
		clock:     clockwork.NewRealClock(),
		interval:  DefaultInterval,
		all:       FilterItems(items, FilterAll),
		filter:    FilterAll,
		playing:   true,
		magnified: NoMagnified,
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.items = c.all
	if c.playing {
		c.arm()
	}
	return c
}

// Next advances to the following item, wrapping at the end.
func (c *Controller) Next() {
	c.mutate(func() bool { return c.step(1) })
}

// Previous moves to the preceding item, wrapping at the start.
func (c *Controller) Previous() {
	c.mutate(func() bool { return c.step(-1) })
}

// GoTo jumps to index. Out-of-range indexes return ErrIndexOutOfRange.
func (c *Controller) GoTo(index int) error {
	var err error
	c.mutate(func() bool {
		if index < 0 || index >= len(c.items) {
			err = ErrIndexOutOfRange
			return false
		}
		c.index = index
		return true
	})
	return err
}

// SetFilter switches to the items in category (FilterAll for every item) and
// resets the index to 0. Autoplay is re-armed when the item count changes.
func (c *Controller) SetFilter(category string) {
	if category == "" {
		category = FilterAll
	}
	c.mutate(func() bool {
		prev := len(c.items)
		c.items = FilterItems(c.all, category)
		c.filter = category
		c.index = 0
		c.magnified = NoMagnified
		if c.playing && len(c.items) != prev {
			c.disarm()
			c.arm()
		}
		return true
	})
}

// TogglePlay flips between Playing and Paused.
func (c *Controller) TogglePlay() {
	c.mutate(func() bool {
		c.setPlaying(!c.playing)
		return true
	})
}

// Play resumes autoplay with a full interval. It is a no-op when playing.
func (c *Controller) Play() {
	c.mutate(func() bool {
		if c.playing {
			return false
		}
		c.setPlaying(true)
		return true
	})
}

// Pause stops autoplay. It is a no-op when paused.
func (c *Controller) Pause() {
	c.mutate(func() bool {
		if !c.playing {
			return false
		}
		c.setPlaying(false)
		return true
	})
}

// Magnify opens the lightbox on index within the filtered list.
func (c *Controller) Magnify(index int) error {
	var err error
	c.mutate(func() bool {
		if index < 0 || index >= len(c.items) {
			err = ErrIndexOutOfRange
			return false
		}
		c.magnified = index
		return true
	})
	return err
}

// Unmagnify closes the lightbox.
func (c *Controller) Unmagnify() {
	c.mutate(func() bool {
		if c.magnified == NoMagnified {
			return false
		}
		c.magnified = NoMagnified
		return true
	})
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change,
// including autoplay ticks. fn runs outside the controller lock and must not
// block. The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Close cancels autoplay and drops subscribers. Further calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.disarm()
	clear(c.listeners)
}

// mutate runs fn under the lock and notifies subscribers if fn reports a change.
func (c *Controller) mutate(fn func() bool) {
	c.mu.Lock()
	if c.closed || !fn() {
		c.mu.Unlock()
		return
	}
	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()
	notify(listeners, snap)
}

func (c *Controller) step(delta int) bool {
	n := len(c.items)
	if n == 0 {
		return false
	}
	c.index = (c.index + delta + n) % n
	return true
}

func (c *Controller) setPlaying(playing bool) {
	c.playing = playing
	c.disarm()
	if playing {
		c.arm()
	}
}

// arm schedules the next autoplay tick. Callers hold c.mu.
func (c *Controller) arm() {
	if len(c.items) == 0 || c.closed {
		return
	}
	c.gen++
	gen := c.gen
	c.timer = c.clock.AfterFunc(c.interval, func() { c.tick(gen) })
}

// disarm cancels the pending tick. Bumping gen makes a tick that already
// fired but has not taken the lock yet drop itself.
func (c *Controller) disarm() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if c.closed || !c.playing || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if !c.step(1) {
		c.mu.Unlock()
		return
	}
	c.arm()
	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()
	notify(listeners, snap)
}

func (c *Controller) snapshotLocked() Snapshot {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return Snapshot{
		CurrentIndex: c.index,
		Playing:      c.playing,
		Filter:       c.filter,
		Items:        items,
		Magnified:    c.magnified,
	}
}

func (c *Controller) listenersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(Snapshot), snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}
