// Package reveal tracks which page sections have entered the viewport.
//
// A Tracker holds a monotonic revealed set: once a section has been seen it
// stays revealed for the lifetime of the page instance. The tracker only
// consumes visibility events; an Observer turns reported geometry into those
// events.
package reveal

import (
	"sort"
	"sync"
)

// VisibilitySink receives per-region visibility changes from the host.
type VisibilitySink interface {
	OnRegionVisibilityChanged(key string, visible bool) bool
}

// Tracker records which observed sections have been revealed.
type Tracker struct {
	mu        sync.Mutex
	watched   map[string]struct{}
	revealed  map[string]struct{}
	observing bool
	closed    bool
	listeners map[int]func(key string)
	nextID    int
}

// NewTracker returns a tracker that is not yet observing anything.
func NewTracker() *Tracker {
	return &Tracker{
		watched:   make(map[string]struct{}),
		revealed:  make(map[string]struct{}),
		listeners: make(map[int]func(string)),
	}
}

// Observe starts watching the given section keys. Calling it again adds keys.
// It is a no-op after Disconnect.
func (t *Tracker) Observe(keys ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	for _, k := range keys {
		if k != "" {
			t.watched[k] = struct{}{}
		}
	}
	t.observing = true
}

// OnRegionVisibilityChanged records a visibility event for key and reports
// whether it newly revealed the section. Events for unwatched keys, events
// that are not visible, and events after Disconnect are ignored.
func (t *Tracker) OnRegionVisibilityChanged(key string, visible bool) bool {
	t.mu.Lock()
	if !visible || !t.observing || t.closed {
		t.mu.Unlock()
		return false
	}
	if _, ok := t.watched[key]; !ok {
		t.mu.Unlock()
		return false
	}
	if _, ok := t.revealed[key]; ok {
		t.mu.Unlock()
		return false
	}
	t.revealed[key] = struct{}{}
	listeners := make([]func(string), 0, len(t.listeners))
	for _, fn := range t.listeners {
		listeners = append(listeners, fn)
	}
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(key)
	}
	return true
}

// IsRevealed reports whether key has entered the viewport at least once.
func (t *Tracker) IsRevealed(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.revealed[key]
	return ok
}

// Revealed returns the revealed keys in sorted order.
func (t *Tracker) Revealed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortedKeys(t.revealed)
}

// Watched returns the observed keys in sorted order.
func (t *Tracker) Watched() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortedKeys(t.watched)
}

// Observing reports whether the tracker is accepting events.
func (t *Tracker) Observing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.observing && !t.closed
}

// Subscribe registers fn to be called with each newly revealed key.
// The returned func removes the subscription.
func (t *Tracker) Subscribe(fn func(key string)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return func() {}
	}
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

// Disconnect stops observation and drops subscribers. Already revealed keys
// stay revealed.
func (t *Tracker) Disconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.observing = false
	clear(t.listeners)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
