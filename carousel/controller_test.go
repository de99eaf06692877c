package carousel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func sampleItems() []Item {
	return []Item{
		{ID: "wedding-invitation", Title: "Wedding Invitation", Category: "wedding"},
		{ID: "business-cards", Title: "Business Cards", Category: "business"},
		{ID: "brochure", Title: "Brochure", Category: "brochure"},
		{ID: "labels", Title: "Labels", Category: "labels"},
		{ID: "function-invitation", Title: "Function Invitation", Category: "invitation"},
		{ID: "letterhead", Title: "Letterhead", Category: "business"},
		{ID: "stickers", Title: "Stickers", Category: "stickers"},
		{ID: "catalog", Title: "Catalog", Category: "catalog"},
	}
}

// watch subscribes to c and returns a channel of snapshots.
func watch(t *testing.T, c *Controller) <-chan Snapshot {
	t.Helper()
	ch := make(chan Snapshot, 64)
	cancel := c.Subscribe(func(s Snapshot) {
		select {
		case ch <- s:
		default:
		}
	})
	t.Cleanup(cancel)
	return ch
}

func waitForIndex(t *testing.T, ch <-chan Snapshot, want int) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if s.CurrentIndex == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for index %d", want)
		}
	}
}

type waiterCounter interface {
	BlockUntilContext(ctx context.Context, n int) error
}

func assertNoTimers(t *testing.T, fc waiterCounter) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := fc.BlockUntilContext(ctx, 0); err != nil {
		t.Fatalf("expected no pending timers: %v", err)
	}
}

func TestNewStartsPlayingAtZero(t *testing.T) {
	c := New(sampleItems(), WithClock(clockwork.NewFakeClock()))
	defer c.Close()

	s := c.Snapshot()
	if s.CurrentIndex != 0 || !s.Playing || s.Filter != FilterAll {
		t.Fatalf("initial snapshot = %+v", s)
	}
	if s.State() != Playing {
		t.Fatalf("State = %v, want playing", s.State())
	}
	if len(s.Items) != 8 {
		t.Fatalf("items = %d, want 8", len(s.Items))
	}
	if s.Magnified != NoMagnified {
		t.Fatalf("Magnified = %d, want none", s.Magnified)
	}
}

func TestNextCyclesBackToStart(t *testing.T) {
	items := sampleItems()
	for n := 1; n <= len(items); n++ {
		for start := 0; start < n; start++ {
			c := New(items[:n], WithClock(clockwork.NewFakeClock()), WithPaused())
			if err := c.GoTo(start); err != nil {
				t.Fatalf("GoTo(%d): %v", start, err)
			}
			for i := 0; i < n; i++ {
				c.Next()
			}
			if got := c.Snapshot().CurrentIndex; got != start {
				t.Errorf("n=%d start=%d: after n Next() index = %d", n, start, got)
			}
			c.Close()
		}
	}
}

func TestPreviousUndoesNext(t *testing.T) {
	c := New(sampleItems(), WithClock(clockwork.NewFakeClock()), WithPaused())
	defer c.Close()

	for start := 0; start < 8; start++ {
		if err := c.GoTo(start); err != nil {
			t.Fatalf("GoTo: %v", err)
		}
		c.Next()
		c.Previous()
		if got := c.Snapshot().CurrentIndex; got != start {
			t.Errorf("Previous(Next(%d)) = %d", start, got)
		}
	}
}

func TestPreviousWrapsFromZero(t *testing.T) {
	c := New(sampleItems()[:3], WithClock(clockwork.NewFakeClock()), WithPaused())
	defer c.Close()

	c.Previous()
	if got := c.Snapshot().CurrentIndex; got != 2 {
		t.Fatalf("Previous from 0 = %d, want 2", got)
	}
}

func TestSetFilterResetsIndex(t *testing.T) {
	c := New(sampleItems(), WithClock(clockwork.NewFakeClock()))
	defer c.Close()

	if err := c.GoTo(6); err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	c.SetFilter("business")
	s := c.Snapshot()
	if s.CurrentIndex != 0 {
		t.Fatalf("index after SetFilter = %d, want 0", s.CurrentIndex)
	}
	if s.Filter != "business" || len(s.Items) != 2 {
		t.Fatalf("filtered snapshot = %+v", s)
	}
	if s.Items[1].ID != "letterhead" {
		t.Fatalf("filter should keep catalog order, got %+v", s.Items)
	}

	c.Next()
	c.SetFilter(FilterAll)
	if got := c.Snapshot(); got.CurrentIndex != 0 || len(got.Items) != 8 {
		t.Fatalf("after SetFilter(all) = %+v", got)
	}
}

func TestGoToRejectsOutOfRange(t *testing.T) {
	items := sampleItems()[:5]
	c := New(items, WithClock(clockwork.NewFakeClock()), WithPaused())
	defer c.Close()

	if err := c.GoTo(4); err != nil {
		t.Fatalf("GoTo(4): %v", err)
	}
	if got := c.Snapshot().CurrentIndex; got != 4 {
		t.Fatalf("index = %d, want 4", got)
	}
	if err := c.GoTo(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("GoTo(5) err = %v, want ErrIndexOutOfRange", err)
	}
	if err := c.GoTo(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("GoTo(-1) err = %v, want ErrIndexOutOfRange", err)
	}
	if got := c.Snapshot().CurrentIndex; got != 4 {
		t.Fatalf("rejected GoTo changed index to %d", got)
	}
}

func TestEmptyListIsNoop(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := New(sampleItems(), WithClock(fc))
	defer c.Close()

	c.SetFilter("embossing")
	assertNoTimers(t, fc)

	c.Next()
	c.Previous()
	if err := c.GoTo(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("GoTo on empty list err = %v", err)
	}
	fc.Advance(3 * DefaultInterval)
	s := c.Snapshot()
	if s.CurrentIndex != 0 || len(s.Items) != 0 {
		t.Fatalf("empty snapshot = %+v", s)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("Current should report no item on an empty list")
	}
	assertNoTimers(t, fc)
}

func TestAutoplayPauseResume(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := New(sampleItems()[:3], WithClock(fc))
	defer c.Close()
	updates := watch(t, c)

	fc.Advance(DefaultInterval)
	waitForIndex(t, updates, 1)

	c.TogglePlay()
	if c.Snapshot().State() != Paused {
		t.Fatalf("expected paused after toggle")
	}
	assertNoTimers(t, fc)
	fc.Advance(10 * time.Second)
	time.Sleep(20 * time.Millisecond)
	if got := c.Snapshot().CurrentIndex; got != 1 {
		t.Fatalf("index moved while paused: %d", got)
	}

	c.TogglePlay()
	fc.Advance(DefaultInterval)
	waitForIndex(t, updates, 2)
}

func TestResumeStartsFullInterval(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := New(sampleItems()[:3], WithClock(fc))
	defer c.Close()
	updates := watch(t, c)

	fc.Advance(3 * time.Second)
	c.Pause()
	c.Play()
	fc.Advance(3 * time.Second)
	time.Sleep(20 * time.Millisecond)
	if got := c.Snapshot().CurrentIndex; got != 0 {
		t.Fatalf("resume kept the old remaining time, index = %d", got)
	}
	fc.Advance(time.Second)
	waitForIndex(t, updates, 1)
}

func TestManualNavigationKeepsTimer(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := New(sampleItems()[:4], WithClock(fc))
	defer c.Close()
	updates := watch(t, c)

	fc.Advance(3 * time.Second)
	c.Next()
	waitForIndex(t, updates, 1)
	fc.Advance(time.Second)
	waitForIndex(t, updates, 2)
	if !c.Snapshot().Playing {
		t.Fatalf("navigation should not change play state")
	}
}

func TestFilterChangeRearmsSingleTimer(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := New(sampleItems(), WithClock(fc))
	defer c.Close()
	updates := watch(t, c)

	for i := 0; i < 10; i++ {
		c.SetFilter("business")
		c.SetFilter(FilterAll)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := fc.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("expected exactly one pending timer: %v", err)
	}

	fc.Advance(DefaultInterval)
	waitForIndex(t, updates, 1)
	time.Sleep(20 * time.Millisecond)
	if got := c.Snapshot().CurrentIndex; got != 1 {
		t.Fatalf("duplicate timers advanced index to %d", got)
	}
}

func TestCloseStopsAutoplay(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := New(sampleItems(), WithClock(fc))
	calls := 0
	c.Subscribe(func(Snapshot) { calls++ })

	c.Close()
	assertNoTimers(t, fc)
	fc.Advance(5 * DefaultInterval)
	time.Sleep(20 * time.Millisecond)

	c.Next()
	c.TogglePlay()
	if got := c.Snapshot(); got.CurrentIndex != 0 || !got.Playing {
		t.Fatalf("state mutated after Close: %+v", got)
	}
	if calls != 0 {
		t.Fatalf("listener called %d times after Close", calls)
	}
}

func TestStaleTickIsDropped(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := New(sampleItems()[:3], WithClock(fc), WithPaused())
	defer c.Close()

	c.mu.Lock()
	c.playing = true
	c.arm()
	stale := c.gen
	c.disarm()
	c.mu.Unlock()

	c.tick(stale)
	if got := c.Snapshot().CurrentIndex; got != 0 {
		t.Fatalf("stale tick advanced index to %d", got)
	}
}

func TestMagnify(t *testing.T) {
	c := New(sampleItems(), WithClock(clockwork.NewFakeClock()), WithPaused())
	defer c.Close()

	if err := c.Magnify(3); err != nil {
		t.Fatalf("Magnify: %v", err)
	}
	if got := c.Snapshot().Magnified; got != 3 {
		t.Fatalf("Magnified = %d, want 3", got)
	}
	if err := c.Magnify(8); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("Magnify(8) err = %v", err)
	}
	c.SetFilter("wedding")
	if got := c.Snapshot().Magnified; got != NoMagnified {
		t.Fatalf("SetFilter should close the lightbox, Magnified = %d", got)
	}
	if err := c.Magnify(0); err != nil {
		t.Fatalf("Magnify(0): %v", err)
	}
	c.Unmagnify()
	if got := c.Snapshot().Magnified; got != NoMagnified {
		t.Fatalf("Unmagnify left Magnified = %d", got)
	}
}

func TestFilterItems(t *testing.T) {
	items := sampleItems()
	if got := FilterItems(items, ""); len(got) != len(items) {
		t.Errorf("empty filter returned %d items", len(got))
	}
	if got := FilterItems(items, "business"); len(got) != 2 {
		t.Errorf("business filter returned %d items", len(got))
	}
	if got := FilterItems(items, "none"); len(got) != 0 {
		t.Errorf("unknown filter returned %d items", len(got))
	}
}
