package printsite

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ssgraphics/printsite/content"
	"github.com/ssgraphics/printsite/reveal"
)

func newTestRegistry(t *testing.T, fc *clockwork.FakeClock, max int) (*PageRegistry, []Page) {
	t.Helper()
	catalog, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default: %v", err)
	}
	r := NewPageRegistry(RegistryConfig{
		Clock:            fc,
		TTL:              time.Minute,
		MaxPages:         max,
		Reveal:           reveal.DefaultOptions(),
		AutoplayInterval: 4 * time.Second,
		Items:            catalog.CarouselItems(),
	})
	t.Cleanup(r.CloseAll)
	return r, Pages(catalog)
}

func mustPage(t *testing.T, pages []Page, slug string) Page {
	t.Helper()
	p, ok := PageBySlug(pages, slug)
	if !ok {
		t.Fatalf("no page %q", slug)
	}
	return p
}

func TestOpenObservesSections(t *testing.T) {
	r, pages := newTestRegistry(t, clockwork.NewFakeClock(), 0)
	home := mustPage(t, pages, "home")

	s, err := r.Open(home, "visitor-1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Carousel != nil {
		t.Fatalf("home should not have a carousel")
	}
	if got := len(s.Tracker.Watched()); got != len(home.Sections) {
		t.Fatalf("watched %d sections, want %d", got, len(home.Sections))
	}
	if !s.Tracker.OnRegionVisibilityChanged("hero", true) {
		t.Fatalf("hero should be observable")
	}
}

func TestOpenPortfolioHasCarousel(t *testing.T) {
	r, pages := newTestRegistry(t, clockwork.NewFakeClock(), 0)
	s, err := r.Open(mustPage(t, pages, "portfolio"), "visitor-1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Carousel == nil {
		t.Fatalf("portfolio should have a carousel")
	}
	snap := s.Carousel.Snapshot()
	if !snap.Playing || len(snap.Items) != 8 {
		t.Fatalf("carousel snapshot = %+v", snap)
	}
}

func TestGetChecksOwner(t *testing.T) {
	r, pages := newTestRegistry(t, clockwork.NewFakeClock(), 0)
	s, err := r.Open(mustPage(t, pages, "about"), "visitor-1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := r.Get(s.ID, "visitor-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get with wrong owner err = %v", err)
	}
	if _, err := r.Get("missing", "visitor-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing err = %v", err)
	}
	got, err := r.Get(s.ID, "visitor-1")
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}
}

func TestCloseTearsDown(t *testing.T) {
	fc := clockwork.NewFakeClock()
	r, pages := newTestRegistry(t, fc, 0)
	s, err := r.Open(mustPage(t, pages, "portfolio"), "visitor-1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Tracker.OnRegionVisibilityChanged("intro", true)

	if err := r.Close(s.ID, "visitor-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Close with wrong owner err = %v", err)
	}
	if err := r.Close(s.ID, "visitor-1"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case <-s.Done():
	default:
		t.Fatalf("Done should be closed after Close")
	}
	if s.Tracker.Observing() {
		t.Fatalf("tracker still observing after Close")
	}
	if !s.Tracker.IsRevealed("intro") {
		t.Fatalf("revealed state lost on teardown")
	}

	fc.Advance(20 * time.Second)
	time.Sleep(20 * time.Millisecond)
	if got := s.Carousel.Snapshot().CurrentIndex; got != 0 {
		t.Fatalf("carousel advanced after teardown: %d", got)
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0", r.Len())
	}
}

func TestMaxPages(t *testing.T) {
	r, pages := newTestRegistry(t, clockwork.NewFakeClock(), 1)
	home := mustPage(t, pages, "home")
	if _, err := r.Open(home, "a"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := r.Open(home, "b"); !errors.Is(err, ErrTooManyPages) {
		t.Fatalf("second Open err = %v, want ErrTooManyPages", err)
	}
}

func TestSweepClosesIdleSessions(t *testing.T) {
	fc := clockwork.NewFakeClock()
	r, pages := newTestRegistry(t, fc, 0)
	home := mustPage(t, pages, "home")

	idle, _ := r.Open(home, "a")
	active, _ := r.Open(home, "b")

	fc.Advance(40 * time.Second)
	if _, err := r.Get(active.ID, "b"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	fc.Advance(30 * time.Second)

	if n := r.Sweep(); n != 1 {
		t.Fatalf("Sweep closed %d sessions, want 1", n)
	}
	if _, err := r.Get(idle.ID, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("idle session should be gone, err = %v", err)
	}
	if _, err := r.Get(active.ID, "b"); err != nil {
		t.Fatalf("active session should survive: %v", err)
	}
}

func TestCloseAll(t *testing.T) {
	r, pages := newTestRegistry(t, clockwork.NewFakeClock(), 0)
	s1, _ := r.Open(mustPage(t, pages, "home"), "a")
	s2, _ := r.Open(mustPage(t, pages, "portfolio"), "a")

	r.CloseAll()
	for _, s := range []*PageSession{s1, s2} {
		select {
		case <-s.Done():
		default:
			t.Fatalf("session %s not torn down", s.ID)
		}
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0", r.Len())
	}
}

func TestOpenEvictsOwnersLeastRecentlySeen(t *testing.T) {
	fc := clockwork.NewFakeClock()
	r, pages := newTestRegistry(t, fc, 10)
	r.cfg.MaxPerOwner = 3
	portfolio := mustPage(t, pages, "portfolio")

	var opened []*PageSession
	for i := 0; i < 3; i++ {
		s, err := r.Open(portfolio, "greedy")
		if err != nil {
			t.Fatalf("Open %d: %v", i, err)
		}
		opened = append(opened, s)
		fc.Advance(time.Second)
	}
	// Touching the first makes the second the least recently seen.
	if _, err := r.Get(opened[0].ID, "greedy"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	for i := 0; i < 20; i++ {
		if _, err := r.Open(portfolio, "greedy"); err != nil {
			t.Fatalf("Open over per-owner cap: %v", err)
		}
	}
	if n := r.OwnerLen("greedy"); n != 3 {
		t.Fatalf("OwnerLen = %d, want 3", n)
	}
	select {
	case <-opened[1].Done():
	default:
		t.Fatal("least recently seen session should be evicted first")
	}

	other, err := r.Open(portfolio, "other")
	if err != nil {
		t.Fatalf("other visitor Open: %v", err)
	}
	if other.Carousel == nil || r.Len() != 4 {
		t.Fatalf("Len = %d, want 4", r.Len())
	}
}

func TestSweepAndCloseKeepOwnerIndex(t *testing.T) {
	fc := clockwork.NewFakeClock()
	r, pages := newTestRegistry(t, fc, 0)
	home := mustPage(t, pages, "home")

	s1, _ := r.Open(home, "a")
	r.Open(home, "a")
	if err := r.Close(s1.ID, "a"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := r.OwnerLen("a"); n != 1 {
		t.Fatalf("OwnerLen after Close = %d, want 1", n)
	}

	fc.Advance(2 * time.Minute)
	r.Sweep()
	if n := r.OwnerLen("a"); n != 0 {
		t.Fatalf("OwnerLen after Sweep = %d, want 0", n)
	}
}

func TestPortfolioObservesProcessSteps(t *testing.T) {
	r, pages := newTestRegistry(t, clockwork.NewFakeClock(), 0)
	s, err := r.Open(mustPage(t, pages, "portfolio"), "visitor-1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, key := range []string{"process", "process-0", "process-3", "portfolio-cta"} {
		if !s.Tracker.OnRegionVisibilityChanged(key, true) {
			t.Fatalf("%s should be observable", key)
		}
	}
}
