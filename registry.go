package printsite

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"

	"github.com/ssgraphics/printsite/carousel"
	"github.com/ssgraphics/printsite/reveal"
)

// ErrNotFound is returned when a page session does not exist or belongs to
// another visitor.
var ErrNotFound = errors.New("printsite: page session not found")

// ErrTooManyPages is returned when the live page session cap is reached.
var ErrTooManyPages = errors.New("printsite: too many open pages")

// PageSession is the server-side state of one rendered page instance.
type PageSession struct {
	ID       string
	Page     Page
	Owner    string
	Tracker  *reveal.Tracker
	Observer *reveal.Observer
	Carousel *carousel.Controller // nil unless Page.Carousel

	done chan struct{}

	mu       sync.Mutex
	lastSeen time.Time
}

// Done is closed when the session is torn down.
func (s *PageSession) Done() <-chan struct{} {
	return s.done
}

func (s *PageSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *PageSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// teardown stops observation and autoplay. Revealed state is kept.
func (s *PageSession) teardown() {
	s.Tracker.Disconnect()
	if s.Carousel != nil {
		s.Carousel.Close()
	}
	close(s.done)
}

// RegistryConfig configures a PageRegistry.
type RegistryConfig struct {
	Clock            clockwork.Clock
	TTL              time.Duration
	MaxPages         int
	MaxPerOwner      int // live sessions per visitor; the least recently seen is evicted
	Reveal           reveal.Options
	AutoplayInterval time.Duration
	Items            []carousel.Item
}

// PageRegistry owns every live page session.
type PageRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*PageSession
	byOwner  map[string][]string
	cfg      RegistryConfig
}

// NewPageRegistry creates an empty registry.
func NewPageRegistry(cfg RegistryConfig) *PageRegistry {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &PageRegistry{
		sessions: make(map[string]*PageSession),
		byOwner:  make(map[string][]string),
		cfg:      cfg,
	}
}

// Open mounts a new page instance for owner: the tracker starts observing the
// page's sections and carousel pages get a playing controller.
func (r *PageRegistry) Open(page Page, owner string) (*PageSession, error) {
	r.mu.Lock()
	var evicted *PageSession
	if r.cfg.MaxPerOwner > 0 && len(r.byOwner[owner]) >= r.cfg.MaxPerOwner {
		evicted = r.oldestLocked(owner)
		r.removeLocked(evicted)
	}
	if r.cfg.MaxPages > 0 && len(r.sessions) >= r.cfg.MaxPages {
		r.mu.Unlock()
		if evicted != nil {
			evicted.teardown()
		}
		return nil, ErrTooManyPages
	}

	tracker := reveal.NewTracker()
	tracker.Observe(page.Sections...)
	s := &PageSession{
		ID:       ulid.Make().String(),
		Page:     page,
		Owner:    owner,
		Tracker:  tracker,
		Observer: reveal.NewObserver(tracker, r.cfg.Reveal),
		done:     make(chan struct{}),
		lastSeen: r.cfg.Clock.Now(),
	}
	if page.Carousel {
		s.Carousel = carousel.New(r.cfg.Items,
			carousel.WithClock(r.cfg.Clock),
			carousel.WithInterval(r.cfg.AutoplayInterval),
		)
	}
	r.sessions[s.ID] = s
	r.byOwner[owner] = append(r.byOwner[owner], s.ID)
	r.mu.Unlock()

	if evicted != nil {
		evicted.teardown()
	}
	return s, nil
}

// oldestLocked returns owner's least recently seen session. Callers hold r.mu
// and guarantee owner has at least one session.
func (r *PageRegistry) oldestLocked(owner string) *PageSession {
	var oldest *PageSession
	for _, id := range r.byOwner[owner] {
		s := r.sessions[id]
		if oldest == nil || s.idleSince().Before(oldest.idleSince()) {
			oldest = s
		}
	}
	return oldest
}

// removeLocked unregisters s. Callers hold r.mu and tear s down after
// releasing it.
func (r *PageRegistry) removeLocked(s *PageSession) {
	delete(r.sessions, s.ID)
	ids := r.byOwner[s.Owner]
	for i, id := range ids {
		if id == s.ID {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(r.byOwner, s.Owner)
	} else {
		r.byOwner[s.Owner] = ids
	}
}

// Get returns the session with id if owner opened it, and marks it active.
func (r *PageRegistry) Get(id, owner string) (*PageSession, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || s.Owner != owner {
		return nil, ErrNotFound
	}
	s.touch(r.cfg.Clock.Now())
	return s, nil
}

// Close tears down the session with id if owner opened it.
func (r *PageRegistry) Close(id, owner string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok || s.Owner != owner {
		r.mu.Unlock()
		return ErrNotFound
	}
	r.removeLocked(s)
	r.mu.Unlock()

	s.teardown()
	return nil
}

// Sweep tears down sessions idle for longer than the TTL and returns how many
// were closed.
func (r *PageRegistry) Sweep() int {
	if r.cfg.TTL <= 0 {
		return 0
	}
	cutoff := r.cfg.Clock.Now().Add(-r.cfg.TTL)

	r.mu.Lock()
	var expired []*PageSession
	for _, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
		}
	}
	for _, s := range expired {
		r.removeLocked(s)
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.teardown()
	}
	return len(expired)
}

// StartSweeper runs Sweep every interval. Returns a stop function.
func (r *PageRegistry) StartSweeper(interval time.Duration) func() {
	ticker := r.cfg.Clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				r.Sweep()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// CloseAll tears down every session.
func (r *PageRegistry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*PageSession)
	r.byOwner = make(map[string][]string)
	r.mu.Unlock()

	for _, s := range sessions {
		s.teardown()
	}
}

// OwnerLen returns the number of live sessions opened by owner.
func (r *PageRegistry) OwnerLen(owner string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byOwner[owner])
}

// Len returns the number of live sessions.
func (r *PageRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
