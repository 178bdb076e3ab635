package weather

import "sync"

// View names a dashboard region whose content is produced asynchronously.
type View string

const (
	ViewNational  View = "national"
	ViewLocations View = "locations"
	ViewDetail    View = "detail"
	// ViewLocationList orders fetches of the owned list. It is separate from
	// ViewLocations, which orders what the tiles region shows.
	ViewLocationList View = "location-list"
)

// Token identifies one issued fetch-and-render operation for a view.
type Token uint64

// Sequencer hands out monotonically increasing tokens per view. A result is
// applied only while its token is still the latest issued for that view, so
// an older request that completes late cannot overwrite a newer one.
type Sequencer struct {
	mu     sync.Mutex
	latest map[View]Token
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[View]Token)}
}

// Issue returns a new token for v, invalidating every earlier one.
func (s *Sequencer) Issue(v View) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[v]++
	return s.latest[v]
}

// Current reports whether t is still the latest token for v.
func (s *Sequencer) Current(v View, t Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[v] == t
}

// Apply runs fn if t is still current for v and reports whether it ran.
// fn executes under the sequencer lock; no Issue interleaves with it.
func (s *Sequencer) Apply(v View, t Token, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest[v] != t {
		return false
	}
	fn()
	return true
}

// ApplyWith runs fn if t is still current for v, telling fn whether ot is
// still current for ov. Both checks and fn happen under one lock.
func (s *Sequencer) ApplyWith(v View, t Token, ov View, ot Token, fn func(otherCurrent bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest[v] != t {
		return false
	}
	fn(s.latest[ov] == ot)
	return true
}
