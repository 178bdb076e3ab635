package store

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned when a location id is not in the current list.
	ErrNotFound = errors.New("location not found")
)

// LocationStore is a concurrency-safe in-memory holder of the fetched
// location list. The list is replaced wholesale on reload and reordered in
// place on shuffle; callers only ever see copies.
type LocationStore struct {
	mu sync.RWMutex

	locations []weather.Location
	// id -> position in locations, rebuilt on every mutation
	index map[int]int
}

// NewLocationStore creates an empty LocationStore.
func NewLocationStore() *LocationStore {
	return &LocationStore{
		index: make(map[int]int),
	}
}

// Replace swaps in a new list.
func (s *LocationStore) Replace(list []weather.Location) {
	cp := make([]weather.Location, len(list))
	copy(cp, list)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.locations = cp
	s.reindex()
}

// Snapshot returns a copy of the current list in its current order.
func (s *LocationStore) Snapshot() []weather.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.Location, len(s.locations))
	copy(out, s.locations)
	return out
}

// Find looks up a location by id.
func (s *LocationStore) Find(id int) (weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return weather.Location{}, ErrNotFound
	}
	return s.locations[i], nil
}

// Shuffle reorders the list in place with a Fisher-Yates shuffle driven by r.
func (s *LocationStore) Shuffle(r *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Shuffle(len(s.locations), func(i, j int) {
		s.locations[i], s.locations[j] = s.locations[j], s.locations[i]
	})
	s.reindex()
}

// Len returns the number of locations held.
func (s *LocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.locations)
}

// reindex must be called with mu held for writing. On duplicate ids the
// first occurrence wins, matching a front-to-back lookup.
func (s *LocationStore) reindex() {
	s.index = make(map[int]int, len(s.locations))
	for i := len(s.locations) - 1; i >= 0; i-- {
		s.index[s.locations[i].ID] = i
	}
}
