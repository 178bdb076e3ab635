package dashboard

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/view"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Options tunes list sizes.
type Options struct {
	DefaultLimit int // boot and plain reload
	LoadAllLimit int // "load all"
	PreviewCount int // tiles shown for an empty search and after shuffle
	Rand         *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = weather.DefaultLimit
	}
	if o.LoadAllLimit <= 0 {
		o.LoadAllLimit = weather.LoadAllLimit
	}
	if o.PreviewCount <= 0 {
		o.PreviewCount = weather.PreviewCount
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// Service owns the dashboard regions and the location list, and is their
// only writer. Every fetch-and-render operation takes a token for its view;
// its result lands only while that token is still the latest.
type Service struct {
	source weather.Source
	store  weather.Store
	seq    *weather.Sequencer
	log    *zap.Logger
	opts   Options

	mu        sync.RWMutex
	national  view.Panel[view.NationalView]
	locations view.Panel[view.LocationsView]
	tags      []view.ImageTag
	detail    view.DetailRegion
	mode      listMode
	query     string
	limit     int
}

// listMode is what the tiles region currently shows of the owned list.
type listMode int

const (
	modeAll listMode = iota
	modeSearch
	modeShuffle
)

// NewService creates a Service with every region in its initial state.
func NewService(source weather.Source, st weather.Store, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	return &Service{
		source:    source,
		store:     st,
		seq:       weather.NewSequencer(),
		log:       logger,
		opts:      opts,
		national:  view.Loading[view.NationalView](view.MsgLoading),
		locations: view.Loading[view.LocationsView](view.MsgLoading),
		tags:      []view.ImageTag{},
		detail:    view.IdleDetail(),
		limit:     opts.DefaultLimit,
	}
}

// Boot fetches the national summary and the default location list
// concurrently.
func (s *Service) Boot(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.RefreshNational(ctx)
	}()
	go func() {
		defer wg.Done()
		s.LoadLocations(ctx, s.opts.DefaultLimit)
	}()
	wg.Wait()
}

// RefreshNational fetches and renders the national banner.
func (s *Service) RefreshNational(ctx context.Context) view.Panel[view.NationalView] {
	tok := s.seq.Issue(weather.ViewNational)

	summary, err := s.source.FetchNational(ctx)

	var next view.Panel[view.NationalView]
	if err != nil {
		s.log.Warn("national fetch failed", zap.Error(err))
		next = view.Failed[view.NationalView](view.PrefixNationalErr + err.Error())
	} else {
		next = view.Ready(view.NewNationalView(summary))
	}

	if !s.seq.Apply(weather.ViewNational, tok, func() {
		s.mu.Lock()
		s.national = next
		s.mu.Unlock()
	}) {
		s.log.Debug("discarding stale national result", zap.Uint64("token", uint64(tok)))
	}
	return s.National()
}

// LoadLocations fetches up to limit locations, replaces the owned list and
// re-renders the tiles and image hints. limit <= 0 means the default.
//
// A newer fetch discards this one entirely. A newer search or shuffle only
// keeps its own tiles: the fetched list still replaces the owned one and the
// active search or shuffle is re-applied to it.
func (s *Service) LoadLocations(ctx context.Context, limit int) view.Panel[view.LocationsView] {
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}
	s.mu.Lock()
	s.limit = limit
	s.mu.Unlock()

	tok := s.seq.Issue(weather.ViewLocations)
	s.seq.Apply(weather.ViewLocations, tok, func() {
		s.mu.Lock()
		s.mode = modeAll
		s.query = ""
		s.locations = view.Loading[view.LocationsView](view.MsgLoading)
		s.mu.Unlock()
	})
	s.fetchLocations(ctx, limit, tok, false)
	return s.Locations()
}

// LoadAll reloads the list with the "load all" bound.
func (s *Service) LoadAll(ctx context.Context) view.Panel[view.LocationsView] {
	return s.LoadLocations(ctx, s.opts.LoadAllLimit)
}

// Refresh re-fetches the national banner and the list with the last limit
// used. The tiles keep showing whatever search or shuffle is active, and a
// failed list fetch leaves the current tiles in place.
func (s *Service) Refresh(ctx context.Context) {
	s.mu.RLock()
	limit := s.limit
	s.mu.RUnlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.RefreshNational(ctx)
	}()
	go func() {
		defer wg.Done()
		s.fetchLocations(ctx, limit, 0, true)
	}()
	wg.Wait()
}

// fetchLocations runs one list fetch. viewTok is the tiles token the caller
// issued; background fetches never take over the tiles region.
func (s *Service) fetchLocations(ctx context.Context, limit int, viewTok weather.Token, background bool) {
	tok := s.seq.Issue(weather.ViewLocationList)

	list, err := s.source.LoadLocations(ctx, limit)
	if err != nil {
		s.log.Warn("locations fetch failed", zap.Int("limit", limit), zap.Error(err))
	}

	applied := s.seq.ApplyWith(weather.ViewLocationList, tok, weather.ViewLocations, viewTok, func(ownsView bool) {
		ownsView = ownsView && !background

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			// A superseded load may have left the tiles loading.
			if ownsView || s.locations.State == view.StateLoading {
				s.locations = view.Failed[view.LocationsView](view.PrefixLocationsErr + err.Error())
			}
			return
		}
		if s.mode == modeShuffle {
			list = arrangeLike(list, s.store.Snapshot())
		}
		s.store.Replace(list)
		s.tags = view.NewImageTags(list)
		s.locations = s.arrangeLocked(s.store.Snapshot())
	})
	if !applied {
		s.log.Debug("discarding stale locations result", zap.Uint64("token", uint64(tok)))
	} else if err == nil {
		s.log.Info("locations loaded", zap.Int("limit", limit), zap.Int("count", len(list)))
	}
}

// Search filters the owned list and renders the matches. An empty query
// renders the first PreviewCount locations.
func (s *Service) Search(query string) view.Panel[view.LocationsView] {
	tok := s.seq.Issue(weather.ViewLocations)
	s.seq.Apply(weather.ViewLocations, tok, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.mode = modeSearch
		s.query = strings.TrimSpace(query)
		s.locations = s.arrangeLocked(s.store.Snapshot())
	})
	return s.Locations()
}

// Shuffle reorders the owned list in place and renders its first
// PreviewCount locations.
func (s *Service) Shuffle() view.Panel[view.LocationsView] {
	tok := s.seq.Issue(weather.ViewLocations)
	s.seq.Apply(weather.ViewLocations, tok, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.store.Shuffle(s.opts.Rand)
		s.mode = modeShuffle
		s.query = ""
		s.locations = s.arrangeLocked(s.store.Snapshot())
	})
	return s.Locations()
}

// ShowDetail renders the detail panel for id. An id missing from the owned
// list yields a not-found message without any request.
func (s *Service) ShowDetail(ctx context.Context, id int) view.DetailRegion {
	tok := s.seq.Issue(weather.ViewDetail)

	loc, err := s.store.Find(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error("location lookup failed", zap.Int("id", id), zap.Error(err))
		}
		s.seq.Apply(weather.ViewDetail, tok, func() {
			s.mu.Lock()
			s.detail.Body = view.Empty[view.DetailView](view.MsgNotFound)
			s.mu.Unlock()
		})
		return s.Detail()
	}

	title := loc.City + ", " + loc.State
	s.seq.Apply(weather.ViewDetail, tok, func() {
		s.mu.Lock()
		s.detail = view.DetailRegion{Title: title, Body: view.Loading[view.DetailView](view.MsgLoadingDetails)}
		s.mu.Unlock()
	})

	d, err := s.source.FetchDetail(ctx, id)
	var body view.Panel[view.DetailView]
	if err != nil {
		s.log.Warn("detail fetch failed", zap.Int("id", id), zap.Error(err))
		body = view.Failed[view.DetailView](view.PrefixDetailErr + err.Error())
	} else {
		body = view.Ready(view.NewDetailView(d))
	}

	if !s.seq.Apply(weather.ViewDetail, tok, func() {
		s.mu.Lock()
		s.detail = view.DetailRegion{Title: title, Body: body}
		s.mu.Unlock()
	}) {
		s.log.Debug("discarding stale detail result", zap.Int("id", id), zap.Uint64("token", uint64(tok)))
	}
	return s.Detail()
}

// CloseDetail resets the detail panel. Any in-flight detail fetch is
// invalidated.
func (s *Service) CloseDetail() view.DetailRegion {
	tok := s.seq.Issue(weather.ViewDetail)
	s.seq.Apply(weather.ViewDetail, tok, func() {
		s.mu.Lock()
		s.detail = view.IdleDetail()
		s.mu.Unlock()
	})
	return s.Detail()
}

// National returns the current national banner.
func (s *Service) National() view.Panel[view.NationalView] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.national
}

// Locations returns the current tiles region.
func (s *Service) Locations() view.Panel[view.LocationsView] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locations
}

// ImageTags returns the current image hints.
func (s *Service) ImageTags() []view.ImageTag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]view.ImageTag, len(s.tags))
	copy(out, s.tags)
	return out
}

// Detail returns the current detail region.
func (s *Service) Detail() view.DetailRegion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detail
}

// Page returns every region for a full page render. Preview is left for
// the caller since it is per visitor.
func (s *Service) Page() view.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make([]view.ImageTag, len(s.tags))
	copy(tags, s.tags)
	return view.Page{
		Query:     s.query,
		National:  s.national,
		Locations: s.locations,
		Tags:      tags,
		Detail:    s.detail,
	}
}

// arrangeLocked renders list the way the active mode shows it. Callers hold s.mu.
func (s *Service) arrangeLocked(list []weather.Location) view.Panel[view.LocationsView] {
	switch s.mode {
	case modeSearch:
		if s.query == "" {
			return view.NewLocationsPanel(weather.Head(list, s.opts.PreviewCount))
		}
		return view.NewLocationsPanel(weather.FilterLocations(list, s.query))
	case modeShuffle:
		return view.NewLocationsPanel(weather.Head(list, s.opts.PreviewCount))
	default:
		return view.NewLocationsPanel(list)
	}
}

// arrangeLike orders next the way prev is ordered. Locations new to next
// follow in their fetched order.
func arrangeLike(next, prev []weather.Location) []weather.Location {
	pos := make(map[int]int, len(prev))
	for i, l := range prev {
		pos[l.ID] = i
	}
	out := make([]weather.Location, len(next))
	copy(out, next)
	sort.SliceStable(out, func(i, j int) bool {
		pi, iok := pos[out[i].ID]
		pj, jok := pos[out[j].ID]
		if iok && jok {
			return pi < pj
		}
		return iok && !jok
	})
	return out
}
