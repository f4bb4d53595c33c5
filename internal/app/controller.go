package app

import (
	"sync"

	"hostel_hub/internal/domain"
)

type SearchState struct {
	Term      string            `json:"term"`
	Filter    domain.FilterSpec `json:"filter"`
	Results   []domain.Hostel   `json:"results"`
	LoadError string            `json:"load_error,omitempty"`
}

// SearchController owns one session's search term and filter. Every setter
// recomputes the visible results before it returns.
type SearchController struct {
	catalog *Catalog

	mu      sync.Mutex
	term    string
	spec    domain.FilterSpec
	visible []domain.Hostel
}

func NewSearchController(c *Catalog) *SearchController {
	sc := &SearchController{catalog: c}
	sc.recompute()
	return sc
}

func (s *SearchController) SetSearchTerm(term string) SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = term
	s.recompute()
	return s.stateLocked()
}

// SetFilter replaces the whole filter; fields are not merged with the previous one.
func (s *SearchController) SetFilter(spec domain.FilterSpec) SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spec = spec
	s.recompute()
	return s.stateLocked()
}

func (s *SearchController) Reset() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term, s.spec = "", domain.FilterSpec{}
	s.recompute()
	return s.stateLocked()
}

// Refresh recomputes against the current catalog, e.g. after a reload.
func (s *SearchController) Refresh() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recompute()
	return s.stateLocked()
}

func (s *SearchController) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *SearchController) recompute() {
	if s.catalog.Err() != nil {
		s.visible = []domain.Hostel{}
		return
	}
	s.visible = Apply(s.catalog.Snapshot(), s.term, s.spec)
}

func (s *SearchController) stateLocked() SearchState {
	st := SearchState{Term: s.term, Filter: s.spec, Results: s.visible}
	if err := s.catalog.Err(); err != nil {
		st.LoadError = err.Error()
	}
	return st
}

// Controllers keeps one SearchController per session.
type Controllers struct {
	catalog *Catalog

	mu   sync.Mutex
	byID map[string]*SearchController
}

// NewControllers returns a registry whose controllers are recomputed whenever
// the catalog changes.
func NewControllers(c *Catalog) *Controllers {
	cs := &Controllers{catalog: c, byID: map[string]*SearchController{}}
	c.OnChange(cs.RefreshAll)
	return cs
}

func (cs *Controllers) For(sessionID string) *SearchController {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	sc, ok := cs.byID[sessionID]
	if !ok {
		sc = NewSearchController(cs.catalog)
		cs.byID[sessionID] = sc
	}
	return sc
}

func (cs *Controllers) Drop(sessionID string) {
	cs.mu.Lock()
	delete(cs.byID, sessionID)
	cs.mu.Unlock()
}

func (cs *Controllers) RefreshAll() {
	cs.mu.Lock()
	all := make([]*SearchController, 0, len(cs.byID))
	for _, sc := range cs.byID {
		all = append(all, sc)
	}
	cs.mu.Unlock()
	for _, sc := range all {
		sc.Refresh()
	}
}
