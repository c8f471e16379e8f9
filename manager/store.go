package manager

import (
	"sort"

	"github.com/tailored-agentic-units/formstate/core/state"
)

// Store retains the last known instance state of every value host by name.
// It keeps private copies: Put clones its argument and Get returns a clone.
//
// Revision increases by one for every Put or Delete that changed the
// store, so callers can detect whether anything happened between two reads.
type Store struct {
	states   map[string]state.ValueHostInstanceState
	revision uint64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		states: make(map[string]state.ValueHostInstanceState),
	}
}

// Get returns a copy of the state stored under name.
func (s *Store) Get(name string) (state.ValueHostInstanceState, bool) {
	st, ok := s.states[name]
	if !ok {
		return state.ValueHostInstanceState{}, false
	}
	return st.Clone(), true
}

// Put stores st under st.Name and reports whether it differs from the state
// already stored.
func (s *Store) Put(st state.ValueHostInstanceState) bool {
	if existing, ok := s.states[st.Name]; ok && existing.Equal(st) {
		return false
	}
	s.states[st.Name] = st.Clone()
	s.revision++
	return true
}

// Delete removes name and reports whether it was present.
func (s *Store) Delete(name string) bool {
	if _, ok := s.states[name]; !ok {
		return false
	}
	delete(s.states, name)
	s.revision++
	return true
}

// Names returns the stored names, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.states))
	for name := range s.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Len() int {
	return len(s.states)
}

func (s *Store) Revision() uint64 {
	return s.revision
}

// Snapshot returns copies of every stored state.
func (s *Store) Snapshot() map[string]state.ValueHostInstanceState {
	snap := make(map[string]state.ValueHostInstanceState, len(s.states))
	for name, st := range s.states {
		snap[name] = st.Clone()
	}
	return snap
}
