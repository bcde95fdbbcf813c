// Package flags holds the boolean story facts that drive branching.
package flags

import "sync"

// ConditionSink receives the name of a flag that has just become true.
type ConditionSink interface {
	TryUnlock(token string) bool
}

// Store is the story flag map. Absent names read as false.
type Store struct {
	mu        sync.RWMutex
	m         map[string]bool
	sink      ConditionSink
	listeners []func(name string, value bool)
}

func NewStore(sink ConditionSink) *Store {
	return &Store{m: map[string]bool{}, sink: sink}
}

// SetSink replaces the condition sink. Used when the sink is built after the store.
func (s *Store) SetSink(sink ConditionSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// OnChange registers an observer called after a stored value changes.
func (s *Store) OnChange(fn func(name string, value bool)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Set stores value under name. A false to true transition is reported to the
// condition sink before Set returns.
func (s *Store) Set(name string, value bool) {
	s.mu.Lock()
	prev, existed := s.m[name]
	s.m[name] = value
	sink := s.sink
	listeners := s.listeners
	s.mu.Unlock()

	if existed && prev == value {
		return
	}
	if !existed && !value {
		return
	}
	for _, fn := range listeners {
		fn(name, value)
	}
	if value && sink != nil {
		sink.TryUnlock(name)
	}
}

func (s *Store) Get(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[name]
}

// GetAll returns a copy of every stored flag.
func (s *Store) GetAll() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.m))
	for k, v := range s.m {
		out[k] = v
	}
	return out
}

// RestoreAll replaces the store contents with a copy of m. No observers fire.
func (s *Store) RestoreAll(m map[string]bool) {
	cp := make(map[string]bool, len(m))
	for k, v := range m {
		cp[k] = v
	}
	s.mu.Lock()
	s.m = cp
	s.mu.Unlock()
}

// Clear empties the store. Only a new game should call this.
func (s *Store) Clear() {
	s.mu.Lock()
	s.m = map[string]bool{}
	s.mu.Unlock()
}
