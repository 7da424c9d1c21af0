package state

import (
	"log"
	"sync"
)

// Store owns the current State and persists it after every change while a
// user is logged in.
type Store struct {
	mu      sync.Mutex
	state   State
	storage Storage
	reducer Reducer
}

// NewStore loads stored data only when authenticated is true (a session
// token exists). Storage errors are logged and the empty state is used.
func NewStore(storage Storage, authenticated bool) *Store {
	s := &Store{state: Initial(), storage: storage, reducer: defaultReducer}
	if !authenticated || storage == nil {
		return s
	}
	data, err := storage.Load()
	if err != nil {
		log.Printf("state: load: %v", err)
		return s
	}
	yes := true
	data.IsAuthenticated = &yes
	s.state = merge(s.state, data)
	return s
}

// WithReducer swaps the id generator/clock; used by tests.
func (s *Store) WithReducer(r Reducer) *Store {
	s.mu.Lock()
	s.reducer = r
	s.mu.Unlock()
	return s
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.reducer.Reduce(s.state, a)
	if s.state.IsAuthenticated && s.storage != nil {
		if err := s.storage.Save(s.state); err != nil {
			log.Printf("state: save: %v", err)
		}
	}
	return s.state
}
