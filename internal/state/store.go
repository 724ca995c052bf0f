package state

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Listener receives the state produced by a dispatch.
type Listener func(State)

// Store is the dispatch bus. The zero value is ready to use.
//
// Dispatch applies an action under the lock and returns once the new state is
// visible to Snapshot. Listeners run outside the lock on whichever goroutine
// is draining the notification queue, one state at a time and in dispatch
// order. A listener may dispatch; the nested state is queued and delivered
// after the current round instead of recursing.
type Store struct {
	mu        sync.Mutex
	state     State
	pending   []State
	notifying bool
	listeners map[int]Listener
	nextID    int
	log       *zerolog.Logger
}

// NewStore returns a store seeded with initial. A nil log disables the action
// log.
func NewStore(initial State, log *zerolog.Logger) *Store {
	return &Store{state: initial, log: log}
}

// Dispatch applies a and notifies subscribers.
func (s *Store) Dispatch(a Action) {
	if a == nil {
		return
	}
	s.mu.Lock()
	s.state = a.Reduce(s.state)
	s.pending = append(s.pending, s.state)
	if s.log != nil {
		s.log.Debug().Str("event", "dispatch").Str("action", a.Type()).Msg("action applied")
	}
	if s.notifying {
		s.mu.Unlock()
		return
	}
	s.notifying = true
	s.mu.Unlock()
	s.drain()
}

func (s *Store) drain() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.notifying = false
			s.mu.Unlock()
			return
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		listeners := make([]Listener, 0, len(s.listeners))
		for id := 0; id < s.nextID; id++ {
			if l, ok := s.listeners[id]; ok {
				listeners = append(listeners, l)
			}
		}
		s.mu.Unlock()

		for _, l := range listeners {
			l(next)
		}
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l for every subsequent dispatch and returns a function
// that removes it. Calling the returned function more than once is harmless.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = make(map[int]Listener)
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// SyncStatus tracks the background refresh loop.
type SyncStatus struct {
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s SyncStatus) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// RecordSync notes the outcome of one refresh round.
func RecordSync(at time.Time, err error) Action {
	return funcAction{"sync/record", func(s State) State {
		s.Sync.LastUpdated = at
		if err != nil {
			s.Sync.LastError = err
			s.Sync.ConsecutiveFailures++
			return s
		}
		s.Sync.LastError = nil
		s.Sync.ConsecutiveFailures = 0
		return s
	}}
}
