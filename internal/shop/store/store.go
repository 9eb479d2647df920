package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"atsea/internal/shop/api"
)

// itemAddedTTL is a var so tests can shorten the wait.
var itemAddedTTL = 2500 * time.Millisecond

// Store serializes every state transition behind one mutex; reducers run
// atomically with respect to interleaved async completions. Subscribers
// receive deep-copied snapshots and can never mutate shared state.
type Store struct {
	api *api.Client
	log *zap.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int

	// itemTimer clears the ItemAdded flag. One timer, reset on every
	// add: the last call wins, delays never stack.
	itemTimer *time.Timer
}

func New(client *api.Client, log *zap.Logger) *Store {
	return &Store{
		api:   client,
		log:   log,
		state: newState(),
		subs:  make(map[int]func(State)),
	}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.state)
}

// Subscribe registers fn for every dispatched action and returns an
// unsubscribe func.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Dispatch applies a through the reducer and notifies subscribers with
// the resulting snapshot. Callbacks run outside the lock.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = reduce(clone(s.state), a)
	snap := clone(s.state)
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// flagItemAdded raises the transient flag and (re)arms the shared clear
// timer.
func (s *Store) flagItemAdded() {
	s.Dispatch(SetItemAdded{Value: true})

	s.mu.Lock()
	if s.itemTimer != nil {
		s.itemTimer.Reset(itemAddedTTL)
	} else {
		s.itemTimer = time.AfterFunc(itemAddedTTL, func() {
			s.Dispatch(SetItemAdded{Value: false})
		})
	}
	s.mu.Unlock()
}
