package callctx

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrUnknownCall = errors.New("call was never started or has already ended")
	ErrCallActive  = errors.New("call is already active")
	ErrInvalidCall = errors.New("call id is empty")
)

// Store holds the context of every active call. Mutations for one call id
// serialize behind that call's own lock; different calls never contend.
// Ended calls keep a tombstone so late mutations fail with ErrUnknownCall
// and their results are discarded.
type Store struct {
	mu    sync.RWMutex
	calls map[string]*callEntry
}

type callEntry struct {
	mu    sync.Mutex
	state *CallContext
	ended bool
}

func NewStore() *Store {
	return &Store{
		calls: make(map[string]*callEntry),
	}
}

// Start registers a new call. Starting an id that is already active fails
// with ErrCallActive; restarting an ended id fails with ErrUnknownCall.
func (s *Store) Start(callID string, now time.Time) (CallContext, error) {
	callID = strings.TrimSpace(callID)
	if callID == "" {
		return CallContext{}, ErrInvalidCall
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.calls[callID]; ok {
		if entry.ended {
			return CallContext{}, ErrUnknownCall
		}
		return CallContext{}, ErrCallActive
	}

	state := New(callID, now)
	s.calls[callID] = &callEntry{state: state}
	return state.Clone(), nil
}

// Get returns a snapshot of the call's context.
func (s *Store) Get(callID string) (CallContext, error) {
	entry, err := s.lookup(callID)
	if err != nil {
		return CallContext{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.ended {
		return CallContext{}, ErrUnknownCall
	}
	return entry.state.Clone(), nil
}

// Update applies the mutator under the call's lock and returns a snapshot
// of the resulting state. The ended flag is re-checked under the lock so a
// hangup racing an in-flight invocation discards the mutation.
func (s *Store) Update(callID string, mutate func(*CallContext) error) (CallContext, error) {
	entry, err := s.lookup(callID)
	if err != nil {
		return CallContext{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.ended {
		return CallContext{}, ErrUnknownCall
	}

	if err := mutate(entry.state); err != nil {
		return CallContext{}, err
	}
	return entry.state.Clone(), nil
}

// End destroys the call's context. Idempotent: ending an ended or unknown
// call is a no-op.
func (s *Store) End(callID string) {
	s.mu.RLock()
	entry, ok := s.calls[strings.TrimSpace(callID)]
	s.mu.RUnlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.ended = true
	entry.state = nil
}

func (s *Store) lookup(callID string) (*callEntry, error) {
	callID = strings.TrimSpace(callID)
	if callID == "" {
		return nil, ErrInvalidCall
	}

	s.mu.RLock()
	entry, ok := s.calls[callID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownCall
	}
	return entry, nil
}
