// Package callstore provides ContextStore implementations for active
// call state: an in-process map for single-instance deployments and a
// Redis-backed store for deployments where IVR webhooks can land on any
// instance.
package callstore

import (
	"context"
	"sync"

	"github.com/couchcryptid/evac-response/internal/domain"
)

// MemoryStore is a thread-safe in-process ContextStore. Contexts do not
// survive a restart and are invisible to other instances; acceptable
// only because calls are short-lived and the deployment is
// single-instance. Use RedisStore otherwise.
type MemoryStore struct {
	mu    sync.RWMutex
	calls map[string]domain.CallContext
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{calls: make(map[string]domain.CallContext)}
}

func (s *MemoryStore) Put(_ context.Context, call domain.CallContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[call.CallID] = call
	return nil
}

func (s *MemoryStore) Get(_ context.Context, callID string) (domain.CallContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	call, ok := s.calls[callID]
	if !ok {
		return domain.CallContext{}, domain.ErrCallNotFound
	}
	return call, nil
}

func (s *MemoryStore) Delete(_ context.Context, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.calls, callID)
	return nil
}

// Len reports the number of stored contexts, for the active-calls gauge.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calls)
}
