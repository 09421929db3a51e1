package navstate

import (
	"context"
	"sync"
	"time"

	"github.com/HerbHall/adminlist/internal/dataprovider"
	"github.com/HerbHall/adminlist/internal/listparams"
)

// Compile-time interface guard.
var _ Store = (*Memory)(nil)

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	states map[string]ListState
	now    func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithNow overrides the time source used for UpdatedAt.
func WithNow(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an empty Memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{states: make(map[string]ListState), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Snapshot(_ context.Context, resource string) (ListState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[resource]
	if !ok {
		return ListState{}, ErrNotFound
	}
	return st.Clone(), nil
}

func (m *Memory) SaveList(_ context.Context, resource string, ids []dataprovider.Identifier, total *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.states[resource]
	next := ListState{IDs: ids, Total: total, UpdatedAt: m.now().UTC()}.Clone()
	next.Params = st.Params
	m.states[resource] = next
	return nil
}

func (m *Memory) SaveParams(_ context.Context, resource string, p listparams.Params) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.states[resource]
	cp := p.Clone()
	st.Params = &cp
	st.UpdatedAt = m.now().UTC()
	m.states[resource] = st
	return nil
}

func (m *Memory) LoadParams(ctx context.Context, resource string) (listparams.Params, bool, error) {
	return loadParams(ctx, m, resource)
}

// Reset forgets all state.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = make(map[string]ListState)
}
