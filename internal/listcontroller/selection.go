package listcontroller

import (
	"sync"

	"github.com/HerbHall/adminlist/internal/dataprovider"
)

// Selections holds the selected record ids of every resource. All lists of the
// same resource share one selection.
type Selections struct {
	mu   sync.RWMutex
	sets map[string][]dataprovider.Identifier
}

// NewSelections creates an empty registry.
func NewSelections() *Selections {
	return &Selections{sets: make(map[string][]dataprovider.Identifier)}
}

// Select replaces the selection of resource with ids, dropping duplicates.
func (s *Selections) Select(resource string, ids []dataprovider.Identifier) {
	seen := make(map[dataprovider.Identifier]struct{}, len(ids))
	out := make([]dataprovider.Identifier, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	s.mu.Lock()
	s.sets[resource] = out
	s.mu.Unlock()
}

// Toggle adds id to the selection of resource, or removes it if present.
func (s *Selections) Toggle(resource string, id dataprovider.Identifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.sets[resource]
	for i, v := range cur {
		if v == id {
			s.sets[resource] = append(append([]dataprovider.Identifier{}, cur[:i]...), cur[i+1:]...)
			return
		}
	}
	s.sets[resource] = append(append([]dataprovider.Identifier{}, cur...), id)
}

// Clear empties the selection of resource.
func (s *Selections) Clear(resource string) {
	s.mu.Lock()
	delete(s.sets, resource)
	s.mu.Unlock()
}

// Selected returns the selected ids of resource in selection order.
func (s *Selections) Selected(resource string) []dataprovider.Identifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dataprovider.Identifier{}, s.sets[resource]...)
}
