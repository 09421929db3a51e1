package server

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HerbHall/adminlist/internal/listcontroller"
)

var errSessionNotFound = errors.New("list not found")

// Sessions owns the list controllers opened through the API.
type Sessions struct {
	mu     sync.RWMutex
	lists  map[string]*listcontroller.Controller
	order  []string
	logger *zap.Logger
}

// NewSessions creates an empty registry.
func NewSessions(logger *zap.Logger) *Sessions {
	return &Sessions{
		lists:  make(map[string]*listcontroller.Controller),
		logger: logger,
	}
}

// Add registers c and returns its new id.
func (s *Sessions) Add(c *listcontroller.Controller) string {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[id] = c
	s.order = append(s.order, id)
	s.logger.Info("list opened", zap.String("id", id), zap.String("resource", c.Resource()))
	return id
}

// Get returns the controller registered under id.
func (s *Sessions) Get(id string) (*listcontroller.Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.lists[id]
	if !ok {
		return nil, errSessionNotFound
	}
	return c, nil
}

// Remove closes and forgets the controller registered under id.
func (s *Sessions) Remove(id string) error {
	s.mu.Lock()
	c, ok := s.lists[id]
	if ok {
		delete(s.lists, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		return errSessionNotFound
	}
	c.Close()
	s.logger.Info("list closed", zap.String("id", id), zap.String("resource", c.Resource()))
	return nil
}

// SessionInfo summarizes one open list.
type SessionInfo struct {
	ID       string `json:"id"`
	Resource string `json:"resource"`
}

// All returns every open list in opening order.
func (s *Sessions) All() []SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SessionInfo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, SessionInfo{ID: id, Resource: s.lists[id].Resource()})
	}
	return out
}

// CloseAll closes every list in reverse opening order.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	order := s.order
	lists := s.lists
	s.order = nil
	s.lists = make(map[string]*listcontroller.Controller)
	s.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		s.logger.Info("closing list", zap.String("id", id))
		lists[id].Close()
	}
}
