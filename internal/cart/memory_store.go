package cart

import (
	"context"
	"sync"
)

// MemoryStore keeps carts in process memory. Used by unit tests and as a
// fallback when no Redis URL is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	carritos map[int]*Carrito
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carritos: make(map[int]*Carrito)}
}

func (s *MemoryStore) Get(_ context.Context, cajaID int) (*Carrito, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carritos[cajaID]
	if !ok {
		return nil, nil
	}
	// Copy out so callers never mutate the stored cart directly.
	cp := *c
	cp.Lineas = append([]Linea(nil), c.Lineas...)
	return &cp, nil
}

func (s *MemoryStore) Put(_ context.Context, c *Carrito) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.Lineas = append([]Linea(nil), c.Lineas...)
	s.carritos[c.CajaID] = &cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, cajaID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carritos, cajaID)
	return nil
}
