package genstore

import (
	"context"
	"sync"
	"time"
)

type localGenEntry struct {
	Gen       uint64
	UpdatedAt time.Time
}

// LocalGenStore keeps generations in-process (default).
type LocalGenStore struct {
	mu   sync.RWMutex
	gens map[string]localGenEntry
}

var _ GenStore = (*LocalGenStore)(nil)

func NewLocalGenStore() *LocalGenStore {
	return &LocalGenStore{gens: make(map[string]localGenEntry)}
}

func (s *LocalGenStore) Current(_ context.Context, name string) (uint64, error) {
	s.mu.RLock()
	e := s.gens[name]
	s.mu.RUnlock()
	return e.Gen, nil
}

func (s *LocalGenStore) Bump(_ context.Context, name string) (uint64, error) {
	now := time.Now()
	s.mu.Lock()
	e := s.gens[name]
	e.Gen++
	e.UpdatedAt = now
	s.gens[name] = e
	s.mu.Unlock()
	return e.Gen, nil
}

// UpdatedAt reports when name was last bumped; zero if never.
func (s *LocalGenStore) UpdatedAt(name string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gens[name].UpdatedAt
}

func (s *LocalGenStore) Close(context.Context) error { return nil }
