package store

import (
	"context"
	"sync"

	"github.com/deeper-blue/negativei2-server/internal/controller"
	"github.com/deeper-blue/negativei2-server/internal/game"
)

// Memory keeps snapshots in maps guarded by one lock. Loads reconstruct the
// aggregate from its snapshot, so the store hands out independent copies the
// same way the redis store does.
type Memory struct {
	mu            sync.RWMutex
	matches       map[string]*game.Snapshot
	registrations map[string]controller.Registration
}

func NewMemory() *Memory {
	return &Memory{
		matches:       make(map[string]*game.Snapshot),
		registrations: make(map[string]controller.Registration),
	}
}

func (s *Memory) Match(ctx context.Context, id string) (*game.Match, error) {
	s.mu.RLock()
	snap, ok := s.matches[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return game.FromSnapshot(snap)
}

func (s *Memory) SaveMatch(ctx context.Context, m *game.Match) error {
	snap := m.Snapshot()
	s.mu.Lock()
	s.matches[m.ID()] = snap
	s.mu.Unlock()
	return nil
}

func (s *Memory) ListOpenMatches(ctx context.Context) ([]*game.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	open := []*game.Snapshot{}
	for _, snap := range s.matches {
		if snap.InProgress && snap.FreeSlots > 0 {
			open = append(open, snap)
		}
	}
	return open, nil
}

func (s *Memory) Registration(ctx context.Context, boardID string) (*controller.Registration, error) {
	s.mu.RLock()
	reg, ok := s.registrations[boardID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &reg, nil
}

func (s *Memory) SaveRegistration(ctx context.Context, reg *controller.Registration) error {
	s.mu.Lock()
	s.registrations[reg.BoardID] = *reg
	s.mu.Unlock()
	return nil
}
