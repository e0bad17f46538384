// Package eventstore guarda em memória os eventos esportivos conhecidos
// pelo engine. O feed externo alimenta via upsert; o engine só lê.
package eventstore

import (
	"errors"
	"sync"

	"github.com/radieske/casino-wager-engine/internal/engine/odds"
)

var ErrNotFound = errors.New("event not found")

type Store struct {
	mu     sync.RWMutex
	events map[string]odds.Event
}

func New() *Store {
	return &Store{events: make(map[string]odds.Event)}
}

// Upsert cria ou substitui um evento.
func (s *Store) Upsert(ev odds.Event) {
	s.mu.Lock()
	s.events[ev.ID] = ev
	s.mu.Unlock()
}

// Get retorna o evento por id.
func (s *Store) Get(id string) (odds.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return odds.Event{}, ErrNotFound
	}
	return ev, nil
}

// SetResult marca o evento como encerrado com o placar final.
func (s *Store) SetResult(id string, homeScore, awayScore int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return ErrNotFound
	}
	ev.Status = odds.StatusFinished
	ev.HomeScore = homeScore
	ev.AwayScore = awayScore
	s.events[id] = ev
	return nil
}

// Len é usado só em logs de startup e testes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
