// Package bot ties the search engine to a registered identity and drives
// the per-tick decision loop.
package bot

import (
	"sync"

	"zooscape/game"
	"zooscape/searcher"
)

// Service is the decision facade: it owns an engine and the bot id handed
// out at registration, and answers one action per delivered state.
type Service struct {
	mu     sync.RWMutex
	engine *searcher.Engine
	botID  string
}

// NewService wraps an engine with an initially empty identity.
func NewService(engine *searcher.Engine) *Service {
	return &Service{engine: engine}
}

// SetID stores the registered bot id used for every following decision.
func (s *Service) SetID(id string) {
	s.mu.Lock()
	s.botID = id
	s.mu.Unlock()
}

// ID returns the registered bot id, "" before registration.
func (s *Service) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.botID
}

// Stop interrupts a running search.
func (s *Service) Stop() {
	s.engine.Stop()
}

// Engine exposes the underlying search engine.
func (s *Service) Engine() *searcher.Engine {
	return s.engine
}

// BestAction searches the given state for the registered animal. Before
// registration it returns the neutral action and no statistics.
func (s *Service) BestAction(state *game.GameState) (searcher.Result, error) {
	id := s.ID()
	if id == "" {
		return searcher.Result{BestAction: game.None}, nil
	}
	state.MyAnimalID = id
	return s.engine.BestAction(state, id)
}
