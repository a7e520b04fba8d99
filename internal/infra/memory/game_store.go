package memory

import (
	"sync"
	"time"

	"lyric-quiz-service/internal/app"
)

// GameStore is an in-memory implementation of app.GameRepository.
type GameStore struct {
	mu    sync.RWMutex
	games map[string]*app.Game
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[string]*app.Game),
	}
}

func (s *GameStore) GetOrCreate(channelID string, now time.Time, create func() *app.Game) *app.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game, ok := s.games[channelID]; ok {
		game.Touch(now)
		return game
	}
	game := create()
	game.Touch(now)
	s.games[channelID] = game
	return game
}

func (s *GameStore) Get(channelID string, now time.Time) (*app.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[channelID]
	if ok {
		game.Touch(now)
	}
	return game, ok
}

func (s *GameStore) DeleteIfIdle(channelID string, cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[channelID]
	if !ok {
		return
	}
	if game.Idle(cutoff) {
		delete(s.games, channelID)
	}
}

func (s *GameStore) Range(fn func(channelID string, game *app.Game) bool) {
	s.mu.RLock()
	snapshot := make(map[string]*app.Game, len(s.games))
	for id, game := range s.games {
		snapshot[id] = game
	}
	s.mu.RUnlock()

	for id, game := range snapshot {
		if !fn(id, game) {
			return
		}
	}
}
