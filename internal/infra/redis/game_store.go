package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"lyric-quiz-service/internal/app"
)

// GameStore is a Redis-aware implementation of app.GameRepository.
// Notes:
//   - Game state stays in a local map; timers and locks cannot leave the process.
//   - Redis marks which channels have a live game on this instance so other
//     tooling (or a second instance) can see them.
type GameStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	games  map[string]*app.Game
}

func NewGameStore(client *redis.Client, ttl time.Duration) *GameStore {
	return &GameStore{
		client: client,
		ttl:    ttl,
		games:  make(map[string]*app.Game),
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(channelID), "1", s.ttl).Err()
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
		_ = s.client.Del(context.Background(), s.key(channelID)).Err()
		return
	}
	// Still live: keep the marker from expiring under an active game.
	if s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(channelID), s.ttl).Err()
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

func (s *GameStore) key(channelID string) string {
	return "lyrics:game:" + channelID
}
