package app

import (
	"context"
	"time"

	"lyric-quiz-service/internal/domain"
)

// GameRepository abstracts where per-channel games live (in-memory, Redis-marked, etc).
type GameRepository interface {
	// GetOrCreate and Get touch the returned game at now before releasing
	// the lock that DeleteIfIdle holds.
	GetOrCreate(channelID string, now time.Time, create func() *Game) *Game
	Get(channelID string, now time.Time) (*Game, bool)
	// DeleteIfIdle drops the game if Game.Idle(cutoff) holds.
	DeleteIfIdle(channelID string, cutoff time.Time)
	// Range calls fn for every game until fn returns false. Implementations
	// iterate over a snapshot so fn may call back into the repository.
	Range(fn func(channelID string, game *Game) bool)
}

// SongRepository serves corpus entries (from cache/backing store).
type SongRepository interface {
	GetSong(ctx context.Context, key string) (domain.Song, error)
	ListSongs(ctx context.Context) ([]string, error)
}
