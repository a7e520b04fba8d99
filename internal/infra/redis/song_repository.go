package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"lyric-quiz-service/internal/domain"
)

// SongLoader fetches songs from a backing store (lyric directory, Postgres).
type SongLoader interface {
	LoadSong(ctx context.Context, key string) (domain.Song, error)
	ListKeys(ctx context.Context) ([]string, error)
}

// SongRepository caches songs in Redis (hash per song) and falls back to a loader on cache miss.
// Songs are stored as:   HSET lyrics:song:{key} title {title} artist {artist} lines {json}
// The catalog is stored: SADD lyrics:catalog {key...}
type SongRepository struct {
	client *redis.Client
	loader SongLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewSongRepository(client *redis.Client, loader SongLoader, ttl time.Duration) *SongRepository {
	return &SongRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *SongRepository) GetSong(ctx context.Context, key string) (domain.Song, error) {
	songKey := r.songKey(key)

	if song, ok := r.cachedSong(ctx, key, songKey); ok {
		return song, nil
	}

	result, err, _ := r.sf.Do("song:"+key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if song, ok := r.cachedSong(ctx, key, songKey); ok {
			return song, nil
		}

		song, err := r.loader.LoadSong(ctx, key)
		if err != nil {
			return domain.Song{}, err
		}

		lines, err := json.Marshal(song.Lines)
		if err != nil {
			return domain.Song{}, fmt.Errorf("marshal lines: %w", err)
		}
		pipe := r.client.Pipeline()
		pipe.HSet(ctx, songKey, "title", song.Title, "artist", song.Artist, "lines", string(lines))
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, songKey, ttl)
		}
		// Cache writes are best effort; the loaded song is still good.
		_, _ = pipe.Exec(ctx)

		return song, nil
	})
	if err != nil {
		return domain.Song{}, err
	}
	return result.(domain.Song), nil
}

func (r *SongRepository) ListSongs(ctx context.Context) ([]string, error) {
	catalogKey := r.catalogKey()

	keys, err := r.client.SMembers(ctx, catalogKey).Result()
	if err == nil && len(keys) > 0 {
		sort.Strings(keys)
		return keys, nil
	}

	result, err, _ := r.sf.Do("catalog", func() (interface{}, error) {
		keys, err := r.loader.ListKeys(ctx)
		if err != nil {
			return nil, err
		}
		sort.Strings(keys)
		if len(keys) == 0 {
			return keys, nil
		}

		members := make([]interface{}, len(keys))
		for i, k := range keys {
			members[i] = k
		}
		pipe := r.client.Pipeline()
		pipe.Del(ctx, catalogKey)
		pipe.SAdd(ctx, catalogKey, members...)
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, catalogKey, ttl)
		}
		_, _ = pipe.Exec(ctx)
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (r *SongRepository) cachedSong(ctx context.Context, key, songKey string) (domain.Song, bool) {
	fields, err := r.client.HGetAll(ctx, songKey).Result()
	if err != nil || len(fields) == 0 {
		return domain.Song{}, false
	}
	song := domain.Song{Key: key, Title: fields["title"], Artist: fields["artist"]}
	if err := json.Unmarshal([]byte(fields["lines"]), &song.Lines); err != nil {
		return domain.Song{}, false
	}
	if song.Validate() != nil {
		return domain.Song{}, false
	}
	return song, true
}

func (r *SongRepository) songKey(key string) string {
	return "lyrics:song:" + key
}

func (r *SongRepository) catalogKey() string {
	return "lyrics:catalog"
}

func (r *SongRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
