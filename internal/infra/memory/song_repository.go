package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"lyric-quiz-service/internal/domain"
)

// SongLoader fetches songs from a backing store (lyric directory, Postgres).
type SongLoader interface {
	LoadSong(ctx context.Context, key string) (domain.Song, error)
	ListKeys(ctx context.Context) ([]string, error)
}

const catalogKey = "\x00catalog"

// SongRepository caches songs and the catalog with TTL to avoid repeated loads.
type SongRepository struct {
	loader SongLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu      sync.RWMutex
	cache   map[string]cachedSong
	catalog cachedCatalog
}

type cachedSong struct {
	song      domain.Song
	expiresAt time.Time
}

type cachedCatalog struct {
	keys      []string
	expiresAt time.Time
}

func NewSongRepository(loader SongLoader, ttl time.Duration) *SongRepository {
	return &SongRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSong),
	}
}

func (r *SongRepository) GetSong(ctx context.Context, key string) (domain.Song, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.song, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.song, nil
		}
		r.mu.RUnlock()

		song, err := r.loader.LoadSong(ctx, key)
		if err != nil {
			return domain.Song{}, err
		}

		r.mu.Lock()
		r.cache[key] = cachedSong{
			song:      song,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return song, nil
	})
	if err != nil {
		return domain.Song{}, err
	}
	return result.(domain.Song), nil
}

func (r *SongRepository) ListSongs(ctx context.Context) ([]string, error) {
	now := r.clock()

	r.mu.RLock()
	if r.catalog.keys != nil && r.catalog.expiresAt.After(now) {
		keys := r.catalog.keys
		r.mu.RUnlock()
		return keys, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		keys, err := r.loader.ListKeys(ctx)
		if err != nil {
			return nil, err
		}
		sort.Strings(keys)
		r.mu.Lock()
		r.catalog = cachedCatalog{keys: keys, expiresAt: r.clock().Add(r.ttlWithJitter())}
		r.mu.Unlock()
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// StaticSongLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticSongLoader struct {
	songs map[string]domain.Song
}

func NewStaticSongLoader(songs map[string]domain.Song) *StaticSongLoader {
	return &StaticSongLoader{songs: songs}
}

func (l *StaticSongLoader) LoadSong(_ context.Context, key string) (domain.Song, error) {
	if song, ok := l.songs[key]; ok {
		return song, nil
	}
	return domain.Song{}, domain.ErrSongNotFound
}

func (l *StaticSongLoader) ListKeys(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.songs))
	for key := range l.songs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *SongRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
