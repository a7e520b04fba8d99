package app

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lyric-quiz-service/internal/domain"
)

// Corpus draws questions from a SongRepository.
type Corpus struct {
	songs SongRepository

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCorpus(songs SongRepository) *Corpus {
	return NewCorpusWithRand(songs, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewCorpusWithRand is test-only for deterministic draws.
func NewCorpusWithRand(songs SongRepository, rnd *rand.Rand) *Corpus {
	return &Corpus{songs: songs, rnd: rnd}
}

// Resolve draws a question. A non-empty id is normalized and must match a
// song exactly (ErrSongNotFound otherwise); an empty id picks a song
// uniformly at random. The lyric line is always chosen at random.
func (c *Corpus) Resolve(ctx context.Context, id string) (domain.Question, error) {
	var (
		song domain.Song
		err  error
	)
	if id != "" {
		song, err = c.Song(ctx, id)
	} else {
		song, err = c.randomSong(ctx)
	}
	if err != nil {
		return domain.Question{}, err
	}
	if err := song.Validate(); err != nil {
		return domain.Question{}, err
	}
	return song.QuestionAt(c.intn(len(song.Lines) - 1))
}

// Song looks up a song by a free-form name.
func (c *Corpus) Song(ctx context.Context, name string) (domain.Song, error) {
	key := domain.NormalizeKey(name)
	if key == "" {
		return domain.Song{}, domain.ErrSongNotFound
	}
	return c.songs.GetSong(ctx, key)
}

// Catalog lists every song with a display name, sorted by name.
func (c *Corpus) Catalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	keys, err := c.songs.ListSongs(ctx)
	if err != nil {
		return nil, err
	}
	caser := cases.Title(language.English)
	entries := make([]domain.CatalogEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, domain.CatalogEntry{
			Key:  key,
			Name: caser.String(strings.ReplaceAll(key, "_", " ")),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

func (c *Corpus) randomSong(ctx context.Context) (domain.Song, error) {
	keys, err := c.songs.ListSongs(ctx)
	if err != nil {
		return domain.Song{}, err
	}
	if len(keys) == 0 {
		return domain.Song{}, domain.ErrEmptyCorpus
	}
	return c.songs.GetSong(ctx, keys[c.intn(len(keys))])
}

func (c *Corpus) intn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.Intn(n)
}
